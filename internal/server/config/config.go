// Package config handles configuration for the projecthub server: defaults,
// an optional JSON file, .env and process environment, and command-line flags.
package config

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// Config holds runtime settings for the server.
//
// AWS and Cognito fields follow the names of the deployment environment
// (AWS_REGION, COGNITO_USER_POOL_ID, ...). DatabaseDSN wins over the DB*
// parts when set.
type Config struct {
	HTTPAddr      string
	AdminAddrGRPC string
	APIPrefix     string
	Environment   string
	LogLevel      string
	UIDomain      string

	AWSRegion          string
	AWSEndpointURL     string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	CognitoUserPoolID       string
	CognitoClientID         string
	CognitoClientSecretName string
	JWTLeeway               time.Duration

	DatabaseDSN string
	DBHost      string
	DBPort      string
	DBUsername  string
	DBPassword  string
	DBName      string
	RDSSecretID string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only set it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.AdminAddrGRPC = ":50051"
	c.APIPrefix = "api"
	c.Environment = "development"
	c.LogLevel = "info"
	c.UIDomain = "http://localhost:5173"
	c.AWSRegion = "eu-west-2"
	c.CognitoClientSecretName = "cognito-client-secret"
	c.JWTLeeway = 5 * time.Second
	c.DBHost = "localhost"
	c.DBPort = "5432"
	c.DBUsername = "postgres"
	c.DBPassword = "postgres"
	c.DBName = "projecthub"
	c.RateLimitRPS = 5
	c.RateLimitBurst = 10
}

// LoadConfig builds a Config from defaults, then overlays the JSON file,
// the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// DSN returns DatabaseDSN or a postgres URL assembled from the DB* parts.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUsername, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	if c.Environment == "development" || c.Environment == "test" {
		u.RawQuery = "sslmode=disable"
	}
	return u.String()
}

// Issuer is the token issuer of the configured user pool.
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.AWSRegion, c.CognitoUserPoolID)
}
