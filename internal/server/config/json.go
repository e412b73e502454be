package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/projecthub/internal/flagx"
	"github.com/dmitrijs2005/projecthub/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Only non-zero
// fields override what is already in Config.
type JsonConfig struct {
	HTTPAddr                string         `json:"http_addr"`
	AdminAddrGRPC           string         `json:"admin_addr_grpc"`
	APIPrefix               string         `json:"api_prefix"`
	Environment             string         `json:"environment"`
	LogLevel                string         `json:"log_level"`
	UIDomain                string         `json:"ui_domain"`
	AWSRegion               string         `json:"aws_region"`
	AWSEndpointURL          string         `json:"aws_endpoint_url"`
	CognitoUserPoolID       string         `json:"cognito_user_pool_id"`
	CognitoClientID         string         `json:"cognito_client_id"`
	CognitoClientSecretName string         `json:"cognito_client_secret_name"`
	JWTLeeway               timex.Duration `json:"jwt_leeway"`
	DatabaseDSN             string         `json:"database_dsn"`
	RDSSecretID             string         `json:"rds_secret_id"`
	RateLimitRPS            float64        `json:"rate_limit_rps"`
	RateLimitBurst          int            `json:"rate_limit_burst"`
	TrustProxy              bool           `json:"trust_proxy"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// A missing flag means nothing to load; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.AdminAddrGRPC, c.AdminAddrGRPC)
	setString(&config.APIPrefix, c.APIPrefix)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.UIDomain, c.UIDomain)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSEndpointURL, c.AWSEndpointURL)
	setString(&config.CognitoUserPoolID, c.CognitoUserPoolID)
	setString(&config.CognitoClientID, c.CognitoClientID)
	setString(&config.CognitoClientSecretName, c.CognitoClientSecretName)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RDSSecretID, c.RDSSecretID)

	if c.JWTLeeway.Duration != 0 {
		config.JWTLeeway = c.JWTLeeway.Duration
	}
	if c.RateLimitRPS != 0 {
		config.RateLimitRPS = c.RateLimitRPS
	}
	if c.RateLimitBurst != 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
	if c.TrustProxy {
		config.TrustProxy = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
