package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded when present; real environment variables take precedence.
var envFile = ".env"

// parseEnv overlays values from the process environment (after loading .env).
// Malformed numeric values are ignored and the previous value is kept.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + v
	}

	strs := map[string]*string{
		"ADMIN_ADDR":                 &config.AdminAddrGRPC,
		"API_PREFIX":                 &config.APIPrefix,
		"ENVIRONMENT":                &config.Environment,
		"LOG_LEVEL":                  &config.LogLevel,
		"UI_DOMAIN":                  &config.UIDomain,
		"AWS_REGION":                 &config.AWSRegion,
		"AWS_ENDPOINT_URL":           &config.AWSEndpointURL,
		"AWS_ACCESS_KEY_ID":          &config.AWSAccessKeyID,
		"AWS_SECRET_ACCESS_KEY":      &config.AWSSecretAccessKey,
		"COGNITO_USER_POOL_ID":       &config.CognitoUserPoolID,
		"COGNITO_CLIENT_ID":          &config.CognitoClientID,
		"COGNITO_CLIENT_SECRET_NAME": &config.CognitoClientSecretName,
		"DATABASE_DSN":               &config.DatabaseDSN,
		"DB_HOST":                    &config.DBHost,
		"DB_PORT":                    &config.DBPort,
		"DB_USERNAME":                &config.DBUsername,
		"DB_PASSWORD":                &config.DBPassword,
		"DB_NAME":                    &config.DBName,
		"RDS_SECRET_ID":              &config.RDSSecretID,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.RateLimitRPS = f
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_BURST"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.RateLimitBurst = n
		}
	}
	if v, ok := os.LookupEnv("TRUST_PROXY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.TrustProxy = b
		}
	}
	if v, ok := os.LookupEnv("JWT_LEEWAY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.JWTLeeway = d
		}
	}
}
