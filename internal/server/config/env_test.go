package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysValues(t *testing.T) {
	isolateEnv(t)

	t.Setenv("PORT", "8080")
	t.Setenv("API_PREFIX", "v1")
	t.Setenv("COGNITO_CLIENT_ID", "client-1")
	t.Setenv("COGNITO_USER_POOL_ID", "pool-1")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("JWT_LEEWAY", "1s")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "v1", c.APIPrefix)
	assert.Equal(t, "client-1", c.CognitoClientID)
	assert.Equal(t, "pool-1", c.CognitoUserPoolID)
	assert.Equal(t, 2.5, c.RateLimitRPS)
	assert.Equal(t, 4, c.RateLimitBurst)
	assert.True(t, c.TrustProxy)
	assert.Equal(t, time.Second, c.JWTLeeway)
}

func TestParseEnv_IgnoresMalformedNumbers(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("JWT_LEEWAY", "soon")
	t.Setenv("TRUST_PROXY", "maybe")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 10, c.RateLimitBurst)
	assert.Equal(t, 5*time.Second, c.JWTLeeway)
	assert.False(t, c.TrustProxy)
}

func TestParseEnv_LoadsDotEnv(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UI_DOMAIN=https://app.example.com\n"), 0o600))
	envFile = path
	// godotenv never overrides a variable that exists, even when empty.
	require.NoError(t, os.Unsetenv("UI_DOMAIN"))

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, "https://app.example.com", c.UIDomain)
}
