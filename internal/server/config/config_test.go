package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	c.CognitoUserPoolID = "us-east-1_abc123"
	c.CognitoClientID = "client-1"
	c.CognitoClientSecret = "top-secret"
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 10*time.Second, c.RemoteCallTimeout)

	// the pool config must not default: it is required input
	assert.Empty(t, c.CognitoUserPoolID)
	assert.Empty(t, c.CognitoClientID)
	assert.Empty(t, c.CognitoClientSecret)
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingCognito(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"pool", func(c *Config) { c.CognitoUserPoolID = "" }},
		{"client id", func(c *Config) { c.CognitoClientID = "" }},
		{"client secret", func(c *Config) { c.CognitoClientSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing required config value")
		})
	}
}

func TestValidate_NonPositiveDurations(t *testing.T) {
	c := validConfig()
	c.AccessTokenValidityDuration = 0
	require.Error(t, c.Validate())

	c = validConfig()
	c.RemoteCallTimeout = -time.Second
	require.Error(t, c.Validate())
}

func TestParseEnv_Overlay(t *testing.T) {
	c := validConfig()
	t.Setenv("COGNITO_USER_POOL_ID", "us-west-2_zzz")
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("APP_ADDR", "")

	parseEnv(c)

	assert.Equal(t, "us-west-2_zzz", c.CognitoUserPoolID)
	assert.Equal(t, "env-secret", c.SecretKey)
	// empty env value must not clobber the default
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}
