package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tripstack/identity/internal/flagx"
	"github.com/tripstack/identity/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Interval fields use timex.Duration, which accepts
// both string values such as "1h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	APIKey                      string         `json:"api_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RemoteCallTimeout           timex.Duration `json:"remote_call_timeout"`
	AWSRegion                   string         `json:"aws_region"`
	AWSAccessKeyID              string         `json:"aws_access_key_id"`
	AWSSecretAccessKey          string         `json:"aws_secret_access_key"`
	CognitoUserPoolID           string         `json:"cognito_user_pool_id"`
	CognitoClientID             string         `json:"cognito_client_id"`
	CognitoClientSecret         string         `json:"cognito_client_secret"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flags into the provided Config. If no flag is set, nothing is
// loaded. An unreadable or malformed file panics: a config file that was
// requested but cannot be used should stop the process.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.APIKey != "" {
		config.APIKey = c.APIKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.RemoteCallTimeout.Duration != 0 {
		config.RemoteCallTimeout = time.Duration(c.RemoteCallTimeout.Duration)
	}
	if c.AWSRegion != "" {
		config.AWSRegion = c.AWSRegion
	}
	if c.AWSAccessKeyID != "" {
		config.AWSAccessKeyID = c.AWSAccessKeyID
	}
	if c.AWSSecretAccessKey != "" {
		config.AWSSecretAccessKey = c.AWSSecretAccessKey
	}
	if c.CognitoUserPoolID != "" {
		config.CognitoUserPoolID = c.CognitoUserPoolID
	}
	if c.CognitoClientID != "" {
		config.CognitoClientID = c.CognitoClientID
	}
	if c.CognitoClientSecret != "" {
		config.CognitoClientSecret = c.CognitoClientSecret
	}
}
