package config

import "os"

// parseEnv overlays configuration from environment variables. Only set
// variables override; empty values are ignored. The Cognito and AWS names
// match the variables the deployment already exports.
func parseEnv(config *Config) {
	overlay := []struct {
		env    string
		target *string
	}{
		{"APP_ADDR", &config.EndpointAddrHTTP},
		{"DATABASE_DSN", &config.DatabaseDSN},
		{"JWT_SECRET_KEY", &config.SecretKey},
		{"API_KEY", &config.APIKey},
		{"AWS_REGION", &config.AWSRegion},
		{"AWS_ACCESS_KEY_ID", &config.AWSAccessKeyID},
		{"AWS_SECRET_ACCESS_KEY", &config.AWSSecretAccessKey},
		{"COGNITO_USER_POOL_ID", &config.CognitoUserPoolID},
		{"COGNITO_CLIENT_ID", &config.CognitoClientID},
		{"COGNITO_CLIENT_SECRET", &config.CognitoClientSecret},
	}
	for _, o := range overlay {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}
