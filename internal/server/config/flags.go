package config

import (
	"flag"
	"os"
	"time"

	"github.com/tripstack/identity/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   API key (issuer for diagnostic service tokens)
//	-t int      access token validity, minutes
//	-w int      remote call timeout, seconds
//	-g string   AWS region
//	-p string   Cognito user pool id
//	-i string   Cognito app client id
//	-x string   Cognito app client secret
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-t", "-w", "-g", "-p", "-i", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "api key (service token issuer)")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	remoteCallTimeout := fs.Int("w", int(config.RemoteCallTimeout.Seconds()), "remote_call_timeout (in seconds)")

	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.CognitoUserPoolID, "p", config.CognitoUserPoolID, "Cognito user pool id")
	fs.StringVar(&config.CognitoClientID, "i", config.CognitoClientID, "Cognito client id")
	fs.StringVar(&config.CognitoClientSecret, "x", config.CognitoClientSecret, "Cognito client secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RemoteCallTimeout = time.Duration(*remoteCallTimeout) * time.Second
}
