package idp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// ComputeSecretHash returns the keyed digest Cognito requires on
// confidential-client calls: base64(HMAC-SHA256(username+clientID,
// clientSecret)). Deterministic and side-effect free. An empty argument is
// a configuration error; callers are expected to have validated the client
// credentials at startup.
func ComputeSecretHash(username, clientID, clientSecret string) (string, error) {
	if username == "" || clientID == "" || clientSecret == "" {
		return "", errors.New("secret hash requires username, client id and client secret")
	}

	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
