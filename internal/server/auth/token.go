// Package auth issues and verifies the service's signed session tokens.
// Tokens are opaque to callers, never persisted, and not revocable: there
// is no server-side session store.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tripstack/identity/internal/common"
)

// AccessClaims are the claims carried by interactive sign-in tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ServiceClaims are the claims carried by diagnostic service tokens. The
// jti is fresh per token for anti-replay correlation; no expiry is set on
// this path.
type ServiceClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenIssuer signs and verifies both token paths with a single
// process-configured HS256 secret.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	validity time.Duration
}

func NewTokenIssuer(secret []byte, issuer string, accessValidity time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer, validity: accessValidity}
}

// IssueAccessToken mints a sign-in token with a fixed expiry.
func (i *TokenIssuer) IssueAccessToken(subject, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Email: email,
	})
	return token.SignedString(i.secret)
}

// VerifyAccessToken checks signature, secret, and expiry, and returns the
// original claims. An expired token yields common.ErrTokenExpired.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// IssueServiceToken mints a diagnostic token for the legacy principal:
// issuer, issued-at, a fresh jti, subject and email. No expiry is enforced
// on this path.
func (i *TokenIssuer) IssueServiceToken(subject, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   i.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.NewString(),
			Subject:  subject,
		},
		Email: email,
	})
	return token.SignedString(i.secret)
}

// VerifyServiceToken checks signature and the configured issuer.
func (i *TokenIssuer) VerifyServiceToken(tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func (i *TokenIssuer) keyFunc(t *jwt.Token) (interface{}, error) {
	return i.secret, nil
}
