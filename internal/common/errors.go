// Package common defines shared sentinel errors used across the layers of
// the identity service. Callers should use errors.Is to match these values;
// adapters wrap them with fmt.Errorf("%w: ...") so the taxonomy kind and the
// remote diagnostic travel together.
package common

import "errors"

var (

	// repository / remote-lookup errors
	ErrNotFound = errors.New("not found")

	// account provisioning errors
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrPolicyViolation     = errors.New("policy violation")
	ErrProviderUnavailable = errors.New("identity provider unavailable") // retryable
	ErrNotConfirmed        = errors.New("account not confirmed")
	ErrGroupNotFound       = errors.New("group not found")
	ErrSignupFailed        = errors.New("signup failed")

	// sign-in / password-reset errors
	ErrAuthorizationFailure = errors.New("invalid email or password")
	ErrCodeInvalidOrExpired = errors.New("verification code invalid or expired")
	ErrBadRequest           = errors.New("bad request")

	// local store errors
	ErrPersistenceFailure = errors.New("persistence failure")

	// request validation errors
	ErrValidation = errors.New("validation error")

	// token lifecycle errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
