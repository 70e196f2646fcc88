// Package idp adapts the remote identity provider's account lifecycle
// operations behind a closed error taxonomy, so the rest of the service
// never branches on SDK exception names.
package idp

import "context"

// CodeDelivery describes where a password-reset code was sent.
type CodeDelivery struct {
	Destination string
	Medium      string
	Attribute   string
}

// Client is the identity-provider account lifecycle surface consumed by
// the auth workflows. Errors are common.Err* sentinels wrapped around the
// provider's diagnostic message; common.ErrProviderUnavailable is the only
// retryable kind.
type Client interface {
	// CreateAccount registers the account and returns the provider's
	// stable subject identifier.
	CreateAccount(ctx context.Context, email, password string, attributes map[string]string) (string, error)

	// ConfirmAccount administratively confirms a pending account.
	// Idempotent: confirming an already-confirmed account succeeds.
	ConfirmAccount(ctx context.Context, username string) error

	// AssignGroup adds the account to the named group. Idempotent.
	AssignGroup(ctx context.Context, username, groupName string) error

	// InitiatePasswordReset triggers out-of-band code delivery.
	InitiatePasswordReset(ctx context.Context, username string) (*CodeDelivery, error)

	// ConfirmPasswordReset completes the reset with the delivered code.
	ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error

	// UpdateAttributes administratively updates profile attributes.
	UpdateAttributes(ctx context.Context, username string, attributes map[string]string) error
}
