// Package mailid adapts the remote mail-identity verification service.
// Verification is an enrichment step: callers log failures and move on,
// they never roll back account creation over it.
package mailid

import "context"

// Status is the observed verification state of an email identity.
type Status string

const (
	StatusNotFound  Status = "NOT_FOUND"
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Manager is the email-identity verification surface consumed by the
// sign-up workflow.
type Manager interface {
	// VerificationStatus looks the identity up. An unknown identity is
	// reported as StatusNotFound, not as an error.
	VerificationStatus(ctx context.Context, email string) (Status, error)

	// RegisterIdentity starts verification for the identity. Idempotent:
	// an already-registered identity is a silent no-op.
	RegisterIdentity(ctx context.Context, email string) error
}
