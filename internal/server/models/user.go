// Package models holds the server-side data records.
package models

import "time"

// User account statuses. Stored as an integer column; only active users
// may sign in.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// User is the local system-of-record row for a provisioned account.
// ProviderSubjectID stays empty until the identity provider accepts the
// account; email uniqueness is enforced by the store (case-insensitive).
type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	PasswordHash      string
	Phone             string
	Role              string
	AgencyID          int64
	Status            int
	EmailVerified     bool
	PhoneVerified     bool
	ProviderSubjectID string
	CreatedAt         time.Time
}

// Active reports whether the account is allowed to sign in.
func (u *User) Active() bool {
	return u.Status == StatusActive
}
