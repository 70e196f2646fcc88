package users

import (
	"context"

	"github.com/tripstack/identity/internal/server/models"
)

type Repository interface {
	// Create inserts the row and fills in the generated id. A row with the
	// same email (case-insensitive) yields common.ErrDuplicateAccount.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks the row up by case-insensitive email match and
	// returns common.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// SetVerificationFlags updates the observed verification flags.
	// Best-effort: callers treat failures as non-fatal.
	SetVerificationFlags(ctx context.Context, id string, emailVerified, phoneVerified bool) error
}
