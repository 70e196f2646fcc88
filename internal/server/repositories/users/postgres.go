package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tripstack/identity/internal/common"
	"github.com/tripstack/identity/internal/dbx"
	"github.com/tripstack/identity/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (first_name, last_name, email, password_hash, phone, role,
		                    agency_id, status, email_verified, phone_verified, provider_subject_id, created_dt)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Phone, user.Role,
		nullInt64(user.AgencyID), user.Status, user.EmailVerified, user.PhoneVerified,
		nullString(user.ProviderSubjectID), user.CreatedAt).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, first_name, last_name, email, password_hash, phone, role,
		        agency_id, status, email_verified, phone_verified, provider_subject_id, created_dt
		 FROM users
		 WHERE lower(email) = lower($1)
		 `

	user := &models.User{}
	var agencyID sql.NullInt64
	var subjectID sql.NullString

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.Phone, &user.Role, &agencyID, &user.Status,
		&user.EmailVerified, &user.PhoneVerified, &subjectID, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.AgencyID = agencyID.Int64
	user.ProviderSubjectID = subjectID.String

	return user, nil
}

func (r *PostgresRepository) SetVerificationFlags(ctx context.Context, id string, emailVerified, phoneVerified bool) error {
	query :=
		`UPDATE users SET email_verified = $2, phone_verified = $3
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, emailVerified, phoneVerified); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
