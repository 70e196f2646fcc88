package repomanager

import (
	"context"
	"database/sql"

	"github.com/tripstack/identity/internal/dbx"
	"github.com/tripstack/identity/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
