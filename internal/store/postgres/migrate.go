package postgres

import (
	"context"
	"database/sql"
	"embed"

	"github.com/dialectdeck/ledger/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	return store.Migrate(ctx, db, "postgres", migrationsFS, "migrations")
}
