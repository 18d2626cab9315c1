package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dialectdeck/ledger/internal/config"
	"github.com/dialectdeck/ledger/internal/localstate"
	storepkg "github.com/dialectdeck/ledger/internal/store"
	storepg "github.com/dialectdeck/ledger/internal/store/postgres"
	storesqlite "github.com/dialectdeck/ledger/internal/store/sqlite"
)

// NewStore opens the store selected by cfg.DBDriver and applies migrations
// within the bootstrap timeout. The returned *sql.DB is owned by the caller.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, *sql.DB, error) {
	bootstrapCtx, cancel := context.WithTimeout(ctx, cfg.BootstrapTimeout())
	defer cancel()

	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("LEDGER_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := storepg.Migrate(bootstrapCtx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap completed")
		return storepg.NewWithDB(db), db, nil

	case "sqlite":
		path, err := localstate.ResolveDBPath(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite path: %w", err)
		}
		st, db, err := storesqlite.New(bootstrapCtx, path)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", path).Msg("store bootstrap completed")
		return st, db, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
