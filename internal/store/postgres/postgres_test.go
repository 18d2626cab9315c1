package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dialectdeck/ledger/internal/store"
	"github.com/dialectdeck/ledger/internal/store/storetest"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// postgresDSN prefers LEDGER_POSTGRES_DSN and otherwise starts a throwaway
// container when LEDGER_PG_TESTS=1.
func postgresDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("LEDGER_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("LEDGER_PG_TESTS") != "1" {
		t.Skip("LEDGER_PG_TESTS not set; skipping postgres store integration test")
	}
	pgOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ledger",
				"POSTGRES_PASSWORD": "ledger",
				"POSTGRES_DB":       "ledger",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			pgErr = fmt.Errorf("failed to start container: %w", err)
			return
		}
		host, err := container.Host(ctx)
		if err != nil {
			pgErr = fmt.Errorf("failed to get container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			pgErr = fmt.Errorf("failed to get container port: %w", err)
			return
		}
		pgDSN = fmt.Sprintf("postgres://ledger:ledger@%s:%s/ledger?sslmode=disable", host, port.Port())
	})
	if pgErr != nil {
		t.Fatalf("postgres container: %v", pgErr)
	}
	return pgDSN
}

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := postgresDSN(t)
	if err := Bootstrap(context.Background(), dsn); err != nil {
		t.Fatalf("postgres bootstrap: %v", err)
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
