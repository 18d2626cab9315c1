package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
	"github.com/dialectdeck/ledger/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	s, db, err := New(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	_, db, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.Close())

	// reopening an existing file keeps its data
	s, db2, err := New(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db2.Close() }()
	_, err = s.Profiles().Create(ctx, &model.Profile{UserID: "u1"})
	require.NoError(t, err)
	got, err := s.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
}

func TestHealthPing(t *testing.T) {
	s := makeSQLiteStore(t)
	p, ok := s.(interface{ HealthPing(context.Context) error })
	require.True(t, ok)
	require.NoError(t, p.HealthPing(context.Background()))
}

func TestMigrate_ConcurrentSchemasAndLogging(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	extra := fstest.MapFS{
		"extra/00001_extra.sql": {Data: []byte("-- +goose Up\nCREATE TABLE extra (id INTEGER);\n-- +goose Down\nDROP TABLE extra;\n")},
	}
	ctx := context.Background()
	dir := t.TempDir()
	const n = 4
	dbs := make([]*sql.DB, 2*n)
	for i := range dbs {
		db, err := Open(filepath.Join(dir, fmt.Sprintf("m%d.db", i)))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		dbs[i] = db
	}

	var wg sync.WaitGroup
	errs := make([]error, len(dbs))
	for i, db := range dbs {
		wg.Add(1)
		go func(i int, db *sql.DB) {
			defer wg.Done()
			if i%2 == 0 {
				errs[i] = Migrate(ctx, db)
			} else {
				errs[i] = store.Migrate(ctx, db, "sqlite3", extra, "extra")
			}
		}(i, db)
	}
	wg.Wait()

	for i, db := range dbs {
		require.NoError(t, errs[i], "db %d", i)
		table := "profiles"
		if i%2 == 1 {
			table = "extra"
		}
		var name string
		require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name), "db %d", i)
	}

	out := buf.String()
	assert.Contains(t, out, `"component":"migrate"`)
	assert.Contains(t, out, "00001_ledger.sql")
	assert.Contains(t, out, "00001_extra.sql")
}
