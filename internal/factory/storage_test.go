package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectdeck/ledger/internal/config"
	"github.com/dialectdeck/ledger/internal/model"
)

func TestNewStore_SQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "factory.db")

	st, db, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = st.Profiles().Create(context.Background(), &model.Profile{UserID: "factory"})
	require.NoError(t, err)
}

func TestNewStore_Errors(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "mysql"
	_, _, err := NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	_, _, err = NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewStore_SQLiteDefaultsToStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LEDGER_STATE_HOME", home)
	cfg := config.NewForTesting()
	cfg.SQLitePath = ""

	_, db, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	assert.FileExists(t, filepath.Join(home, "ledger.db"))
}
