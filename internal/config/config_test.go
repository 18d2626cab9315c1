package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerEnv = []string{
	"LEDGER_BUILD_TARGET",
	"LEDGER_DB_DRIVER",
	"LEDGER_POSTGRES_DSN",
	"LEDGER_SQLITE_PATH",
	"LEDGER_HTTP_PORT",
	"LEDGER_BOOTSTRAP_TIMEOUT_SECONDS",
	"LEDGER_REDIS_ADDR",
	"LEDGER_CHAT_GATEWAY_KEY",
	"LEDGER_ADMIN_API_KEY",
}

func unsetLedgerEnv(t *testing.T) {
	t.Helper()
	for _, k := range ledgerEnv {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { _ = os.Setenv(k, v) })
			_ = os.Unsetenv(k)
		}
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetLedgerEnv(t)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.BuildTarget)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Empty(t, cfg.SQLitePath)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, 10*time.Second, cfg.BootstrapTimeout())
	assert.Equal(t, "ledger-events", cfg.RedisChannel)
	assert.False(t, cfg.ChatEnabled())
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetLedgerEnv(t)
	t.Setenv("LEDGER_HTTP_PORT", "9191")
	t.Setenv("LEDGER_BOOTSTRAP_TIMEOUT_SECONDS", "3")
	t.Setenv("LEDGER_CHAT_GATEWAY_KEY", "k")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.GetHTTPAddr())
	assert.Equal(t, 3*time.Second, cfg.BootstrapTimeout())
	assert.True(t, cfg.ChatEnabled())
}

func TestResolveDefaultsCloud(t *testing.T) {
	unsetLedgerEnv(t)
	t.Setenv("LEDGER_BUILD_TARGET", "cloud")
	t.Setenv("LEDGER_POSTGRES_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_ADMIN_API_KEY", "s3cret")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "s3cret", cfg.AdminAPIKey)
}

func TestResolveDefaultsOverride(t *testing.T) {
	unsetLedgerEnv(t)
	t.Setenv("LEDGER_BUILD_TARGET", "cloud-dev")
	t.Setenv("LEDGER_DB_DRIVER", "sqlite")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaultsErrors(t *testing.T) {
	cases := map[string]Config{
		"unknown target":   {BuildTarget: "mars", HTTPPort: 8080},
		"unknown driver":   {BuildTarget: "local", DBDriver: "mysql", HTTPPort: 8080},
		"postgres w/o dsn": {BuildTarget: "cloud", HTTPPort: 8080},
		"bad port":         {BuildTarget: "local", SQLitePath: "x.db", HTTPPort: 0},
		"cloud w/o admin":  {BuildTarget: "cloud", PostgresDSN: "postgres://x", HTTPPort: 8080},
	}
	for name, cfg := range cases {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.ResolveDefaults())
		})
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	require.NoError(t, cfg.ResolveDefaults())
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
}
