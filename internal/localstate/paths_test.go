package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDir_Override(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "state")
	t.Setenv(envHome, tmp)

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, tmp, dir)
	_, err = os.Stat(dir)
	assert.NoError(t, err, "dir not created")
}

func TestDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, dbFilename), p)
}

func TestResolveDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := ResolveDBPath("custom.db")
	require.NoError(t, err)
	assert.Equal(t, "custom.db", p)

	p, err = ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "ledger.db"), p)
}
