package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "LEDGER_STATE_HOME" // override for tests
	dirName    = ".dialectdeck"      // default under $HOME
	dbFilename = "ledger.db"
)

// DataDir returns the directory where local ledger state is stored (~/.dialectdeck).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the absolute path to the SQLite ledger file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

// ResolveDBPath returns configured unchanged, or DBPath when it is empty.
func ResolveDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return DBPath()
}
