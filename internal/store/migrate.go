package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// goose keeps dialect, base filesystem and logger in package globals, so
// every adapter migrates under this one lock.
var migrateMu sync.Mutex

// Migrate applies the migrations under dir in fsys using the goose dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(gooseLogger{log: log.With().Str("component", "migrate").Str("dialect", dialect).Logger()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	return goose.UpContext(ctx, db, dir)
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level; it never exits the process.
func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
