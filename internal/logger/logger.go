// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns the ledger service logger writing JSON to stdout.
// Call sites should use .Stack() on error events to include stacks.
func New(serviceName string) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName)
}

// NewWithWriter is New with a custom destination.
func NewWithWriter(w io.Writer, serviceName string) zerolog.Logger {
	// Marshal pkg/errors stacks when present and attach one otherwise, so
	// .Stack() always renders something for store and handler errors.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}

	return zerolog.New(w).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// LevelFor maps a deployment environment to the minimum log level:
// debug for development, warn for testing, info otherwise.
func LevelFor(environment string) zerolog.Level {
	switch strings.ToLower(environment) {
	case "development":
		return zerolog.DebugLevel
	case "testing":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
