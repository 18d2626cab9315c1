package store

import (
	"context"
	"database/sql"

	"github.com/dialectdeck/ledger/internal/model"
)

// Querier is satisfied by *sql.DB and *sql.Tx so adapters can share
// statement helpers between plain calls and transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// NullDate converts a nullable YYYY-MM-DD column.
func NullDate(ns sql.NullString) (*model.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// NullString maps an optional string to a nullable column value.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt64 maps an optional id to a nullable column value.
func NullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// StringPtr returns nil for a NULL column.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Int64Ptr returns nil for a NULL column.
func Int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
