package store

import (
	"context"
	"database/sql"
)

// Querier is the part of *sql.DB and *sql.Tx that the SQL stores use, so one
// store type serves both the pool and a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
