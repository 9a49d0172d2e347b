package store

import (
	"context"
	"database/sql"
)

// DBTX is the query surface a card store needs from database/sql.
// Both *sql.DB and *sql.Tx satisfy it, so the same store can run its
// statements on the shared pool or inside a transaction handed over
// through WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
