package repository

import (
	"context"
	"database/sql"
)

// dbtx is the subset of database operations shared by *sql.DB and
// *sql.Tx.  Repository methods that must work both standalone and
// inside a transaction are written against this interface; the
// exported wrappers pick the handle.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
