package record

import (
	"context"
	"database/sql"
)

// Conn is the connection collaborator a record runs its statements on.
// *transaction.Session implements it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// Commit ends the current transaction boundary
	Commit() error
	// Atomic runs fn in one transaction scope, committing on success and
	// rolling back on error
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
