package record

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mongoose-kitchen/mongoose/internal/orm/query"
	"github.com/mongoose-kitchen/mongoose/internal/orm/sqlerr"
)

// Common record error types
var (
	// ErrInvalidColumn is returned when a column is not part of the table catalog
	ErrInvalidColumn = errors.New("invalid column name")

	// ErrInvalidInputType is returned when a relationship write gets the wrong shape
	ErrInvalidInputType = errors.New("invalid input type")

	// ErrInvalidState is returned when an operation needs a bound record but
	// the primary key is unset
	ErrInvalidState = errors.New("record is not bound to a row")

	// ErrSchemaMismatch is returned when the database table does not match
	// the declared catalog
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupportedOperator is returned for comparison tokens outside the
	// supported vocabulary
	ErrUnsupportedOperator = query.ErrUnsupportedOperator
)

// InvalidColumnError names the table and the offending column
type InvalidColumnError struct {
	Table  string
	Column string
}

// Error implements the error interface
func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("%s: %s.%s", ErrInvalidColumn, e.Table, e.Column)
}

// Is reports whether target is ErrInvalidColumn
func (e *InvalidColumnError) Is(target error) bool {
	return target == ErrInvalidColumn
}

// ConnectionError is returned when a table cannot be reached at all, either
// because the connection is unusable or the table does not exist
type ConnectionError struct {
	Table string
	Err   error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach table %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying driver error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError carries the failed statement alongside the driver error
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

// Unwrap returns the underlying driver error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsInvalidColumn returns true if the error is an InvalidColumnError
func IsInvalidColumn(err error) bool {
	return errors.Is(err, ErrInvalidColumn)
}

// IsUniqueViolation returns true if the error is a unique or primary key
// constraint violation from any supported driver
func IsUniqueViolation(err error) bool {
	if n, ok := sqlerr.MySQLNumber(err); ok {
		return n == sqlerr.MySQLDuplicateEntry
	}
	if code, ok := sqlerr.State(err); ok {
		return code == sqlerr.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsForeignKeyViolation returns true if the error is a foreign key
// constraint violation from any supported driver
func IsForeignKeyViolation(err error) bool {
	if n, ok := sqlerr.MySQLNumber(err); ok {
		return n == sqlerr.MySQLRowIsReferenced || n == sqlerr.MySQLNoReferencedRow
	}
	if code, ok := sqlerr.State(err); ok {
		return code == sqlerr.ForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
