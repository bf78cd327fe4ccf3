// Package sqlerr reads driver error codes without caring which driver
// produced the error.
package sqlerr

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// MySQL error numbers
const (
	MySQLLockWaitTimeout = 1205
	MySQLDeadlock        = 1213
	MySQLDuplicateEntry  = 1062
	MySQLRowIsReferenced = 1451
	MySQLNoReferencedRow = 1452
)

// SQLSTATE codes
const (
	UniqueViolation      = "23505"
	ForeignKeyViolation  = "23503"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// State returns the SQLSTATE carried by a pgx or lib/pq error anywhere in
// err's chain
func State(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// MySQLNumber returns the server error number of a MySQL error anywhere in
// err's chain
func MySQLNumber(err error) (uint16, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number, true
	}
	return 0, false
}
