package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestInvalidColumnError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &InvalidColumnError{Table: "food", Column: "nutrition"})

	assert.True(t, IsInvalidColumn(err))
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.Contains(t, err.Error(), "food.nutrition")
	assert.False(t, IsInvalidColumn(ErrInvalidState))
}

func TestConstraintClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		unique bool
		fk     bool
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, false},
		{"mysql parent row", &mysql.MySQLError{Number: 1451}, false, true},
		{"mysql child row", &mysql.MySQLError{Number: 1452}, false, true},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true, false},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, false, true},
		{"lib/pq unique", &pq.Error{Code: "23505"}, true, false},
		{"lib/pq foreign key", &pq.Error{Code: "23503"}, false, true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true, false},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true, false},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false, true},
		{"wrapped in query error", &QueryError{Query: "INSERT", Err: &mysql.MySQLError{Number: 1062}}, true, false},
		{"plain error", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.fk, IsForeignKeyViolation(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("driver failure")

	assert.ErrorIs(t, &ConnectionError{Table: "food", Err: cause}, cause)
	assert.ErrorIs(t, &QueryError{Query: "SELECT 1", Err: cause}, cause)
	assert.Contains(t, (&ConnectionError{Table: "food", Err: cause}).Error(), "food")
}
