package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		state string
		ok    bool
	}{
		{"pgx", &pgconn.PgError{Code: DeadlockDetected}, DeadlockDetected, true},
		{"lib/pq", &pq.Error{Code: UniqueViolation}, UniqueViolation, true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: ForeignKeyViolation}), ForeignKeyViolation, true},
		{"mysql", &mysql.MySQLError{Number: MySQLDeadlock}, "", false},
		{"plain", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := State(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.state, state)
		})
	}
}

func TestMySQLNumber(t *testing.T) {
	n, ok := MySQLNumber(fmt.Errorf("exec: %w", &mysql.MySQLError{Number: MySQLDuplicateEntry}))
	assert.True(t, ok)
	assert.Equal(t, uint16(MySQLDuplicateEntry), n)

	_, ok = MySQLNumber(&pq.Error{Code: UniqueViolation})
	assert.False(t, ok)
}
