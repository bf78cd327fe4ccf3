package transaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func TestIsDeadlockError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "MySQL deadlock",
			err:      &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"},
			expected: true,
		},
		{
			name:     "MySQL lock wait timeout wrapped",
			err:      fmt.Errorf("update food: %w", &mysql.MySQLError{Number: 1205}),
			expected: true,
		},
		{
			name:     "MySQL duplicate entry",
			err:      &mysql.MySQLError{Number: 1062},
			expected: false,
		},
		{
			name:     "pgx deadlock",
			err:      &pgconn.PgError{Code: "40P01"},
			expected: true,
		},
		{
			name:     "lib/pq deadlock",
			err:      &pq.Error{Code: "40P01"},
			expected: true,
		},
		{
			name:     "PostgreSQL deadlock code in message",
			err:      errors.New("pq: deadlock detected (SQLSTATE 40P01)"),
			expected: true,
		},
		{
			name:     "deadlock found message",
			err:      errors.New("ERROR: deadlock found when trying to get lock"),
			expected: true,
		},
		{
			name:     "lock wait timeout",
			err:      errors.New("lock wait timeout exceeded; try restarting transaction"),
			expected: true,
		},
		{
			name:     "non-deadlock error",
			err:      errors.New("some other database error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isDeadlockError(tt.err)
			if got != tt.expected {
				t.Errorf("isDeadlockError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsSerializationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"pgx serialization", &pgconn.PgError{Code: "40001"}, true},
		{"lib/pq serialization", &pq.Error{Code: "40001"}, true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"serialization message", errors.New("could not serialize access due to concurrent update"), true},
		{"non-serialization error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isSerializationError(tt.err)
			if got != tt.expected {
				t.Errorf("isSerializationError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	if !IsRetryableError(errors.New("deadlock detected")) {
		t.Error("deadlock should be retryable")
	}
	if !IsRetryableError(&pgconn.PgError{Code: "40001"}) {
		t.Error("serialization failure should be retryable")
	}
	if IsRetryableError(errors.New("constraint violation")) {
		t.Error("constraint violation should not be retryable")
	}
	if IsRetryableError(nil) {
		t.Error("nil should not be retryable")
	}
}

func TestSession_WithRetry_SucceedsAfterDeadlock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	mgr := NewManager(db, WithRetryConfig(&RetryConfig{MaxRetries: 3, BaseBackoff: time.Millisecond}))
	s := mgr.Session()
	defer s.Close()

	attempts := 0
	err := s.WithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if _, err := s.ExecContext(ctx, "INSERT INTO test_records (name) VALUES (?)", "attempt"); err != nil {
			return err
		}
		if attempts < 2 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}

	// The failed attempt was rolled back, so only one row survives
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test_records").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record, got %d", count)
	}
}

func TestSession_WithRetry_Exhausted(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	mgr := NewManager(db, WithRetryConfig(&RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond}))
	s := mgr.Session()
	defer s.Close()

	attempts := 0
	err := s.WithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("deadlock detected")
	})
	if !errors.Is(err, ErrDeadlock) {
		t.Errorf("expected ErrDeadlock, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestSession_WithRetry_NonRetryable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewManager(db).Session()
	defer s.Close()

	sentinel := errors.New("bad payload")
	attempts := 0
	err := s.WithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestSession_WithRetry_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewManager(db).Session()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithRetry(ctx, func(ctx context.Context) error {
		t.Error("fn should not run on a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
