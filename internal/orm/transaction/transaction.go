// Package transaction provides the per-request database session the record
// layer runs its statements on. A session opens a transaction lazily on the
// first statement and keeps it until Commit, Rollback or Close.
package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrSessionClosed is returned when a statement runs on a closed session
	ErrSessionClosed = errors.New("session closed")
	// ErrDeadlock is returned when retries are exhausted on deadlocks
	ErrDeadlock = errors.New("deadlock detected")
)

// IsolationLevel represents the transaction isolation level
type IsolationLevel int

const (
	// DefaultIsolation uses the driver's default level
	DefaultIsolation IsolationLevel = iota
	// ReadUncommitted allows dirty reads
	ReadUncommitted
	// ReadCommitted prevents dirty reads (PostgreSQL default)
	ReadCommitted
	// RepeatableRead prevents non-repeatable reads (MySQL InnoDB default)
	RepeatableRead
	// Serializable provides full isolation
	Serializable
)

// String returns the string representation of the isolation level
func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "READ UNCOMMITTED"
	case ReadCommitted:
		return "READ COMMITTED"
	case RepeatableRead:
		return "REPEATABLE READ"
	case Serializable:
		return "SERIALIZABLE"
	default:
		return "DEFAULT"
	}
}

// ToSQLOptions converts IsolationLevel to sql.TxOptions. The default level
// yields nil so drivers without isolation support still accept it.
func (l IsolationLevel) ToSQLOptions() *sql.TxOptions {
	var level sql.IsolationLevel
	switch l {
	case ReadUncommitted:
		level = sql.LevelReadUncommitted
	case ReadCommitted:
		level = sql.LevelReadCommitted
	case RepeatableRead:
		level = sql.LevelRepeatableRead
	case Serializable:
		level = sql.LevelSerializable
	default:
		return nil
	}
	return &sql.TxOptions{Isolation: level}
}

// Manager hands out sessions over one connection pool
type Manager struct {
	db     *sql.DB
	level  IsolationLevel
	retry  *RetryConfig
	logger *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithIsolation sets the isolation level of every session transaction
func WithIsolation(level IsolationLevel) Option {
	return func(m *Manager) { m.level = level }
}

// WithRetryConfig sets the retry policy used by Session.WithRetry
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(m *Manager) { m.retry = cfg }
}

// WithLogger sets the logger for rollback and retry diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a new session manager
func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{
		db:     db,
		retry:  DefaultRetryConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DB returns the underlying connection pool
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Session opens a new session. No connection is taken until the first
// statement runs.
func (m *Manager) Session() *Session {
	return &Session{manager: m}
}

// Session is one request's view of the database. It is not meant to be
// shared across requests.
type Session struct {
	manager *Manager

	mu     sync.Mutex
	tx     *sql.Tx
	depth  int // Atomic nesting; Commit is deferred to the outermost scope
	closed bool
}

// begin returns the open transaction, starting one if needed
func (s *Session) begin(ctx context.Context) (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}

	tx, err := s.manager.db.BeginTx(ctx, s.manager.level.ToSQLOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// ExecContext executes a statement that doesn't return rows
func (s *Session) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (s *Session) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.QueryRowContext(ctx, query, args...), nil
}

// Commit commits the open transaction, if any. Inside an Atomic scope it is
// a no-op; the scope commits when it returns.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth > 0 || s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the open transaction, if any
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbackLocked()
}

func (s *Session) rollbackLocked() error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether a transaction is currently open
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Close rolls back anything left uncommitted and closes the session
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.rollbackLocked()
}

// Atomic runs fn as one unit: commit when fn succeeds, rollback when it
// fails or panics. Nested calls join the outermost scope.
func (s *Session) Atomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.depth++
	outermost := s.depth == 1
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		s.mu.Unlock()

		if !outermost {
			return
		}
		if p := recover(); p != nil {
			s.rollbackAfter(fmt.Errorf("panic: %v", p))
			panic(p) // Re-throw panic after rollback
		}
		if err != nil {
			s.rollbackAfter(err)
			return
		}
		err = s.Commit()
	}()

	return fn(ctx)
}

func (s *Session) rollbackAfter(cause error) {
	if rbErr := s.Rollback(); rbErr != nil {
		s.manager.logger.Warn("rollback failed",
			zap.NamedError("cause", cause),
			zap.Error(rbErr),
		)
	}
}
