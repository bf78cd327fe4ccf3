package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/sqlerr"
)

const (
	// DefaultMaxRetries is the default number of retry attempts for deadlocks
	DefaultMaxRetries = 3
	// DefaultBaseBackoff is the default base backoff duration
	DefaultBaseBackoff = 100 * time.Millisecond
)

// RetryConfig configures retry behavior for transactions
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// WithRetry runs fn in an Atomic scope, retrying the whole scope on deadlock
// or serialization failure with exponential backoff
func (s *Session) WithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	config := s.manager.retry
	if config == nil || config.MaxRetries < 1 {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxRetries; attempt++ {
		// Check if context is already cancelled before starting retry attempt
		if ctx.Err() != nil {
			return fmt.Errorf("transaction cancelled before retry %d: %w", attempt, ctx.Err())
		}

		err := s.Atomic(ctx, fn)
		if err == nil {
			return nil
		}

		if !IsRetryableError(err) {
			return err
		}
		lastErr = err

		// Calculate exponential backoff: baseBackoff * 2^attempt
		backoff := config.BaseBackoff * time.Duration(1<<uint(attempt))
		s.manager.logger.Debug("retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w: transaction failed after %d retries: %v", ErrDeadlock, config.MaxRetries, lastErr)
}

// isDeadlockError checks if an error is a deadlock or lock wait timeout
func isDeadlockError(err error) bool {
	if err == nil {
		return false
	}

	if n, ok := sqlerr.MySQLNumber(err); ok {
		return n == sqlerr.MySQLDeadlock || n == sqlerr.MySQLLockWaitTimeout
	}
	if code, ok := sqlerr.State(err); ok {
		return code == sqlerr.DeadlockDetected
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, strings.ToLower(sqlerr.DeadlockDetected)) {
		return true
	}

	// Common deadlock error messages
	deadlockMessages := []string{
		"deadlock detected",
		"deadlock found",
		"lock wait timeout exceeded",
	}

	for _, msg := range deadlockMessages {
		if strings.Contains(errStr, msg) {
			return true
		}
	}

	return false
}

// isSerializationError checks if an error is a serialization failure
func isSerializationError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := sqlerr.State(err); ok {
		return code == sqlerr.SerializationFailure
	}

	errStr := err.Error()
	if strings.Contains(errStr, sqlerr.SerializationFailure) {
		return true
	}
	return strings.Contains(strings.ToLower(errStr), "could not serialize access")
}

// IsRetryableError checks if an error is retryable (deadlock or serialization failure)
func IsRetryableError(err error) bool {
	return isDeadlockError(err) || isSerializationError(err)
}
