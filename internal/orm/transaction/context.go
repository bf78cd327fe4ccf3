package transaction

import (
	"context"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// contextKeySession is the key for storing a session in context
	contextKeySession contextKey = "mongoose:session"
)

// FromContext retrieves a session from the context
// Returns the session and true if found, nil and false otherwise
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*Session)
	return s, ok
}

// WithContext returns a new context with the session embedded
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKeySession, s)
}
