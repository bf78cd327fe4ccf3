package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
	webcontext "github.com/mongoose-kitchen/mongoose/internal/web/context"
)

// Session opens one database session per request and stores it in the
// request context. The session is closed when the handler returns, which
// rolls back anything the handler left uncommitted.
func Session(manager *transaction.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := manager.Session()
			defer func() {
				if err := s.Close(); err != nil {
					webcontext.GetLogger(r.Context()).Warn("session close failed", zap.Error(err))
				}
			}()

			next.ServeHTTP(w, r.WithContext(transaction.WithContext(r.Context(), s)))
		})
	}
}
