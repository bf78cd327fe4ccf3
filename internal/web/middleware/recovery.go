package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	webcontext "github.com/mongoose-kitchen/mongoose/internal/web/context"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

// RecoveryConfig holds configuration for the recovery middleware
type RecoveryConfig struct {
	// EnableStackTrace determines whether to log stack traces
	EnableStackTrace bool
	Logger           *zap.Logger
	// ResponseHandler writes the response after a panic; defaults to a JSON 500
	ResponseHandler func(http.ResponseWriter, *http.Request, interface{})
}

// Recovery turns a panic in a handler into a logged JSON 500
func Recovery(logger *zap.Logger) Middleware {
	return RecoveryWithConfig(RecoveryConfig{
		EnableStackTrace: true,
		Logger:           logger,
	})
}

// RecoveryWithConfig creates a recovery middleware with custom configuration
func RecoveryWithConfig(config RecoveryConfig) Middleware {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.ResponseHandler == nil {
		config.ResponseHandler = func(w http.ResponseWriter, r *http.Request, _ interface{}) {
			response.RenderInternalError(w)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				fields := []zap.Field{
					zap.String("request_id", webcontext.GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(panicError(p)),
				}
				if config.EnableStackTrace {
					fields = append(fields, zap.ByteString("stack", debug.Stack()))
				}
				config.Logger.Error("panic recovered", fields...)

				config.ResponseHandler(w, r, p)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicError(p interface{}) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", p)
}
