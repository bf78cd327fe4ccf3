package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	webcontext "github.com/mongoose-kitchen/mongoose/internal/web/context"
	"github.com/mongoose-kitchen/mongoose/internal/web/request"
	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

// statusFor maps an error to the status code it is rendered with
func statusFor(err error) int {
	var httpErr *response.HTTPError
	var connErr *record.ConnectionError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, request.ErrEmptyBody),
		errors.Is(err, request.ErrMalformedBody),
		errors.Is(err, record.ErrInvalidInputType),
		errors.Is(err, record.ErrInvalidColumn),
		errors.Is(err, record.ErrUnsupportedOperator),
		errors.Is(err, entity.ErrInvalidValue):
		return http.StatusBadRequest
	case record.IsUniqueViolation(err), record.IsForeignKeyViolation(err):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err. Server errors are logged and their cause is not sent to
// the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := webcontext.GetLogger(r.Context())

	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.Error(err))
		response.RenderInternalError(w)
	case http.StatusServiceUnavailable:
		logger.Error("database unavailable", zap.Error(err))
		response.RenderServiceUnavailable(w, "Database unavailable")
	case http.StatusGatewayTimeout:
		logger.Warn("request timed out", zap.Error(err))
		response.RenderError(w, status, errors.New("Request timed out"))
	case http.StatusConflict:
		logger.Info("constraint violation", zap.Error(err))
		response.RenderConflict(w, conflictMessage(err))
	default:
		var httpErr *response.HTTPError
		if errors.As(err, &httpErr) {
			httpErr.Render(w)
			return
		}
		response.RenderBadRequest(w, err.Error())
	}
}

func conflictMessage(err error) string {
	if record.IsForeignKeyViolation(err) {
		return "The request references a row that does not exist or is still referenced"
	}
	return "A row with the same key already exists"
}

// write renders payload as a 200 response, logging encoder failures
func (h *Handler) write(w http.ResponseWriter, r *http.Request, payload interface{}) {
	if err := response.OK(w, payload); err != nil {
		webcontext.GetLogger(r.Context()).Warn("response encoding failed", zap.Error(err))
	}
}
