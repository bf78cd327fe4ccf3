package router

import (
	"net/http"

	"github.com/mongoose-kitchen/mongoose/internal/web/response"
)

// SetupDefaultErrorHandlers renders unknown routes and methods as JSON errors
func SetupDefaultErrorHandlers(r *Router) {
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.RenderNotFound(w, "No route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.RenderMethodNotAllowed(w, req.Method)
	})
}
