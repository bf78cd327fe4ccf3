// Package router wraps chi with route introspection, so the CLI can print
// the route table the server actually registers.
package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mongoose-kitchen/mongoose/internal/web/middleware"
)

// Router manages HTTP routing using chi framework
type Router struct {
	mux chi.Router

	// For introspection
	registeredRoutes []*RouteInfo
}

// RouteInfo provides metadata about a route for introspection
type RouteInfo struct {
	Pattern    string
	Method     string
	Name       string
	Parameters []RouteParameter
}

// RouteParameter describes a path parameter
type RouteParameter struct {
	Name string
	Type string // int, date, ref (id or name), string
}

// NewRouter creates a new Router instance
func NewRouter() *Router {
	return &Router{
		mux:              chi.NewRouter(),
		registeredRoutes: make([]*RouteInfo, 0),
	}
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use adds middleware in the order given. Must be called before any route
// is registered.
func (r *Router) Use(middlewares ...middleware.Middleware) {
	for _, m := range middlewares {
		r.mux.Use(m)
	}
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc) *RouteInfo {
	return r.addRoute(http.MethodGet, pattern, handler)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc) *RouteInfo {
	return r.addRoute(http.MethodPost, pattern, handler)
}

// Delete registers a DELETE route
func (r *Router) Delete(pattern string, handler http.HandlerFunc) *RouteInfo {
	return r.addRoute(http.MethodDelete, pattern, handler)
}

func (r *Router) addRoute(method, pattern string, handler http.HandlerFunc) *RouteInfo {
	r.mux.Method(method, pattern, handler)

	info := &RouteInfo{
		Pattern:    pattern,
		Method:     method,
		Parameters: extractParameters(pattern),
	}
	r.registeredRoutes = append(r.registeredRoutes, info)
	return info
}

// Named sets a name for the route
func (ri *RouteInfo) Named(name string) *RouteInfo {
	ri.Name = name
	return ri
}

// GetRoutes returns all registered routes sorted by pattern, then method
func (r *Router) GetRoutes() []*RouteInfo {
	routes := make([]*RouteInfo, len(r.registeredRoutes))
	copy(routes, r.registeredRoutes)
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// NotFound sets the handler for 404 Not Found
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// MethodNotAllowed sets the handler for 405 Method Not Allowed
func (r *Router) MethodNotAllowed(handler http.HandlerFunc) {
	r.mux.MethodNotAllowed(handler)
}

// extractParameters extracts parameter definitions from a route pattern
func extractParameters(pattern string) []RouteParameter {
	params := make([]RouteParameter, 0)
	for _, part := range strings.Split(pattern, "/") {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := strings.Trim(part, "{}")
			params = append(params, RouteParameter{
				Name: name,
				Type: inferParameterType(name),
			})
		}
	}
	return params
}

// inferParameterType infers the type of a parameter from its name
func inferParameterType(name string) string {
	switch {
	case name == "id" || strings.HasSuffix(name, "_id"):
		return "int"
	case name == "ref":
		return "ref"
	case name == "date" || name == "begin" || name == "end":
		return "date"
	default:
		return "string"
	}
}
