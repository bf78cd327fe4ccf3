package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mongoose-kitchen/mongoose/internal/web/middleware"
)

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	r.Get("/recipe/{ref}/", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("get " + chi.URLParam(req, "ref")))
	})
	r.Delete("/recipe/{id}/del/", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("delete " + chi.URLParam(req, "id")))
	})

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/recipe/7/", "get 7"},
		{http.MethodGet, "/recipe/soup/", "get soup"},
		{http.MethodDelete, "/recipe/7/del/", "delete 7"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Body.String() != tt.body {
			t.Errorf("%s %s: expected %q, got %q", tt.method, tt.path, tt.body, rec.Body.String())
		}
	}
}

func TestRouter_Middleware(t *testing.T) {
	r := NewRouter()
	r.Use(middleware.NoCache())
	r.Get("/fridge/", func(w http.ResponseWriter, req *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fridge/", nil))
	if rec.Header().Get("Pragma") != "no-cache" {
		t.Error("Expected router middleware to run")
	}
}

func TestRouter_GetRoutes(t *testing.T) {
	r := NewRouter()
	r.Post("/menu/", nil).Named("menu.save")
	r.Get("/menu/date/between/{begin}/{end}/", nil)
	r.Get("/menu/", nil)

	routes := r.GetRoutes()
	if len(routes) != 3 {
		t.Fatalf("Expected 3 routes, got %d", len(routes))
	}
	if routes[0].Pattern != "/menu/" || routes[0].Method != http.MethodGet {
		t.Errorf("Expected GET /menu/ first, got %s %s", routes[0].Method, routes[0].Pattern)
	}
	if routes[1].Name != "menu.save" {
		t.Errorf("Expected named route, got %q", routes[1].Name)
	}

	params := routes[2].Parameters
	if len(params) != 2 || params[0].Name != "begin" || params[0].Type != "date" {
		t.Errorf("Unexpected parameters %+v", params)
	}
}

func TestInferParameterType(t *testing.T) {
	tests := map[string]string{
		"id":          "int",
		"menu_id":     "int",
		"ref":         "ref",
		"date":        "date",
		"time_of_day": "string",
	}
	for name, expected := range tests {
		if got := inferParameterType(name); got != expected {
			t.Errorf("%s: expected %s, got %s", name, expected, got)
		}
	}
}

func TestDefaultErrorHandlers(t *testing.T) {
	r := NewRouter()
	SetupDefaultErrorHandlers(r)
	r.Get("/fridge/", func(w http.ResponseWriter, req *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pantry/", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"code":"not_found"`) {
		t.Errorf("Expected JSON 404, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/fridge/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
