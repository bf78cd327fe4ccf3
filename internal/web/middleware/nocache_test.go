package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNoCache(t *testing.T) {
	handler := NoCache()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fridge/", nil))

	expected := map[string]string{
		"Cache-Control": "no-store, no-cache, must-revalidate, post-check=0, pre-check=0, max-age=0",
		"Pragma":        "no-cache",
		"Expires":       "-1",
	}
	for header, value := range expected {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s: expected %q, got %q", header, value, got)
		}
	}

	if _, err := time.Parse(http.TimeFormat, rec.Header().Get("Last-Modified")); err != nil {
		t.Errorf("Last-Modified is not an HTTP date: %v", err)
	}
}
