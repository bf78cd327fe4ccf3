package middleware

import (
	"net/http"
	"time"
)

// NoCache marks every response as uncacheable
func NoCache() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, post-check=0, pre-check=0, max-age=0")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "-1")

			next.ServeHTTP(w, r)
		})
	}
}
