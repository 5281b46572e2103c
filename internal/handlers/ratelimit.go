package handlers

import (
	"net/http"

	"golang.org/x/time/rate"

	applog "boxboxd/internal/log"
)

// RateLimit rejects requests beyond the limiter's budget. It guards the
// credential endpoints against brute-force attempts.
func RateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			applog.Warn(r.Context(), "rate limit exceeded", "path", r.URL.Path)
			http.Error(w, "Too many attempts. Please slow down.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
