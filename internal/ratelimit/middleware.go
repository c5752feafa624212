package ratelimit

import (
	"net/http"

	"github.com/jotsum/jotsum/internal/auth"
	"github.com/jotsum/jotsum/internal/errs"
	"github.com/jotsum/jotsum/internal/obs"
)

// Middleware wraps a handler with per-user rate limiting. It must run after
// the auth middleware so the user ID is present in the request context.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())
		if userID == "" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		if !rl.Allow(userID) {
			obs.From(r.Context()).Warn("rate limit exceeded",
				"user_id", userID, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"` + string(errs.Unavailable) + `","message":"rate limit exceeded, try again later"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
