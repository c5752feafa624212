package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jotsum/jotsum/internal/auth"
)

func TestMiddleware_AllowsThenLimits(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: 2, CleanupInterval: time.Hour})
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/notes/n1/summary", nil)
		req = req.WithContext(auth.WithTestUser(req.Context(), userID, nil))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("u1"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := do("u1"); code != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", code)
	}
	if code := do("u1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", code)
	}

	// Another user is unaffected
	if code := do("u2"); code != http.StatusOK {
		t.Fatalf("other user: expected 200, got %d", code)
	}
}

func TestMiddleware_RejectsMissingUser(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(DefaultConfig)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes/n1/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an authenticated user, got %d", rec.Code)
	}
}
