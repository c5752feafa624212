package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(rps float64, burst int) *RateLimiter {
	return NewRateLimiter(Config{RPS: rps, Burst: burst, CleanupInterval: time.Hour})
}

func TestAllow_EnforcesBurst(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(0.001, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("user-1") {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}
	if rl.Allow("user-1") {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestAllow_PerUserIsolation(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(0.001, 1)
	defer rl.Stop()

	if !rl.Allow("user-a") {
		t.Fatal("user-a first request should pass")
	}
	if rl.Allow("user-a") {
		t.Fatal("user-a second request should be denied")
	}

	// A different user has their own bucket
	if !rl.Allow("user-b") {
		t.Fatal("user-b should not be affected by user-a's usage")
	}
}

func TestCleanup_RemovesIdleEntries(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(Config{RPS: 1, Burst: 1, CleanupInterval: time.Millisecond})
	defer rl.Stop()

	rl.Allow("idle-user")
	if rl.Size() != 1 {
		t.Fatalf("expected 1 tracked user, got %d", rl.Size())
	}

	time.Sleep(5 * time.Millisecond)
	rl.Cleanup()
	if rl.Size() != 0 {
		t.Fatalf("expected idle entry removed, got %d", rl.Size())
	}
}

func TestStop_TerminatesCleanly(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(1, 1)
	rl.Allow("u")
	rl.Stop()
	// Allow still works after Stop; only the cleanup goroutine ends
	rl.Allow("u")
}
