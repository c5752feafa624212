package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jotsum/jotsum/internal/testdb"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()
	dirDB, err := testdb.NewDirectoryDBInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory directory database: %v", err)
	}
	return NewTokenService(dirDB)
}

func TestToken_CreateResolveRoundtrip(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t)
	ctx := context.Background()

	token, err := svc.Create(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestToken_ResolveUnknown(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t)

	_, err := svc.Resolve(context.Background(), "not-a-real-token")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	_, err = svc.Resolve(context.Background(), "")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for empty token, got %v", err)
	}
}

func TestToken_Expiry(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t)
	ctx := context.Background()

	// 1ns TTL expires immediately at unix-second resolution
	token, err := svc.Create(ctx, "user-2", time.Nanosecond)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Resolve(ctx, token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestToken_CreateRequiresUserID(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t)

	if _, err := svc.Create(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for empty user ID")
	}
}

func TestToken_DistinctPerCall(t *testing.T) {
	t.Parallel()
	svc := newTokenService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-3", 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := svc.Create(ctx, "user-3", 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct tokens per call")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	if HashToken("abc") != HashToken("abc") {
		t.Fatal("hash should be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("distinct tokens should hash differently")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(HashToken("abc")))
	}
}
