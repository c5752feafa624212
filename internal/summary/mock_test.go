package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMockSummarizer_DistinctOutputsPerCall(t *testing.T) {
	t.Parallel()
	mock := NewMockSummarizer()
	ctx := context.Background()

	a, err := mock.Summarize(ctx, "same content")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	b, err := mock.Summarize(ctx, "same content")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if a == b {
		t.Fatalf("identical inputs should still produce distinct outputs: %q", a)
	}
	if !strings.Contains(a, "same content") {
		t.Fatalf("output should reference the input: %q", a)
	}
}

func TestMockSummarizer_FailAndRecover(t *testing.T) {
	t.Parallel()
	mock := NewMockSummarizer()
	ctx := context.Background()

	boom := errors.New("boom")
	mock.Fail(boom)
	if _, err := mock.Summarize(ctx, "x"); !errors.Is(err, boom) {
		t.Fatalf("expected configured failure, got %v", err)
	}

	mock.Fail(nil)
	if _, err := mock.Summarize(ctx, "x"); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}

	// Failed calls are still captured
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 captured calls, got %d", mock.CallCount())
	}
}

func TestMockSummarizer_CallsAreCopied(t *testing.T) {
	t.Parallel()
	mock := NewMockSummarizer()
	ctx := context.Background()

	mock.Summarize(ctx, "first")
	calls := mock.Calls()
	calls[0] = "mutated"

	if mock.Calls()[0] != "first" {
		t.Fatal("Calls should return a copy")
	}

	mock.Clear()
	if mock.CallCount() != 0 {
		t.Fatalf("expected 0 after Clear, got %d", mock.CallCount())
	}
}
