package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCorrelation_RoundtripAndMerge(t *testing.T) {
	ctx := context.Background()

	if got := CorrelationFromContext(ctx); got != (Correlation{}) {
		t.Fatalf("expected empty correlation, got %+v", got)
	}

	ctx = WithCorrelation(ctx, Correlation{RequestID: "req-1"})
	ctx = WithCorrelation(ctx, Correlation{UserID: "user-1"})

	got := CorrelationFromContext(ctx)
	if got.RequestID != "req-1" || got.UserID != "user-1" {
		t.Fatalf("expected merged correlation, got %+v", got)
	}

	// Empty fields do not clobber existing values
	ctx = WithCorrelation(ctx, Correlation{})
	got = CorrelationFromContext(ctx)
	if got.RequestID != "req-1" || got.UserID != "user-1" {
		t.Fatalf("empty update clobbered correlation: %+v", got)
	}
}

func TestFrom_AttachesCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	ctx := WithCorrelation(context.Background(), Correlation{RequestID: "req-42", UserID: "u-7"})
	From(ctx).Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-42" {
		t.Fatalf("missing request_id: %v", entry)
	}
	if entry["user_id"] != "u-7" {
		t.Fatalf("missing user_id: %v", entry)
	}
	if entry["msg"] != "test message" {
		t.Fatalf("missing message: %v", entry)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	if got := TruncateForLog("  hello  ", 100); got != "hello" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := TruncateForLog("line1\nline2", 100); got != "line1\\nline2" {
		t.Fatalf("expected newlines escaped, got %q", got)
	}
	got := TruncateForLog(strings.Repeat("a", 50), 10)
	if got != strings.Repeat("a", 10)+"... [truncated]" {
		t.Fatalf("expected truncation, got %q", got)
	}
	if got := TruncateForLog("", 10); got != "" {
		t.Fatalf("expected empty for empty input, got %q", got)
	}
}

func TestMiddleware_LogsRequestAndStatus(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("middleware altered status: %d", rec.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["method"] != "GET" || entry["path"] != "/notes" {
		t.Fatalf("missing request fields: %v", entry)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("missing status: %v", entry)
	}
	if entry["request_id"] == nil || entry["request_id"] == "" {
		t.Fatalf("missing request_id: %v", entry)
	}
}
