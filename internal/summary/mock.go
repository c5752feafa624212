package summary

import (
	"context"
	"fmt"
	"sync"
)

// MockSummarizer is a deterministic in-process summarizer for tests and
// --no-ai mode. Distinct inputs produce distinct outputs, so tests can
// detect whether regeneration actually ran. Calls are captured for
// assertions, and Fail forces every call to error.
type MockSummarizer struct {
	mu    sync.Mutex
	calls []string
	fail  error
	seq   int
}

// NewMockSummarizer creates a mock summarizer.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns text derived from content, or the configured failure.
// Each call gets a sequence number so even identical inputs are
// distinguishable, mirroring the non-determinism of the real service.
func (m *MockSummarizer) Summarize(_ context.Context, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, content)
	if m.fail != nil {
		return "", m.fail
	}
	m.seq++
	preview := content
	if len(preview) > 40 {
		preview = preview[:40]
	}
	return fmt.Sprintf("Summary #%d of %d chars: %s", m.seq, len(content), preview), nil
}

// Fail makes every subsequent call return err. Pass nil to restore success.
func (m *MockSummarizer) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Calls returns a copy of the captured inputs.
func (m *MockSummarizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Summarize invocations.
func (m *MockSummarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Clear removes all captured calls.
func (m *MockSummarizer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
