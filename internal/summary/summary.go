// Package summary is the client for the external summarization service.
// The real implementation calls a hosted language model; tests and --no-ai
// mode use the mock. Repeated calls with identical input may return
// different text, and calls may fail — callers own both policies. Nothing
// here retries.
package summary

import "context"

// Placeholder is returned to the user when a summary cannot be generated.
// It is never persisted, so the next read attempts generation again.
const Placeholder = "Unable to generate summary at this time."

// Summarizer produces a short natural-language summary of note content.
type Summarizer interface {
	// Summarize returns a 3-5 sentence summary of content, or an error.
	Summarize(ctx context.Context, content string) (string, error)
}
