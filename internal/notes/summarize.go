package notes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jotsum/jotsum/internal/errs"
	"github.com/jotsum/jotsum/internal/obs"
	"github.com/jotsum/jotsum/internal/summary"
)

// GetOrCreateSummary returns the persisted summary for a note, generating
// and storing one when absent. An existing summary is returned verbatim
// with no freshness check against the current content — only Update and
// RegenerateSummary refresh a stale summary.
//
// Generation failure is non-fatal here: the placeholder text is returned
// with a nil error, and nothing is persisted or cached, so the next call
// tries again.
func (s *Service) GetOrCreateSummary(ctx context.Context, noteID, noteContent string) (string, error) {
	if noteID == "" {
		return "", errs.New(errs.InvalidArgument, "note ID is required")
	}

	if v, ok := s.cache.Get(summaryCacheKey(noteID)); ok {
		return v.(string), nil
	}

	row, err := s.userDB.GetSummary(ctx, noteID)
	if err == nil {
		s.cache.Set(summaryCacheKey(noteID), row.Summary)
		return row.Summary, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", errs.Wrap(errs.Unavailable, "failed to load summary", err)
	}

	text, genErr := s.summarizer.Summarize(ctx, noteContent)
	if genErr != nil {
		obs.From(ctx).Warn("summary generation failed",
			"note_id", noteID, "error", genErr)
		return summary.Placeholder, nil
	}

	if err := s.persistSummary(ctx, noteID, text); err != nil {
		// Generated but not saved: return it for this request, but leave
		// the cache empty so the next read retries persistence.
		obs.From(ctx).Warn("summary persistence failed",
			"note_id", noteID, "error", err)
		return text, nil
	}
	s.cache.Set(summaryCacheKey(noteID), text)
	return text, nil
}

// RegenerateSummary unconditionally re-invokes the summarization service on
// the given content and upserts the result, replacing any existing row.
// This is the only path that refreshes a stale summary on demand.
func (s *Service) RegenerateSummary(ctx context.Context, noteID, noteContent string) (string, error) {
	if noteID == "" {
		return "", errs.New(errs.InvalidArgument, "note ID is required")
	}

	text, genErr := s.summarizer.Summarize(ctx, noteContent)
	if genErr != nil {
		return "", errs.Wrap(errs.SummaryFailed, "summary regeneration failed", genErr)
	}

	if err := s.persistSummary(ctx, noteID, text); err != nil {
		return "", errs.Wrap(errs.Unavailable, "regenerated summary could not be stored", err)
	}

	obs.From(ctx).Debug("summary regenerated",
		"note_id", noteID, "summary", obs.TruncateForLog(text, 120))
	s.cache.Set(summaryCacheKey(noteID), text)
	return text, nil
}
