// Package notes implements the note lifecycle: CRUD and favorite toggling
// over the per-user store, summary get-or-create and regeneration against
// the summarization service, and reconciliation of the session cache after
// each successful write.
//
// The consistency contract: a note's persisted summary reflects its content
// as of the last successful generation. Create tolerates a failed
// generation (note exists, summary absent); Update does not (the user
// expects body and summary to move together). Cache entries are only ever
// patched after the corresponding storage write succeeded.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jotsum/jotsum/internal/cache"
	"github.com/jotsum/jotsum/internal/db"
	"github.com/jotsum/jotsum/internal/errs"
	"github.com/jotsum/jotsum/internal/obs"
	"github.com/jotsum/jotsum/internal/summary"
)

// Cache keys for the session store. One list entry, one detail entry per
// note, one summary entry per note.
const listCacheKey = "notes:list"

func detailCacheKey(id string) string { return "notes:detail:" + id }

func summaryCacheKey(noteID string) string { return "notes:summary:" + noteID }

// Service orchestrates note operations for one authenticated user.
type Service struct {
	userDB     *db.UserDB
	summarizer summary.Summarizer
	cache      *cache.Store
}

// NewService creates a notes service scoped to one user's database and
// session cache.
func NewService(userDB *db.UserDB, summarizer summary.Summarizer, store *cache.Store) *Service {
	return &Service{
		userDB:     userDB,
		summarizer: summarizer,
		cache:      store,
	}
}

// List returns all notes ordered by updated_at descending and populates the
// list cache entry.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	rows, err := s.userDB.ListNotes(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to list notes", err)
	}

	result := make([]Note, 0, len(rows))
	for _, row := range rows {
		result = append(result, *s.rowToNote(row))
	}
	s.cache.Set(listCacheKey, result)
	return result, nil
}

// Read returns a single note by id and populates the detail cache entry.
func (s *Service) Read(ctx context.Context, id string) (*Note, error) {
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "note ID is required")
	}

	row, err := s.userDB.GetNote(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
	}

	note := s.rowToNote(row)
	s.cache.Set(detailCacheKey(id), note)
	return note, nil
}

// Create inserts a new note and best-effort generates its summary. The note
// write must succeed; a summary failure is logged and surfaced as a warning
// on the result, never as the operation's error.
func (s *Service) Create(ctx context.Context, params CreateNoteParams) (*CreateResult, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, errs.New(errs.InvalidArgument, "title is required")
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, errs.New(errs.InvalidArgument, "content is required")
	}

	tags := NormalizeTags(params.Tags)
	noteID := uuid.New().String()
	now := time.Now().UTC().Unix()

	err := s.userDB.InsertNote(ctx, db.NoteRow{
		ID:        noteID,
		Title:     params.Title,
		Content:   params.Content,
		Tags:      encodeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to create note", err)
	}

	note := &Note{
		ID:        noteID,
		Title:     params.Title,
		Content:   params.Content,
		Tags:      tags,
		UserID:    s.userDB.UserID(),
		CreatedAt: time.Unix(now, 0).UTC(),
		UpdatedAt: time.Unix(now, 0).UTC(),
	}

	result := &CreateResult{Note: note}
	text, genErr := s.summarizer.Summarize(ctx, note.Content)
	switch {
	case genErr != nil:
		obs.From(ctx).Warn("summary generation failed on create",
			"note_id", noteID, "error", genErr)
		result.SummaryWarning = errs.Wrap(errs.SummaryFailed, "summary generation failed", genErr)
	default:
		if err := s.persistSummary(ctx, noteID, text); err != nil {
			obs.From(ctx).Warn("summary persistence failed on create",
				"note_id", noteID, "error", err)
			result.SummaryWarning = errs.Wrap(errs.SummaryFailed, "summary could not be saved", err)
		} else {
			result.Summary = text
			s.cache.Set(summaryCacheKey(noteID), text)
		}
	}

	s.cache.Set(detailCacheKey(noteID), note)
	s.patchList(func(cached []Note) []Note {
		return append([]Note{*note}, cached...)
	})

	return result, nil
}

// Update replaces a note's title, content, and tags, then unconditionally
// regenerates the summary from the new content. updated_at strictly
// advances even when two edits land in the same second. A summary failure
// here is the operation's failure surface (the user sees body and summary
// change together), but the note row stays updated and the note caches are
// reconciled; only the summary cache is left untouched.
func (s *Service) Update(ctx context.Context, id string, params UpdateNoteParams) (*UpdateResult, error) {
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "note ID is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, errs.New(errs.InvalidArgument, "title is required")
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, errs.New(errs.InvalidArgument, "content is required")
	}

	existing, err := s.userDB.GetNote(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
	}

	tags := NormalizeTags(params.Tags)
	updatedAt := time.Now().UTC().Unix()
	if updatedAt <= existing.UpdatedAt {
		updatedAt = existing.UpdatedAt + 1
	}

	err = s.userDB.UpdateNote(ctx, id, params.Title, params.Content, encodeTags(tags), updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to update note", err)
	}

	note := &Note{
		ID:          id,
		Title:       params.Title,
		Content:     params.Content,
		Tags:        tags,
		UserID:      s.userDB.UserID(),
		IsFavorited: existing.IsFavorited != 0,
		CreatedAt:   time.Unix(existing.CreatedAt, 0).UTC(),
		UpdatedAt:   time.Unix(updatedAt, 0).UTC(),
	}

	// The note row is committed; reconcile its caches before attempting
	// regeneration so a summary failure cannot leave them stale.
	s.cache.Set(detailCacheKey(id), note)
	s.patchList(func(cached []Note) []Note {
		return replaceByID(cached, *note)
	})

	text, genErr := s.summarizer.Summarize(ctx, note.Content)
	if genErr != nil {
		return nil, errs.Wrap(errs.SummaryFailed, "note saved but summary regeneration failed", genErr)
	}
	if err := s.persistSummary(ctx, id, text); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "note saved but regenerated summary could not be stored", err)
	}
	s.cache.Set(summaryCacheKey(id), text)

	return &UpdateResult{Note: note, Summary: text}, nil
}

// ToggleFavorite flips the favorite flag. It never touches updated_at or
// the summary, and the caches are patched in place by matching id rather
// than refetched.
func (s *Service) ToggleFavorite(ctx context.Context, id string, favorited bool) (*Note, error) {
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "note ID is required")
	}

	err := s.userDB.SetFavorite(ctx, id, favorited)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to toggle favorite", err)
	}

	var note *Note
	if v, ok := s.cache.Get(detailCacheKey(id)); ok {
		patched := *v.(*Note)
		patched.IsFavorited = favorited
		note = &patched
	} else {
		row, err := s.userDB.GetNote(ctx, id)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
		}
		note = s.rowToNote(row)
	}
	s.cache.Set(detailCacheKey(id), note)
	s.patchList(func(cached []Note) []Note {
		out := make([]Note, len(cached))
		copy(out, cached)
		for i := range out {
			if out[i].ID == id {
				out[i].IsFavorited = favorited
			}
		}
		return out
	})

	return note, nil
}

// Delete removes a note. The summary row is deleted first, best-effort: an
// orphaned summary is preferable to a delete blocked by a summary failure,
// so only the note-row delete can fail the operation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errs.New(errs.InvalidArgument, "note ID is required")
	}

	if err := s.userDB.DeleteSummary(ctx, id); err != nil {
		obs.From(ctx).Warn("summary delete failed, proceeding with note delete",
			"note_id", id, "error", err)
	}

	err := s.userDB.DeleteNote(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return errs.Wrap(errs.Unavailable, "failed to delete note", err)
	}

	s.cache.Delete(detailCacheKey(id))
	s.cache.Delete(summaryCacheKey(id))
	s.patchList(func(cached []Note) []Note {
		out := make([]Note, 0, len(cached))
		for _, n := range cached {
			if n.ID != id {
				out = append(out, n)
			}
		}
		return out
	})

	return nil
}

func (s *Service) persistSummary(ctx context.Context, noteID, text string) error {
	return s.userDB.UpsertSummary(ctx, db.SummaryRow{
		ID:        uuid.New().String(),
		NoteID:    noteID,
		Summary:   text,
		CreatedAt: time.Now().UTC().Unix(),
	})
}

// patchList applies patch to the cached list entry, if one is loaded.
// Absent entries stay absent; the next List call populates them.
// Patches are copy-on-write: they must return a fresh slice and never
// write into the one they receive, because List hands that same slice to
// callers who may still be reading it.
func (s *Service) patchList(patch func([]Note) []Note) {
	v, ok := s.cache.Get(listCacheKey)
	if !ok {
		return
	}
	cached, ok := v.([]Note)
	if !ok {
		return
	}
	s.cache.Set(listCacheKey, patch(cached))
}

func replaceByID(cached []Note, updated Note) []Note {
	out := make([]Note, len(cached))
	for i := range cached {
		if cached[i].ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = cached[i]
		}
	}
	return out
}

func (s *Service) rowToNote(row db.NoteRow) *Note {
	return &Note{
		ID:          row.ID,
		Title:       row.Title,
		Content:     row.Content,
		Tags:        decodeTags(row.Tags),
		UserID:      s.userDB.UserID(),
		IsFavorited: row.IsFavorited != 0,
		CreatedAt:   time.Unix(row.CreatedAt, 0).UTC(),
		UpdatedAt:   time.Unix(row.UpdatedAt, 0).UTC(),
	}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		// A []string cannot fail to marshal.
		return "[]"
	}
	return string(data)
}

// decodeTags never returns nil so a tagless note serializes as [] rather
// than null.
func decodeTags(raw string) []string {
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
