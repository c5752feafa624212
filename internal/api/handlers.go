// Package api provides the HTTP handlers for the notes API.
// All routes require authentication; handlers resolve the caller's database
// and cache from the request context populated by the auth middleware.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/jotsum/jotsum/internal/auth"
	"github.com/jotsum/jotsum/internal/cache"
	"github.com/jotsum/jotsum/internal/errs"
	"github.com/jotsum/jotsum/internal/notes"
	"github.com/jotsum/jotsum/internal/ratelimit"
	"github.com/jotsum/jotsum/internal/summary"
)

// Handler wires the notes service to HTTP routes.
type Handler struct {
	summarizer summary.Summarizer
	caches     *cache.Registry
}

// NewHandler creates a new API handler.
func NewHandler(summarizer summary.Summarizer, caches *cache.Registry) *Handler {
	return &Handler{summarizer: summarizer, caches: caches}
}

// RegisterRoutes registers all notes API routes on the given mux. Every route
// is wrapped with authMW; summary routes additionally pass through the rate
// limiter because cache misses there cost a language-model call.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, authMW *auth.Middleware, limiter *ratelimit.RateLimiter) {
	protect := func(hf http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(hf)
	}
	limited := func(hf http.HandlerFunc) http.Handler {
		return authMW.RequireAuth(limiter.Middleware(hf))
	}

	mux.Handle("GET /notes", protect(h.ListNotes))
	mux.Handle("POST /notes", protect(h.CreateNote))
	mux.Handle("GET /notes/tags", protect(h.ListTags))
	mux.Handle("GET /notes/{id}", protect(h.GetNote))
	mux.Handle("PUT /notes/{id}", protect(h.UpdateNote))
	mux.Handle("DELETE /notes/{id}", protect(h.DeleteNote))
	mux.Handle("POST /notes/{id}/favorite", protect(h.ToggleFavorite))
	mux.Handle("GET /notes/{id}/html", protect(h.GetNoteHTML))
	mux.Handle("GET /notes/{id}/summary", limited(h.GetSummary))
	mux.Handle("POST /notes/{id}/summary/regenerate", limited(h.RegenerateSummary))
}

// service builds a per-request notes service from the authenticated context.
func (h *Handler) service(r *http.Request) (*notes.Service, error) {
	userDB := auth.UserDBFromContext(r.Context())
	if userDB == nil {
		return nil, errs.New(errs.PermissionDenied, "no authenticated user")
	}
	userID := auth.UserIDFromContext(r.Context())
	return notes.NewService(userDB, h.summarizer, h.caches.ForUser(userID)), nil
}

// ListNotes handles GET /notes - returns the caller's notes, newest first.
// Optional ?q= and ?tag= query parameters filter the list.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")
	if q != "" || tag != "" {
		list = notes.Filter(list, q, tag)
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": list, "count": len(list)})
}

// ListTags handles GET /notes/tags - returns the sorted set of distinct tags
// across the caller's notes.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tags": notes.TagUniverse(list)})
}

// GetNote handles GET /notes/{id} - returns a single note by ID.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	note, err := svc.Read(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// GetNoteHTML handles GET /notes/{id}/html - returns the note content
// rendered as sanitized HTML.
func (h *Handler) GetNoteHTML(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	note, err := svc.Read(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(notes.RenderHTML(note.Content)))
}

// CreateNote handles POST /notes - creates a new note and attempts to
// generate its summary. Summary failure does not fail the creation; it is
// reported in the response body instead.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var params notes.CreateNoteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, errs.Wrap(errs.InvalidArgument, "invalid JSON body", err))
		return
	}

	result, err := svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"note": result.Note}
	if result.SummaryWarning != nil {
		resp["summary_warning"] = errs.MessageOf(result.SummaryWarning)
	} else {
		resp["summary"] = result.Summary
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateNote handles PUT /notes/{id} - updates a note and regenerates its
// summary. A summary failure after the note write returns 502 with the note
// already saved.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var params notes.UpdateNoteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, errs.Wrap(errs.InvalidArgument, "invalid JSON body", err))
		return
	}

	result, err := svc.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"note": result.Note, "summary": result.Summary})
}

// ToggleFavoriteRequest is the request body for the favorite endpoint.
type ToggleFavoriteRequest struct {
	Favorited bool `json:"favorited"`
}

// ToggleFavorite handles POST /notes/{id}/favorite - sets the favorite flag
// without touching content or updated_at.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ToggleFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.InvalidArgument, "invalid JSON body", err))
		return
	}

	note, err := svc.ToggleFavorite(r.Context(), r.PathValue("id"), req.Favorited)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id} - deletes a note and its summary.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SummaryResponse is the response body for the summary endpoints.
type SummaryResponse struct {
	NoteID  string `json:"note_id"`
	Summary string `json:"summary"`
}

// GetSummary handles GET /notes/{id}/summary - returns the stored summary,
// generating and persisting one on first access.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	note, err := svc.Read(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := svc.GetOrCreateSummary(r.Context(), id, note.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{NoteID: id, Summary: text})
}

// RegenerateSummary handles POST /notes/{id}/summary/regenerate - discards
// the stored summary and generates a fresh one.
func (h *Handler) RegenerateSummary(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	note, err := svc.Read(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := svc.RegenerateSummary(r.Context(), id, note.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{NoteID: id, Summary: text})
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a service error to its HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	code := errs.CodeOf(err)
	writeJSON(w, errs.HTTPStatus(code), ErrorResponse{
		Error:   string(code),
		Message: errs.MessageOf(err),
	})
}
