package notes

import "time"

// Note represents a user's note with metadata. Tags preserve first-seen
// order with duplicates suppressed.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	UserID      string    `json:"user_id"`
	IsFavorited bool      `json:"is_favorited"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateNoteParams contains parameters for creating a note.
type CreateNoteParams struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdateNoteParams contains parameters for updating a note. Updates replace
// title, content, and tags wholesale; there is no partial edit.
type UpdateNoteParams struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// CreateResult is the outcome of Create. SummaryWarning carries a non-fatal
// summary generation or persistence failure: the note was still created, so
// the warning is observable without being the operation's error.
type CreateResult struct {
	Note           *Note
	Summary        string
	SummaryWarning error
}

// UpdateResult is the outcome of Update. After a successful update the
// summary is guaranteed fresh relative to the new content.
type UpdateResult struct {
	Note    *Note
	Summary string
}
