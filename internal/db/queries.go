package db

import (
	"context"
	"database/sql"
	"fmt"
)

// NoteRow is a notes table row. Timestamps are unix seconds; Tags is a JSON
// string array as stored.
type NoteRow struct {
	ID          string
	Title       string
	Content     string
	Tags        string
	IsFavorited int64
	CreatedAt   int64
	UpdatedAt   int64
}

// SummaryRow is a note_summaries table row.
type SummaryRow struct {
	ID        string
	NoteID    string
	Summary   string
	CreatedAt int64
}

const noteColumns = "id, title, content, tags, is_favorited, created_at, updated_at"

// InsertNote inserts a new note row.
func (u *UserDB) InsertNote(ctx context.Context, row NoteRow) error {
	_, err := u.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Title, row.Content, row.Tags, row.IsFavorited, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetNote returns the note with the given id, or sql.ErrNoRows.
func (u *UserDB) GetNote(ctx context.Context, id string) (NoteRow, error) {
	var row NoteRow
	err := u.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE id = ?
	`, id).Scan(&row.ID, &row.Title, &row.Content, &row.Tags, &row.IsFavorited, &row.CreatedAt, &row.UpdatedAt)
	if err == sql.ErrNoRows {
		return NoteRow{}, err
	}
	if err != nil {
		return NoteRow{}, fmt.Errorf("failed to get note: %w", err)
	}
	return row, nil
}

// ListNotes returns every note ordered by updated_at descending.
// Ties break on created_at so the order stays stable.
func (u *UserDB) ListNotes(ctx context.Context) ([]NoteRow, error) {
	rows, err := u.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		ORDER BY updated_at DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var result []NoteRow
	for rows.Next() {
		var row NoteRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Content, &row.Tags, &row.IsFavorited, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return result, nil
}

// UpdateNote replaces title, content, tags, and updated_at of an existing
// note. Returns sql.ErrNoRows when no note with that id exists.
func (u *UserDB) UpdateNote(ctx context.Context, id, title, content, tags string, updatedAt int64) error {
	res, err := u.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, title, content, tags, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFavorite flips the favorite flag without touching updated_at.
// Returns sql.ErrNoRows when no note with that id exists.
func (u *UserDB) SetFavorite(ctx context.Context, id string, favorited bool) error {
	fav := int64(0)
	if favorited {
		fav = 1
	}
	res, err := u.db.ExecContext(ctx, `
		UPDATE notes SET is_favorited = ? WHERE id = ?
	`, fav, id)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read favorite result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteNote removes a note row. Returns sql.ErrNoRows when absent.
func (u *UserDB) DeleteNote(ctx context.Context, id string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetSummary returns the summary row for a note, or sql.ErrNoRows.
func (u *UserDB) GetSummary(ctx context.Context, noteID string) (SummaryRow, error) {
	var row SummaryRow
	err := u.db.QueryRowContext(ctx, `
		SELECT id, note_id, summary, created_at FROM note_summaries WHERE note_id = ?
	`, noteID).Scan(&row.ID, &row.NoteID, &row.Summary, &row.CreatedAt)
	if err == sql.ErrNoRows {
		return SummaryRow{}, err
	}
	if err != nil {
		return SummaryRow{}, fmt.Errorf("failed to get summary: %w", err)
	}
	return row, nil
}

// UpsertSummary inserts or replaces the summary for a note, keyed on the
// note_id uniqueness constraint. All summary writes go through this, which
// is what keeps the one-row-per-note invariant under concurrent generation.
func (u *UserDB) UpsertSummary(ctx context.Context, row SummaryRow) error {
	_, err := u.db.ExecContext(ctx, `
		INSERT INTO note_summaries (id, note_id, summary, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET summary = excluded.summary, created_at = excluded.created_at
	`, row.ID, row.NoteID, row.Summary, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// DeleteSummary removes the summary row for a note. Deleting a note with no
// summary is not an error.
func (u *UserDB) DeleteSummary(ctx context.Context, noteID string) error {
	if _, err := u.db.ExecContext(ctx, `DELETE FROM note_summaries WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	return nil
}

// CountSummaries returns the number of summary rows for a note.
// With the uniqueness constraint in place this is always 0 or 1.
func (u *UserDB) CountSummaries(ctx context.Context, noteID string) (int64, error) {
	var count int64
	err := u.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM note_summaries WHERE note_id = ?
	`, noteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}
