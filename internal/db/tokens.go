package db

import (
	"context"
	"database/sql"
	"fmt"
)

// TokenRow is an api_tokens table row. Only the SHA-256 hash of the token
// is ever stored.
type TokenRow struct {
	TokenHash string
	UserID    string
	CreatedAt int64
	ExpiresAt int64
}

// InsertToken stores a new API token hash.
func (d *DirectoryDB) InsertToken(ctx context.Context, row TokenRow) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO api_tokens (token_hash, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, row.TokenHash, row.UserID, row.CreatedAt, row.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// GetToken looks up a token by its hash, or returns sql.ErrNoRows.
func (d *DirectoryDB) GetToken(ctx context.Context, tokenHash string) (TokenRow, error) {
	var row TokenRow
	err := d.db.QueryRowContext(ctx, `
		SELECT token_hash, user_id, created_at, expires_at FROM api_tokens WHERE token_hash = ?
	`, tokenHash).Scan(&row.TokenHash, &row.UserID, &row.CreatedAt, &row.ExpiresAt)
	if err == sql.ErrNoRows {
		return TokenRow{}, err
	}
	if err != nil {
		return TokenRow{}, fmt.Errorf("failed to get token: %w", err)
	}
	return row, nil
}

// DeleteExpiredTokens removes tokens whose expiry is before cutoff.
func (d *DirectoryDB) DeleteExpiredTokens(ctx context.Context, cutoff int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE expires_at < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return nil
}
