// Package auth resolves bearer tokens to user identities and opens the
// caller's row-scoped database. Login flows live in the UI shell; this
// package only consumes the tokens they mint.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jotsum/jotsum/internal/db"
)

var (
	// ErrTokenNotFound is returned when a presented token has no record.
	ErrTokenNotFound = errors.New("auth: token not found")

	// ErrTokenExpired is returned when a presented token has expired.
	ErrTokenExpired = errors.New("auth: token expired")
)

const (
	// TokenBytes is the number of random bytes per token (43 chars base64url).
	TokenBytes = 32

	// DefaultTokenTTL is the default token validity period.
	DefaultTokenTTL = 30 * 24 * time.Hour

	// MaxTokenTTL is the maximum token validity period.
	MaxTokenTTL = 365 * 24 * time.Hour
)

// HashToken returns the hex SHA-256 of a token, the only form ever stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenService creates and resolves API tokens against the directory database.
type TokenService struct {
	dir *db.DirectoryDB
}

// NewTokenService creates a token service.
func NewTokenService(dir *db.DirectoryDB) *TokenService {
	return &TokenService{dir: dir}
}

// Create mints a new token for userID valid for ttl (clamped to MaxTokenTTL;
// zero means DefaultTokenTTL) and returns the plaintext token. The plaintext
// is not recoverable later.
func (s *TokenService) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if ttl > MaxTokenTTL {
		ttl = MaxTokenTTL
	}

	raw := make([]byte, TokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := time.Now().UTC()
	err := s.dir.InsertToken(ctx, db.TokenRow{
		TokenHash: HashToken(token),
		UserID:    userID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Resolve maps a presented token to its user ID.
func (s *TokenService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenNotFound
	}

	row, err := s.dir.GetToken(ctx, HashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up token: %w", err)
	}

	if row.ExpiresAt > 0 && time.Now().UTC().Unix() >= row.ExpiresAt {
		return "", ErrTokenExpired
	}

	return row.UserID, nil
}
