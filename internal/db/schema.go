package db

// SQL schema definitions for the storage layer. Two kinds of databases:
// 1. directory.db - shared, unencrypted: API token lookups
// 2. {user_id}.db - per-user, encrypted with SQLCipher: notes and summaries

// DirectoryDBSchema contains the SQL statements for the shared directory database.
const DirectoryDBSchema = `
-- API tokens: bearer tokens for authenticated API access.
-- Only the SHA-256 hash of a token is stored.
CREATE TABLE IF NOT EXISTS api_tokens (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_api_tokens_user_id ON api_tokens(user_id);
CREATE INDEX IF NOT EXISTS idx_api_tokens_expires_at ON api_tokens(expires_at);
`

// UserDBSchema contains the SQL statements for per-user encrypted databases.
// The UNIQUE constraint on note_summaries.note_id enforces at most one live
// summary row per note; all summary writes go through an upsert keyed on it,
// so concurrent first-time generation cannot leave duplicate rows.
const UserDBSchema = `
-- Notes: the user's Markdown documents. Tags are a JSON string array.
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    is_favorited INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at DESC);

-- Note summaries: AI-generated, at most one per note.
CREATE TABLE IF NOT EXISTS note_summaries (
    id TEXT PRIMARY KEY,
    note_id TEXT NOT NULL UNIQUE,
    summary TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
