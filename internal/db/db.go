// Package db is the persistence gateway. It wraps SQLite storage behind
// typed row operations scoped to one authenticated user: every user gets
// their own SQLCipher-encrypted database file, so opening a user's database
// is the row-level scope — no query can cross users. A shared unencrypted
// directory database holds API token lookups.
//
// "No matching row" is reported as sql.ErrNoRows; any other error means the
// operation itself failed. Callers rely on that distinction.
package db

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultDataDirectory is the default root directory for all database files
	DefaultDataDirectory = "./data"

	// DirectoryDBName is the filename for the shared directory database
	DirectoryDBName = "directory.db"

	// DirectoryDBMaxOpenConns caps connections for the shared database.
	// SQLite is single-writer, so high connection counts are counterproductive.
	DirectoryDBMaxOpenConns = 10

	// DirectoryDBMaxIdleConns is the maximum idle connections for the directory database
	DirectoryDBMaxIdleConns = 2

	// UserDBMaxOpenConns is the maximum open connections per user database.
	// Each user gets their own SQLite file, so keep this low to avoid
	// connection goroutine exhaustion when many users are created in tests.
	UserDBMaxOpenConns = 2

	// UserDBMaxIdleConns is the maximum idle connections per user database
	UserDBMaxIdleConns = 1
)

// DataDirectory is the actual data directory being used (overridable for tests)
var DataDirectory = DefaultDataDirectory

var (
	// directoryDB is the singleton shared directory database connection
	directoryDB     *sql.DB
	directoryDBOnce sync.Once
	directoryDBErr  error

	// userDBs caches per-user database connections
	userDBs   = make(map[string]*sql.DB)
	userDBsMu sync.RWMutex
)

// DirectoryDB wraps the shared directory database connection.
type DirectoryDB struct {
	db *sql.DB
}

// UserDB wraps one user's encrypted database connection.
type UserDB struct {
	db     *sql.DB
	userID string
}

// NewDirectoryDBFromSQL wraps an existing sql.DB as DirectoryDB.
func NewDirectoryDBFromSQL(sqlDB *sql.DB) *DirectoryDB {
	return &DirectoryDB{db: sqlDB}
}

// NewUserDBFromSQL wraps an existing sql.DB as UserDB.
func NewUserDBFromSQL(userID string, sqlDB *sql.DB) *UserDB {
	return &UserDB{db: sqlDB, userID: userID}
}

// DB returns the underlying sql.DB for direct access when needed
func (d *DirectoryDB) DB() *sql.DB {
	return d.db
}

// DB returns the underlying sql.DB for direct access when needed
func (u *UserDB) DB() *sql.DB {
	return u.db
}

// UserID returns the user ID this database is scoped to
func (u *UserDB) UserID() string {
	return u.userID
}

// OpenDirectoryDB opens the shared directory database (unencrypted).
// The connection is cached as a singleton and reused across calls.
func OpenDirectoryDB() (*DirectoryDB, error) {
	directoryDBOnce.Do(func() {
		if err := os.MkdirAll(DataDirectory, 0750); err != nil {
			directoryDBErr = fmt.Errorf("failed to create data directory: %w", err)
			return
		}

		dbPath := filepath.Join(DataDirectory, DirectoryDBName)
		dsn := appendSQLiteParams(dbPath, sqliteCommonParams())

		db, err := sql.Open(SQLiteDriverName, dsn)
		if err != nil {
			directoryDBErr = fmt.Errorf("failed to open directory database: %w", err)
			return
		}

		db.SetMaxOpenConns(DirectoryDBMaxOpenConns)
		db.SetMaxIdleConns(DirectoryDBMaxIdleConns)

		if err := db.Ping(); err != nil {
			db.Close()
			directoryDBErr = fmt.Errorf("failed to ping directory database: %w", err)
			return
		}

		if _, err := db.Exec(DirectoryDBSchema); err != nil {
			db.Close()
			directoryDBErr = fmt.Errorf("failed to initialize directory schema: %w", err)
			return
		}

		directoryDB = db
	})

	if directoryDBErr != nil {
		return nil, directoryDBErr
	}

	return NewDirectoryDBFromSQL(directoryDB), nil
}

// OpenUserDBWithDEK opens a per-user encrypted database with a provided DEK.
// The DEK comes from crypto.DeriveUserDEK; a wrong key fails the verify query.
func OpenUserDBWithDEK(userID string, dek []byte) (*UserDB, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	if len(dek) != 32 {
		return nil, fmt.Errorf("DEK must be exactly 32 bytes, got %d", len(dek))
	}

	userDBsMu.RLock()
	if db, exists := userDBs[userID]; exists {
		userDBsMu.RUnlock()
		return NewUserDBFromSQL(userID, db), nil
	}
	userDBsMu.RUnlock()

	userDBsMu.Lock()
	defer userDBsMu.Unlock()

	// Double-check after acquiring write lock
	if db, exists := userDBs[userID]; exists {
		return NewUserDBFromSQL(userID, db), nil
	}

	if err := os.MkdirAll(DataDirectory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(DataDirectory, fmt.Sprintf("%s.db", userID))
	dekHex := hex.EncodeToString(dek)

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, dekHex)
	dsn = appendSQLiteParams(dsn, sqliteCommonParams())

	db, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database for %s: %w", userID, err)
	}

	db.SetMaxOpenConns(UserDBMaxOpenConns)
	db.SetMaxIdleConns(UserDBMaxIdleConns)

	// Verify connection and encryption key. A wrong key fails here.
	var sqliteVersion string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify user database connection for %s: %w", userID, err)
	}

	if _, err := db.Exec(UserDBSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize user schema for %s: %w", userID, err)
	}

	userDBs[userID] = db

	return NewUserDBFromSQL(userID, db), nil
}

// CloseAll closes all open database connections.
// This should be called during graceful shutdown.
func CloseAll() error {
	var firstErr error

	if directoryDB != nil {
		if err := directoryDB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close directory database: %w", err)
		}
		directoryDB = nil
	}

	userDBsMu.Lock()
	defer userDBsMu.Unlock()

	for userID, db := range userDBs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close user database for %s: %w", userID, err)
		}
	}
	userDBs = make(map[string]*sql.DB)

	return firstErr
}

// ResetForTesting resets all internal state for clean test isolation.
// It closes all connections and resets the singleton state.
func ResetForTesting() {
	CloseAll()
	directoryDBOnce = sync.Once{}
	directoryDB = nil
	directoryDBErr = nil
}

func sqliteCommonParams() string {
	// WAL + NORMAL provides good throughput while preserving durability.
	return "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
}

func appendSQLiteParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

// Close closes the DirectoryDB connection.
func (d *DirectoryDB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Close closes the UserDB connection. Only needed for in-memory databases
// that are not cached by the package.
func (u *UserDB) Close() error {
	if u.db != nil {
		return u.db.Close()
	}
	return nil
}
