// Package testdb provides in-memory database fixtures for tests.
package testdb

import (
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/jotsum/jotsum/internal/crypto"
	"github.com/jotsum/jotsum/internal/db"
)

// TestMasterKeyHex is a fixed master key for tests (64 hex chars).
const TestMasterKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// NewUserDBInMemory creates an in-memory encrypted UserDB for tests.
func NewUserDBInMemory(userID string) (*db.UserDB, error) {
	if userID == "" {
		userID = "test-user"
	}

	dek, err := crypto.DeriveUserDEK(TestMasterKeyHex, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive test DEK: %w", err)
	}

	dekHex := hex.EncodeToString(dek)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma_key=x'%s'&_pragma_cipher_page_size=4096", userID, dekHex)

	sqlDB, err := sql.Open(db.SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory user database: %w", err)
	}

	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(10)

	var sqliteVersion string
	if err := sqlDB.QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to verify in-memory user database: %w", err)
	}

	if err := applyFastSQLitePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply fast SQLite pragmas: %w", err)
	}

	if _, err := sqlDB.Exec(db.UserDBSchema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize in-memory user schema: %w", err)
	}

	return db.NewUserDBFromSQL(userID, sqlDB), nil
}

// NewDirectoryDBInMemory creates an in-memory unencrypted DirectoryDB for tests.
func NewDirectoryDBInMemory() (*db.DirectoryDB, error) {
	sqlDB, err := sql.Open(db.SQLiteDriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory directory database: %w", err)
	}

	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(10)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping in-memory directory database: %w", err)
	}

	if err := applyFastSQLitePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply fast SQLite pragmas: %w", err)
	}

	if _, err := sqlDB.Exec(db.DirectoryDBSchema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize in-memory directory schema: %w", err)
	}

	return db.NewDirectoryDBFromSQL(sqlDB), nil
}

func applyFastSQLitePragmas(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA secure_delete=OFF",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
