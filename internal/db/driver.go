package db

import (
	"database/sql"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// SQLiteDriverName is the project-specific SQLCipher driver name.
// Registering our own name keeps us independent of any "sqlite3"
// registration another package might perform.
const SQLiteDriverName = "sqlite3_jotsum"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{})
}
