package database

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Type() DialectType { return DialectSQLite }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

// Placeholder ignores n; SQLite binds ? positionally.
func (d *SQLiteDialect) Placeholder(n int) string { return "?" }

// MaxParams is SQLITE_MAX_VARIABLE_NUMBER as shipped before 3.32.
func (d *SQLiteDialect) MaxParams() int { return 999 }

// InitStatements are per-connection PRAGMAs, so the pool is held at one
// connection.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return containsAny(err, "UNIQUE constraint failed")
}
