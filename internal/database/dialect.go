package database

import "strings"

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// Dialect covers what the layout archive needs to differ on between
// SQLite and PostgreSQL.
type Dialect interface {
	// Type reports which dialect this is.
	Type() DialectType

	// DriverName is the database/sql driver registered by the import.
	DriverName() string

	// Placeholder renders bind parameter n, counting from 1.
	Placeholder(n int) string

	// MaxParams is the most bind parameters one statement may carry.
	MaxParams() int

	// InitStatements run once after connecting.
	InitStatements() []string

	// IsDuplicateKeyError reports a unique or primary key violation.
	IsDuplicateKeyError(err error) bool
}

// NewDialect returns the dialect for t. Anything unrecognised is SQLite.
func NewDialect(t DialectType) Dialect {
	if t == DialectPostgres {
		return &PostgresDialect{}
	}
	return &SQLiteDialect{}
}

// containsAny is the last-resort match for errors that lost their driver type.
func containsAny(err error, fragments ...string) bool {
	msg := err.Error()
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
