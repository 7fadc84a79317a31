package database

import (
	"errors"
	"strconv"

	"github.com/lib/pq"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation pq.ErrorCode = "23505"

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) Type() DialectType { return DialectPostgres }
func (d *PostgresDialect) DriverName() string { return "postgres" }

// Placeholder renders $n.
func (d *PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// MaxParams is the wire protocol's int16 parameter count.
func (d *PostgresDialect) MaxParams() int { return 65535 }

// InitStatements pins the session time zone. Foreign keys are always on.
func (d *PostgresDialect) InitStatements() []string {
	return []string{"SET TIME ZONE 'UTC'"}
}

func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == uniqueViolation
	}
	return containsAny(err, "duplicate key", "23505")
}
