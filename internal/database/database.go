// Package database archives generated layouts in SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// Database wraps the SQL connection and provides the layout archive.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig connects using the configured driver, applies the
// dialect's init statements and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	} else {
		// PRAGMAs are per connection; a single connection keeps them in force.
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the active dialect.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the database schema if it doesn't exist. The statements
// are portable between SQLite and PostgreSQL.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			id TEXT PRIMARY KEY,
			seed BIGINT NOT NULL,
			room_size INTEGER NOT NULL,
			max_rings INTEGER NOT NULL,
			fingerprint TEXT NOT NULL UNIQUE,
			generated_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS layout_rooms (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			ring INTEGER NOT NULL,
			origin_q INTEGER NOT NULL,
			origin_r INTEGER NOT NULL,
			PRIMARY KEY (layout_id, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS layout_room_disks (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			room_seq INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			center_q INTEGER NOT NULL,
			center_r INTEGER NOT NULL,
			radius INTEGER NOT NULL,
			PRIMARY KEY (layout_id, room_seq, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS layout_cells (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			room_seq INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			PRIMARY KEY (layout_id, room_seq, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS layout_hallways (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			from_q INTEGER NOT NULL,
			from_r INTEGER NOT NULL,
			to_q INTEGER NOT NULL,
			to_r INTEGER NOT NULL,
			PRIMARY KEY (layout_id, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS layout_hallway_cells (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			hallway_seq INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			PRIMARY KEY (layout_id, hallway_seq, seq)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_layouts_seed ON layouts(seed)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
