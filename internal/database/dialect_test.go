package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

// =============================================================================
// Dialect Tests
// =============================================================================

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Error("NewDialect(sqlite) did not return *SQLiteDialect")
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Error("NewDialect(postgres) did not return *PostgresDialect")
	}
	// Unknown dialect should default to SQLite
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("NewDialect(unknown) did not default to *SQLiteDialect")
	}
}

func TestDialect_DriverNameAndPlaceholder(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		driver   string
		position int
		want     string
	}{
		{&SQLiteDialect{}, "sqlite", 1, "?"},
		{&SQLiteDialect{}, "sqlite", 100, "?"},
		{&PostgresDialect{}, "postgres", 1, "$1"},
		{&PostgresDialect{}, "postgres", 12, "$12"},
	}
	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.driver {
			t.Errorf("%T.DriverName() = %q, want %q", tt.dialect, got, tt.driver)
		}
		if got := tt.dialect.Placeholder(tt.position); got != tt.want {
			t.Errorf("%T.Placeholder(%d) = %q, want %q", tt.dialect, tt.position, got, tt.want)
		}
	}
}

func TestSQLiteDialect_InitStatements(t *testing.T) {
	stmts := (&SQLiteDialect{}).InitStatements()
	expected := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	if len(stmts) != len(expected) {
		t.Fatalf("InitStatements() returned %d statements, want %d", len(stmts), len(expected))
	}
	for i, want := range expected {
		if stmts[i] != want {
			t.Errorf("InitStatements()[%d] = %q, want %q", i, stmts[i], want)
		}
	}
}

func TestDialect_IsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		dialect Dialect
		err     error
		want    bool
	}{
		{&SQLiteDialect{}, nil, false},
		{&SQLiteDialect{}, errors.New("some random error"), false},
		{&SQLiteDialect{}, errors.New("UNIQUE constraint failed: layouts.fingerprint"), true},
		{&SQLiteDialect{}, errors.New("FOREIGN KEY constraint failed"), false},
		{&PostgresDialect{}, nil, false},
		{&PostgresDialect{}, errors.New(`pq: duplicate key value violates unique constraint "layouts_fingerprint_key"`), true},
		{&PostgresDialect{}, errors.New("ERROR: 23505"), true},
		{&PostgresDialect{}, errors.New("connection refused"), false},
		{&PostgresDialect{}, &pq.Error{Code: "23505"}, true},
		{&PostgresDialect{}, fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{&PostgresDialect{}, &pq.Error{Code: "23503", Message: "duplicate key"}, false},
	}
	for _, tt := range tests {
		if got := tt.dialect.IsDuplicateKeyError(tt.err); got != tt.want {
			t.Errorf("%T.IsDuplicateKeyError(%v) = %v, want %v", tt.dialect, tt.err, got, tt.want)
		}
	}
}

func TestDialect_TypeAndMaxParams(t *testing.T) {
	for _, d := range []Dialect{&SQLiteDialect{}, &PostgresDialect{}} {
		if NewDialect(d.Type()).DriverName() != d.DriverName() {
			t.Errorf("%T.Type() = %q does not round trip through NewDialect", d, d.Type())
		}
		if d.MaxParams() < 999 {
			t.Errorf("%T.MaxParams() = %d", d, d.MaxParams())
		}
	}
}

// Verify that both dialects implement the Dialect interface
func TestDialect_InterfaceCompliance(t *testing.T) {
	var _ Dialect = (*SQLiteDialect)(nil)
	var _ Dialect = (*PostgresDialect)(nil)
}

// =============================================================================
// QueryBuilder Tests
// =============================================================================

func TestQueryBuilder_Build(t *testing.T) {
	tests := []struct {
		dialect Dialect
		input   string
		want    string
	}{
		{&SQLiteDialect{}, "SELECT id FROM layouts WHERE seed = ?", "SELECT id FROM layouts WHERE seed = ?"},
		{&PostgresDialect{}, "SELECT id FROM layouts", "SELECT id FROM layouts"},
		{&PostgresDialect{}, "SELECT id FROM layouts WHERE seed = ?", "SELECT id FROM layouts WHERE seed = $1"},
		{
			&PostgresDialect{},
			"INSERT INTO layout_cells (layout_id, room_seq, seq, q, r) VALUES (?, ?, ?, ?, ?)",
			"INSERT INTO layout_cells (layout_id, room_seq, seq, q, r) VALUES ($1, $2, $3, $4, $5)",
		},
		{&PostgresDialect{}, "", ""},
		{&SQLiteDialect{}, "", ""},
	}
	for _, tt := range tests {
		qb := NewQueryBuilder(tt.dialect)
		if got := qb.Build(tt.input); got != tt.want {
			t.Errorf("%T Build(%q) = %q, want %q", tt.dialect, tt.input, got, tt.want)
		}
	}
}

func TestQueryBuilder_Insert(t *testing.T) {
	cols := []string{"layout_id", "q", "r"}

	sqlite := NewQueryBuilder(&SQLiteDialect{})
	if got, want := sqlite.Insert("layout_cells", cols, 2), "INSERT INTO layout_cells (layout_id, q, r) VALUES (?, ?, ?), (?, ?, ?)"; got != want {
		t.Errorf("sqlite Insert = %q, want %q", got, want)
	}

	pg := NewQueryBuilder(&PostgresDialect{})
	if got, want := pg.Insert("layout_cells", cols, 2), "INSERT INTO layout_cells (layout_id, q, r) VALUES ($1, $2, $3), ($4, $5, $6)"; got != want {
		t.Errorf("postgres Insert = %q, want %q", got, want)
	}
}

func TestQueryBuilder_RowsPerStatement(t *testing.T) {
	qb := NewQueryBuilder(&SQLiteDialect{})
	tests := []struct {
		columns int
		want    int
	}{
		{0, 0},
		{1, 999},
		{5, 199},
		{7, 142},
		{2000, 1},
	}
	for _, tt := range tests {
		if got := qb.RowsPerStatement(tt.columns); got != tt.want {
			t.Errorf("RowsPerStatement(%d) = %d, want %d", tt.columns, got, tt.want)
		}
	}
}

// =============================================================================
// Config Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	path := "/path/to/test.db"
	cfg := DefaultConfig(path)

	if cfg.Driver != "sqlite" {
		t.Errorf("Driver = %q, want %q", cfg.Driver, "sqlite")
	}
	if cfg.SQLitePath != path {
		t.Errorf("SQLitePath = %q, want %q", cfg.SQLitePath, path)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want %q", cfg.SSLMode, "disable")
	}
	if cfg.MaxOpenConns != 10 || cfg.MaxIdleConns != 2 {
		t.Errorf("pool = %d/%d, want 10/2", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want %v", cfg.ConnMaxLifetime, 5*time.Minute)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db.example.com",
		Port:     5433,
		User:     "crawler",
		Password: "secret",
		Database: "hexcrawl",
		SSLMode:  "require",
	}
	want := "host=db.example.com port=5433 user=crawler password=secret dbname=hexcrawl sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
