package database

import (
	"fmt"
	"os"
	"testing"
	"time"
)

// getPostgresTestConfig returns PostgreSQL config if available, nil otherwise.
// Set these environment variables to run PostgreSQL tests:
//
//	HEXCRAWL_TEST_POSTGRES=1
//	HEXCRAWL_TEST_POSTGRES_HOST (default: localhost)
//	HEXCRAWL_TEST_POSTGRES_PORT (default: 5432)
//	HEXCRAWL_TEST_POSTGRES_USER (default: hexcrawl)
//	HEXCRAWL_TEST_POSTGRES_PASSWORD (default: hexcrawl)
//	HEXCRAWL_TEST_POSTGRES_DATABASE (default: hexcrawl_test)
func getPostgresTestConfig() *Config {
	if os.Getenv("HEXCRAWL_TEST_POSTGRES") == "" {
		return nil
	}

	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	port := 5432
	if portStr := os.Getenv("HEXCRAWL_TEST_POSTGRES_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}

	return &Config{
		Driver: "postgres",
		Postgres: PostgresConfig{
			Host:            env("HEXCRAWL_TEST_POSTGRES_HOST", "localhost"),
			Port:            port,
			User:            env("HEXCRAWL_TEST_POSTGRES_USER", "hexcrawl"),
			Password:        env("HEXCRAWL_TEST_POSTGRES_PASSWORD", "hexcrawl"),
			Database:        env("HEXCRAWL_TEST_POSTGRES_DATABASE", "hexcrawl_test"),
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 1 * time.Minute,
		},
	}
}

// layoutTables lists the archive tables in reverse dependency order
var layoutTables = []string{
	"layout_hallway_cells", "layout_hallways", "layout_cells",
	"layout_room_disks", "layout_rooms", "layouts",
}

// clearLayouts empties every archive table
func clearLayouts(t *testing.T, db *Database) {
	for _, table := range layoutTables {
		if _, err := db.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// TestPostgres_OpenWithConfig tests opening a PostgreSQL database
func TestPostgres_OpenWithConfig(t *testing.T) {
	cfg := getPostgresTestConfig()
	if cfg == nil {
		t.Skip("Skipping PostgreSQL test: HEXCRAWL_TEST_POSTGRES not set")
	}

	db, err := OpenWithConfig(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer db.Close()

	var result int
	if err := db.db.QueryRow("SELECT 1").Scan(&result); err != nil {
		t.Fatalf("Failed to query PostgreSQL: %v", err)
	}
	if stats := db.db.Stats(); stats.MaxOpenConnections != cfg.Postgres.MaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want %d", stats.MaxOpenConnections, cfg.Postgres.MaxOpenConns)
	}
}
