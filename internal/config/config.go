// Package config loads the hexcrawl server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexcrawl/internal/database"
	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
)

// Config is the top-level configuration file.
type Config struct {
	Generator dungeon.Config `yaml:"generator"`
	Server    ServerConfig   `yaml:"server"`
	Storage   StorageConfig  `yaml:"storage"`

	// SnapshotPath is where the finished layout is written. Empty disables it.
	SnapshotPath string `yaml:"snapshot_path"`
}

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	// Address is the HTTP listen address.
	Address     string            `yaml:"address"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// StorageConfig controls the layout archive.
type StorageConfig struct {
	// Enabled archives each finished layout.
	Enabled bool `yaml:"enabled"`

	Database database.Config `yaml:",inline"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Generator: dungeon.DefaultConfig(),
		Server: ServerConfig{
			Address: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
		},
		Storage: StorageConfig{
			Enabled:  false,
			Database: database.DefaultConfig("data/hexcrawl.db"),
		},
		SnapshotPath: "data/layout.yaml",
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults. A file that can't be parsed
// yields the defaults along with the error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return config, err
	}
	return config, nil
}

// applyEnv reads HEXCRAWL_SEED and HEXCRAWL_ADDR.
func (c *Config) applyEnv() error {
	if v := os.Getenv("HEXCRAWL_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("HEXCRAWL_SEED: %w", err)
		}
		c.Generator.Seed = seed
	}
	if v := os.Getenv("HEXCRAWL_ADDR"); v != "" {
		c.Server.Address = v
	}
	return nil
}

// Validate checks the whole file.
func (c *Config) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if c.Server.Address == "" {
		return errors.New("server.address is empty")
	}
	if c.Server.WebSocket.MaxMessageSize <= 0 {
		return errors.New("server.websocket.max_message_size must be positive")
	}
	if c.Server.Connections.MaxPerIP < 0 || c.Server.Connections.MaxTotal < 0 {
		return errors.New("server.connections limits must not be negative")
	}
	if c.Storage.Enabled {
		switch database.DialectType(c.Storage.Database.Driver) {
		case database.DialectSQLite:
			if c.Storage.Database.SQLitePath == "" {
				return errors.New("storage.sqlite_path is empty")
			}
		case database.DialectPostgres:
		default:
			return fmt.Errorf("storage.driver %q is not sqlite or postgres", c.Storage.Database.Driver)
		}
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
