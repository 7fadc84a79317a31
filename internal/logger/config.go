package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// fileConfig mirrors Config with pointers so unset keys keep their defaults
type fileConfig struct {
	Logging struct {
		Level          *string `yaml:"level"`
		ConsoleEnabled *bool   `yaml:"console_enabled"`
		ConsoleFormat  *string `yaml:"console_format"`
		FileEnabled    *bool   `yaml:"file_enabled"`
		FilePath       *string `yaml:"file_path"`
		FileFormat     *string `yaml:"file_format"`
		FileMaxSizeMB  *int    `yaml:"file_max_size_mb"`
		FileMaxBackups *int    `yaml:"file_max_backups"`
		FileMaxAgeDays *int    `yaml:"file_max_age_days"`
	} `yaml:"logging"`
}

// DefaultConfig returns console-only INFO logging
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/hexcrawl.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads logging configuration from the "logging" block of a YAML
// file and applies environment variable overrides. A missing file is not an
// error; a file that cannot be parsed is, and the defaults are returned
// alongside it.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	var loadErr error
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				loadErr = fmt.Errorf("logger: parse %s: %w", configPath, err)
			} else {
				fc.apply(&config)
			}
		case !os.IsNotExist(err):
			loadErr = fmt.Errorf("logger: read %s: %w", configPath, err)
		}
	}

	applyEnv(&config)
	return config, loadErr
}

func (fc *fileConfig) apply(config *Config) {
	l := fc.Logging
	setString(&config.Level, l.Level)
	setString(&config.ConsoleFormat, l.ConsoleFormat)
	setString(&config.FilePath, l.FilePath)
	setString(&config.FileFormat, l.FileFormat)
	if l.ConsoleEnabled != nil {
		config.ConsoleEnabled = *l.ConsoleEnabled
	}
	if l.FileEnabled != nil {
		config.FileEnabled = *l.FileEnabled
	}
	setPositive(&config.FileMaxSizeMB, l.FileMaxSizeMB)
	setPositive(&config.FileMaxBackups, l.FileMaxBackups)
	setPositive(&config.FileMaxAgeDays, l.FileMaxAgeDays)
}

// applyEnv applies LOG_* environment overrides
func applyEnv(config *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Level = logLevel
	}
	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		config.ConsoleFormat = consoleFormat
	}
	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setPositive(dst *int, v *int) {
	if v != nil && *v > 0 {
		*dst = *v
	}
}
