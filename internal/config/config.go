// Package config holds the MyWarehouse configuration, loaded from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all MyWarehouse configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Backup configuration
	Backups BackupConfig `yaml:"backups"`

	// Categorizer configuration
	Categorizer CategorizerConfig `yaml:"categorizer"`

	// Terminal UI configuration
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BackupConfig configures database backups.
type BackupConfig struct {
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"` // how many backup files to retain
}

// CategorizerConfig configures automatic categorisation.
type CategorizerConfig struct {
	// Minimum occurrences before an auto category shows up in the
	// dynamic category list.
	DynamicMinCount int `yaml:"dynamic_min_count"`

	// Workers for batch categorisation runs.
	BatchWorkers int `yaml:"batch_workers"`
}

// UIConfig configures the interactive terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // light, dark, auto
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "MyWarehouse",
		Version: "1.0.0",

		Database: DatabaseConfig{
			Path: "data/warehouse.db",
		},

		Backups: BackupConfig{
			Dir:  "data/backups",
			Keep: 5,
		},

		Categorizer: CategorizerConfig{
			DynamicMinCount: 3,
			BatchWorkers:    4,
		},

		UI: UIConfig{
			Theme: "auto",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// DefaultPath returns the config file location: WAREHOUSE_CONFIG when
// set, otherwise config.yaml in the working directory.
func DefaultPath() string {
	if path := os.Getenv("WAREHOUSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults are returned with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables beat file values.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("WAREHOUSE_DB"); path != "" {
		c.Database.Path = path
	}
	if dir := os.Getenv("WAREHOUSE_BACKUPS"); dir != "" {
		c.Backups.Dir = dir
	}
	if keep := os.Getenv("WAREHOUSE_BACKUPS_KEEP"); keep != "" {
		if n, err := strconv.Atoi(keep); err == nil && n > 0 {
			c.Backups.Keep = n
		}
	}
	if theme := os.Getenv("WAREHOUSE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("WAREHOUSE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if debug := os.Getenv("WAREHOUSE_DEBUG"); debug != "" {
		c.Logging.DebugMode = debug == "1" || debug == "true"
	}
}

// DataDir returns the directory the database lives in; logs and other
// app state go next to it.
func (c *Config) DataDir() string {
	return filepath.Dir(c.Database.Path)
}

// Validate checks configuration sanity.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Backups.Keep < 1 {
		return fmt.Errorf("backups.keep must be at least 1")
	}
	if c.Categorizer.BatchWorkers < 1 {
		return fmt.Errorf("categorizer.batch_workers must be at least 1")
	}
	switch c.UI.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("ui.theme must be light, dark or auto, got %q", c.UI.Theme)
	}
	return nil
}
