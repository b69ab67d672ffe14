// Package config loads and validates dltindex configuration.
//
// Configuration is resolved in three steps: built-in defaults, an optional
// .dltindex.yaml file, and DLTINDEX_* environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete dltindex configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Indexing IndexingConfig `yaml:"indexing" json:"indexing"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// CacheConfig configures the on-disk index cache.
type CacheConfig struct {
	// Dir is the cache directory for .dix files.
	// Empty disables caching entirely.
	Dir string `yaml:"dir" json:"dir"`

	// MemoryEntries is the size of the in-memory LRU over loaded
	// index vectors. Zero uses the default.
	MemoryEntries int `yaml:"memory_entries" json:"memory_entries"`
}

// IndexingConfig configures indexing job behaviour.
type IndexingConfig struct {
	// PluginsEnabled runs viewer and decoder plugins during the filter pass.
	PluginsEnabled bool `yaml:"plugins_enabled" json:"plugins_enabled"`

	// FiltersEnabled applies the active filter list. When false every
	// decoded message counts as a match.
	FiltersEnabled bool `yaml:"filters_enabled" json:"filters_enabled"`

	// SortByTime orders the filtered index by message timestamp
	// instead of file order.
	SortByTime bool `yaml:"sort_by_time" json:"sort_by_time"`

	// Multithreaded locates frames of a multi-file job concurrently.
	Multithreaded bool `yaml:"multithreaded" json:"multithreaded"`

	// SilentMode suppresses interactive decoder plugin output.
	SilentMode bool `yaml:"silent_mode" json:"silent_mode"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Cache: CacheConfig{
			Dir:           defaultCacheDir(),
			MemoryEntries: 16,
		},
		Indexing: IndexingConfig{
			PluginsEnabled: true,
			FiltersEnabled: true,
			SortByTime:     false,
			Multithreaded:  true,
			SilentMode:     false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultCacheDir returns the default cache directory (~/.dltindex/cache).
// Falls back to the temp directory if home is unavailable.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dltindex", "cache")
	}
	return filepath.Join(home, ".dltindex", "cache")
}

// Load resolves the configuration for a working directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .dltindex.yaml or .dltindex.yml.
func (c *Config) loadFromFile(dir string) error {
	// Try .yaml first (takes precedence)
	yamlPath := filepath.Join(dir, ".dltindex.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	// Try .yml as fallback
	ymlPath := filepath.Join(dir, ".dltindex.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Unmarshal over the defaults so absent keys keep their values.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies DLTINDEX_* environment variables (highest precedence).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DLTINDEX_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v, ok := os.LookupEnv("DLTINDEX_SORT_BY_TIME"); ok {
		c.Indexing.SortByTime = parseBool(v)
	}
	if v, ok := os.LookupEnv("DLTINDEX_PLUGINS_ENABLED"); ok {
		c.Indexing.PluginsEnabled = parseBool(v)
	}
	if v, ok := os.LookupEnv("DLTINDEX_FILTERS_ENABLED"); ok {
		c.Indexing.FiltersEnabled = parseBool(v)
	}
	if v, ok := os.LookupEnv("DLTINDEX_MULTITHREADED"); ok {
		c.Indexing.Multithreaded = parseBool(v)
	}
	if v, ok := os.LookupEnv("DLTINDEX_SILENT_MODE"); ok {
		c.Indexing.SilentMode = parseBool(v)
	}
	if v := os.Getenv("DLTINDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must be non-negative, got %d", c.Cache.MemoryEntries)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
