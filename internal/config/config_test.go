package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.NotEmpty(t, cfg.Cache.Dir)
	assert.Equal(t, 16, cfg.Cache.MemoryEntries)
	assert.True(t, cfg.Indexing.PluginsEnabled)
	assert.True(t, cfg.Indexing.FiltersEnabled)
	assert.False(t, cfg.Indexing.SortByTime)
	assert.True(t, cfg.Indexing.Multithreaded)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Given: a directory without a config file
	dir := t.TempDir()

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: defaults are used
	require.NoError(t, err)
	assert.True(t, cfg.Indexing.FiltersEnabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	// Given: a project config file
	dir := t.TempDir()
	content := []byte("cache:\n  dir: /tmp/dixcache\nindexing:\n  sort_by_time: true\n  plugins_enabled: false\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dltindex.yaml"), content, 0o644))

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: file values override defaults
	require.NoError(t, err)
	assert.Equal(t, "/tmp/dixcache", cfg.Cache.Dir)
	assert.True(t, cfg.Indexing.SortByTime)
	assert.False(t, cfg.Indexing.PluginsEnabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dltindex.yaml"), []byte("cache: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	// Given: env overrides
	dir := t.TempDir()
	t.Setenv("DLTINDEX_CACHE_DIR", "/tmp/envcache")
	t.Setenv("DLTINDEX_SORT_BY_TIME", "true")
	t.Setenv("DLTINDEX_MULTITHREADED", "0")

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: env wins over defaults
	require.NoError(t, err)
	assert.Equal(t, "/tmp/envcache", cfg.Cache.Dir)
	assert.True(t, cfg.Indexing.SortByTime)
	assert.False(t, cfg.Indexing.Multithreaded)
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_NegativeMemoryEntries(t *testing.T) {
	cfg := NewConfig()
	cfg.Cache.MemoryEntries = -1

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	// Given: a config written to disk
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Cache.Dir = "/tmp/roundtrip"
	cfg.Indexing.SortByTime = true
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".dltindex.yaml")))

	// When: loading it back
	loaded, err := Load(dir)

	// Then: values survive
	require.NoError(t, err)
	assert.Equal(t, "/tmp/roundtrip", loaded.Cache.Dir)
	assert.True(t, loaded.Indexing.SortByTime)
}
