package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dltkit/dltindex/internal/dlt"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeLog writes a small log with n frames and returns its path.
func writeLog(t *testing.T, n int) string {
	t.Helper()
	var data []byte
	for i := 0; i < n; i++ {
		data = dlt.AppendFrame(data, dlt.FrameSpec{
			EcuID: "ECU1", AppID: "APP1", CtxID: "CTX1",
			Type: dlt.TypeLog, Subtype: 4,
			Payload: []byte("message"),
		})
	}
	path := filepath.Join(t.TempDir(), "trace.dlt")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dltindex")
}

func TestVersionCmd_Short(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestIndexCmd(t *testing.T) {
	// Given: a log of three frames
	path := writeLog(t, 3)

	// When: indexing without a cache
	out, err := execute(t, "--quiet", "index", "--no-cache", path)

	// Then: the summary reports all messages matching
	require.NoError(t, err)
	assert.Contains(t, out, "3 messages, 3 matching")
}

func TestIndexCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "index", filepath.Join(t.TempDir(), "absent.dlt"))
	assert.Error(t, err)
}

func TestIndexCmd_NoArgs(t *testing.T) {
	_, err := execute(t, "index")
	assert.Error(t, err)
}

func TestIndexCmd_WithFilterFile(t *testing.T) {
	// Given: a filter list that matches nothing in the log
	path := writeLog(t, 2)
	filterPath := filepath.Join(t.TempDir(), "filters.yaml")
	list := &dlt.FilterList{Filters: []*dlt.Filter{
		{Name: "other app", Enabled: true, EnableAppID: true, AppID: "ZZZZ"},
	}}
	require.NoError(t, dlt.SaveFilterList(filterPath, list))

	out, err := execute(t, "--quiet", "index", "--no-cache", "--filters", filterPath, path)

	require.NoError(t, err)
	assert.Contains(t, out, "2 messages, 0 matching")
}

func TestIndexCmd_PopulatesCache(t *testing.T) {
	path := writeLog(t, 2)
	cacheDir := t.TempDir()

	_, err := execute(t, "--quiet", "index", "--cache-dir", cacheDir, path)
	require.NoError(t, err)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	var dix int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".dix" {
			dix++
		}
	}
	// One primary and one filter entry
	assert.Equal(t, 2, dix)
}

func TestCacheCmds(t *testing.T) {
	// Given: a populated cache directory
	path := writeLog(t, 2)
	cacheDir := t.TempDir()
	t.Setenv("DLTINDEX_CACHE_DIR", cacheDir)

	_, err := execute(t, "--quiet", "index", path)
	require.NoError(t, err)

	// When: listing
	out, err := execute(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, ".dix")
	assert.Contains(t, out, "entries")

	// When: clearing
	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 cache entries")

	out, err = execute(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no cache entries")
}

func TestCacheList_Disabled(t *testing.T) {
	t.Setenv("DLTINDEX_CACHE_DIR", "")

	// An empty env value keeps the default directory, so disable via config file
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dltindex.yaml"), []byte("cache:\n  dir: \"\"\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := execute(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "caching is disabled")
}
