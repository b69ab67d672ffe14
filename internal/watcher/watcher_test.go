package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SignalsOnWrite(t *testing.T) {
	// Given: a watched log file
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.dlt")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	// When: appending to the file
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("more"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: a debounced change signal arrives
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.dlt")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	// Writes to an unrelated file in the same directory
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0o644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected signal for sibling file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	// Given: a burst of writes within the debounce window
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.dlt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(path, 100*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	// Then: exactly one signal after the quiet window
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	select {
	case <-w.Changes():
		t.Fatal("burst should coalesce into one signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.dlt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(path, 0)
	require.NoError(t, err)

	w.Stop()
	w.Stop()
	assert.NotPanics(t, func() { w.Stop() })
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent", "trace.dlt"), 0)
	assert.Error(t, err)
}
