// Package watcher observes a DLT log file and signals when it changes.
//
// Writers append to trace logs in bursts, so raw notifications are
// debounced: a change signal is emitted only after the file has been
// quiet for the debounce window.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window before a change is signalled.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one log file for writes and replacements.
type Watcher struct {
	path     string
	debounce time.Duration

	fs      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a watcher for path. A zero debounce uses DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory so rename-and-replace writers are seen too.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		debounce: debounce,
		fs:       fs,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes returns the channel of debounced change signals.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Stop stops watching and releases the notification handle.
// Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	_ = w.fs.Close()
}

// loop filters raw notifications down to writes of the watched file.
func (w *Watcher) loop() {
	base := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleSignal()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", slog.String("error", err.Error()))

		case <-w.done:
			return
		}
	}
}

// scheduleSignal restarts the debounce timer.
func (w *Watcher) scheduleSignal() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.signal)
}

// signal emits one change, dropping it if the last one is unconsumed.
func (w *Watcher) signal() {
	select {
	case <-w.done:
	case w.changes <- struct{}{}:
	default:
	}
}
