// Package indexer builds primary and filtered indexes over DLT log files
// on a background worker, with disk caching and cooperative cancellation.
package indexer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dltkit/dltindex/internal/cache"
	"github.com/dltkit/dltindex/internal/dlt"
	"github.com/dltkit/dltindex/internal/locator"
)

// Mode selects which phases an indexing job runs.
type Mode int

const (
	ModeNone Mode = iota
	ModeIndex
	ModeIndexAndFilter
	ModeFilter
	ModeDefaultFilter
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeIndex:
		return "index"
	case ModeIndexAndFilter:
		return "index+filter"
	case ModeFilter:
		return "filter"
	case ModeDefaultFilter:
		return "default-filter"
	default:
		return "unknown"
	}
}

// stopPollInterval is how often Stop re-checks that the worker returned.
const stopPollInterval = 100 * time.Millisecond

// progressStride is how many messages pass between progress events
// during a filter walk.
const progressStride = 1000

// errStopped marks a worker return caused by the stop flag. It never
// escapes the worker; interrupted phases simply publish nothing.
var errStopped = errors.New("indexer: stopped")

// Config carries the per-job options.
type Config struct {
	Mode Mode

	// PluginsEnabled runs viewer and decoder plugins during the walk.
	PluginsEnabled bool

	// FiltersEnabled applies the provider's filter list. When false
	// every decoded message matches.
	FiltersEnabled bool

	// SortByTime orders the filtered index by message timestamp.
	SortByTime bool

	// Multithreaded locates the files of a multi-file job concurrently.
	Multithreaded bool

	// SilentMode is handed to decoder plugins to suppress interactive output.
	SilentMode bool
}

// Indexer runs one indexing job at a time over a FileProvider.
//
// A job runs on its own goroutine; result vectors stay private to the
// worker until a phase completes and are then published through the
// provider and the event sink. External consumers that want to inspect
// published vectors while a job may be running serialize through
// Lock/Unlock; the worker itself never takes that mutex.
type Indexer struct {
	indexLock sync.Mutex

	file          FileProvider
	plugins       PluginManager
	defaultFilter *dlt.DefaultFilterStore
	cache         *cache.Store
	sink          EventSink
	cfg           Config

	stopFlag atomic.Bool
	running  atomic.Bool

	// Plugin snapshot taken at job start.
	activeViewerPlugins  []ViewerPlugin
	activeDecoderPlugins []DecoderPlugin

	maxRun     int
	currentRun int

	indexAll       []int64
	indexFilter    []int64
	getLogInfoList []int64

	msecsIndex         time.Duration
	msecsFilter        time.Duration
	msecsDefaultFilter time.Duration
}

// New creates an indexer for one file handle. The sink may be nil.
func New(file FileProvider, plugins PluginManager, defaultFilter *dlt.DefaultFilterStore, cacheStore *cache.Store, sink EventSink, cfg Config) *Indexer {
	if sink == nil {
		sink = NopSink{}
	}
	if cacheStore == nil {
		cacheStore, _ = cache.NewStore("", 0)
	}
	return &Indexer{
		file:          file,
		plugins:       plugins,
		defaultFilter: defaultFilter,
		cache:         cacheStore,
		sink:          sink,
		cfg:           cfg,
	}
}

// Lock reserves exclusive access to the published index vectors.
func (x *Indexer) Lock() { x.indexLock.Lock() }

// Unlock releases the index lock.
func (x *Indexer) Unlock() { x.indexLock.Unlock() }

// TryLock attempts to take the index lock without blocking.
func (x *Indexer) TryLock() bool { return x.indexLock.TryLock() }

// IndexAll returns the primary index of the last indexed file.
func (x *Indexer) IndexAll() []int64 { return x.indexAll }

// IndexFilter returns the filtered index of the last completed job.
func (x *Indexer) IndexFilter() []int64 { return x.indexFilter }

// GetLogInfoList returns the companion vector of get log info responses.
func (x *Indexer) GetLogInfoList() []int64 { return x.getLogInfoList }

// IsRunning reports whether a job is currently active.
func (x *Indexer) IsRunning() bool { return x.running.Load() }

// Durations returns the elapsed time of the last job's phases.
func (x *Indexer) Durations() (index, filter, defaultFilter time.Duration) {
	return x.msecsIndex, x.msecsFilter, x.msecsDefaultFilter
}

// Start launches the job on a background goroutine.
func (x *Indexer) Start() {
	if !x.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer x.running.Store(false)
		x.run()
	}()
}

// Run executes the job synchronously on the calling goroutine.
func (x *Indexer) Run() {
	if !x.running.CompareAndSwap(false, true) {
		return
	}
	defer x.running.Store(false)
	x.run()
}

// Stop requests cancellation and blocks until the worker has returned.
// After Stop returns no further events are emitted for the job.
func (x *Indexer) Stop() {
	x.stopFlag.Store(true)
	for x.running.Load() {
		time.Sleep(stopPollInterval)
	}
}

// RequestStop sets the stop flag without waiting for the worker.
func (x *Indexer) RequestStop() {
	x.stopFlag.Store(true)
}

// run is the worker routine.
func (x *Indexer) run() {
	x.stopFlag.Store(false)

	x.msecsIndex = 0
	x.msecsFilter = 0
	x.msecsDefaultFilter = 0

	// Snapshot the plugin lists so registrations during the job are isolated.
	x.activeViewerPlugins = nil
	x.activeDecoderPlugins = nil
	if x.plugins != nil {
		x.activeViewerPlugins = append(x.activeViewerPlugins, x.plugins.ViewerPlugins()...)
		x.activeDecoderPlugins = append(x.activeDecoderPlugins, x.plugins.DecoderPlugins()...)
	}

	if x.cfg.Mode == ModeIndexAndFilter {
		x.maxRun = x.file.NumberOfFiles() + 1
	} else {
		x.maxRun = 1
	}
	x.currentRun = 1

	// Primary index, one run per file.
	if x.cfg.Mode == ModeIndexAndFilter || x.cfg.Mode == ModeIndex {
		if err := x.indexAllFiles(); err != nil {
			if !errors.Is(err, errStopped) {
				slog.Warn("primary indexing failed", slog.String("error", err.Error()))
			}
			return
		}
		x.sink.FinishIndex()
	} else if x.cfg.Mode == ModeNone {
		// Only update the view.
		x.sink.FinishIndex()
	}

	// Filter index over the concatenated message stream.
	if x.cfg.Mode == ModeIndexAndFilter || x.cfg.Mode == ModeFilter {
		basenames := make([]string, x.file.NumberOfFiles())
		for i := range basenames {
			basenames[i] = filepath.Base(x.file.FileName(i))
		}
		if err := x.indexFilterPass(basenames); err != nil {
			if !errors.Is(err, errStopped) {
				slog.Warn("filter indexing failed", slog.String("error", err.Error()))
			}
			return
		}
		x.file.SetFilterIndex(x.indexFilter)
		x.sink.FinishFilter()
	}

	// Default filter indexes.
	if x.cfg.Mode == ModeDefaultFilter {
		if err := x.indexDefaultFilterPass(); err != nil {
			if !errors.Is(err, errStopped) {
				slog.Warn("default filter indexing failed", slog.String("error", err.Error()))
			}
			return
		}
		x.sink.FinishDefaultFilter()
	}

	slog.Info("indexing job finished",
		slog.String("mode", x.cfg.Mode.String()),
		slog.Duration("index", x.msecsIndex),
		slog.Duration("filter", x.msecsFilter),
		slog.Duration("default_filter", x.msecsDefaultFilter))
}

// indexAllFiles runs the primary index phase over every file of the job,
// publishing each index to the provider as it completes.
func (x *Indexer) indexAllFiles() error {
	numFiles := x.file.NumberOfFiles()

	if x.cfg.Multithreaded && numFiles > 1 {
		return x.indexAllFilesConcurrent(numFiles)
	}

	for num := 0; num < numFiles; num++ {
		index, err := x.indexFile(num, true)
		if err != nil {
			return err
		}
		x.indexAll = index
		x.file.SetIndex(index, num)
		x.currentRun++
	}
	return nil
}

// indexAllFilesConcurrent locates all files of the job in parallel and
// publishes the results in file order afterwards. Per-file cache keys
// are independent, so cache interaction is unchanged.
func (x *Indexer) indexAllFilesConcurrent(numFiles int) error {
	indexes := make([][]int64, numFiles)

	var g errgroup.Group
	for num := 0; num < numFiles; num++ {
		g.Go(func() error {
			// Progress events of concurrent locates would interleave;
			// only the first file reports byte progress.
			index, err := x.indexFile(num, num == 0)
			if err != nil {
				return err
			}
			indexes[num] = index
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for num := 0; num < numFiles; num++ {
		x.indexAll = indexes[num]
		x.file.SetIndex(indexes[num], num)
		x.currentRun++
	}
	return nil
}

// indexFile produces the primary index of one file, via cache when possible.
func (x *Indexer) indexFile(num int, reportProgress bool) ([]int64, error) {
	started := time.Now()
	defer func() {
		x.msecsIndex += time.Since(started)
	}()

	path := x.file.FileName(num)

	cacheName := cache.PrimaryName(filepath.Base(path), x.file.FileSize())
	if index, err := x.cache.Load(cacheName); err == nil {
		slog.Debug("loaded index cache", slog.String("file", path))
		return index, nil
	} else if !errors.Is(err, cache.ErrNotAvailable) {
		slog.Warn("index cache unusable, rescanning",
			slog.String("file", path), slog.String("error", err.Error()))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}

	if reportProgress {
		x.sink.ProgressText(fmt.Sprintf("%d/%d", x.currentRun, x.maxRun))
		x.sink.ProgressMax(info.Size())
	}

	var progress locator.ProgressFunc
	if reportProgress {
		progress = func(pos int64) { x.sink.Progress(pos) }
	}

	var loc locator.Locator
	index, err := loc.Locate(path, &x.stopFlag, progress)
	if err != nil {
		if errors.Is(err, locator.ErrStopped) {
			return nil, errStopped
		}
		return nil, err
	}

	slog.Debug("created index", slog.String("file", path), slog.Int("frames", len(index)))

	if err := x.cache.Save(cacheName, index); err != nil {
		slog.Warn("failed to save index cache",
			slog.String("file", path), slog.String("error", err.Error()))
	}

	return index, nil
}
