// Package cache persists index vectors as .dix files keyed by content identity.
//
// A cache file is a 4-byte little-endian version tag followed by packed
// signed 64-bit entries. Load failures of any kind are treated as a cache
// miss by callers; the indexer then computes from scratch.
package cache

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// FormatVersion is the current .dix format version.
const FormatVersion uint32 = 1

// DefaultMemoryEntries is the default size of the in-memory LRU layer.
const DefaultMemoryEntries = 16

var (
	// ErrNotAvailable is returned when caching is disabled or the entry
	// does not exist. Never fatal.
	ErrNotAvailable = errors.New("cache: not available")

	// ErrInvalid is returned for entries with a wrong version tag or a
	// torn trailing entry. Treated as absence by callers.
	ErrInvalid = errors.New("cache: invalid entry")
)

// Store reads and writes .dix index files under a single directory.
// A Store with an empty directory is valid and permanently disabled.
//
// Recently loaded and saved vectors are kept in a small LRU so a re-run
// within one process skips the file read entirely.
type Store struct {
	dir string
	mem *lru.Cache[string, []int64]
}

// NewStore creates a cache store over dir. An empty dir disables caching.
func NewStore(dir string, memEntries int) (*Store, error) {
	s := &Store{dir: dir}
	if dir == "" {
		return s, nil
	}
	if memEntries <= 0 {
		memEntries = DefaultMemoryEntries
	}
	mem, err := lru.New[string, []int64](memEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache LRU: %w", err)
	}
	s.mem = mem
	return s, nil
}

// Enabled reports whether a cache directory is configured.
func (s *Store) Enabled() bool {
	return s.dir != ""
}

// Dir returns the configured cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the path of a cache entry name inside the cache directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load reads the index vector stored under name.
// Returns ErrNotAvailable when caching is disabled or the entry is
// absent, ErrInvalid for version mismatches and torn entries.
func (s *Store) Load(name string) ([]int64, error) {
	if !s.Enabled() {
		return nil, ErrNotAvailable
	}

	if index, ok := s.mem.Get(name); ok {
		return index, nil
	}

	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAvailable
		}
		return nil, fmt.Errorf("cache load failed: %w", err)
	}
	defer f.Close()

	var header [4]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, ErrInvalid
	}
	if binary.LittleEndian.Uint32(header[:]) != FormatVersion {
		return nil, ErrInvalid
	}

	var index []int64
	var entry [8]byte
	for {
		n, err := io.ReadFull(f, entry[:])
		if err != nil {
			if errors.Is(err, io.EOF) && n == 0 {
				break
			}
			// A short trailing entry means a torn write.
			return nil, ErrInvalid
		}
		index = append(index, int64(binary.LittleEndian.Uint64(entry[:])))
	}

	s.mem.Add(name, index)
	return index, nil
}

// Save writes the index vector under name, truncating any previous entry.
// Errors are returned for logging but are never fatal to an indexing job.
func (s *Store) Save(name string, index []int64) error {
	if !s.Enabled() {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache directory: %w", err)
	}

	// Serialize concurrent writers sharing the cache directory.
	lock := flock.New(s.Path(name) + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("cache lock failed: %w", err)
	}
	if !locked {
		return fmt.Errorf("cache entry %s is locked by another writer", name)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	f, err := os.OpenFile(s.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("cache save failed: %w", err)
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], FormatVersion)
	if _, err := f.Write(header[:]); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache write failed: %w", err)
	}

	var entry [8]byte
	for _, value := range index {
		binary.LittleEndian.PutUint64(entry[:], uint64(value))
		if _, err := f.Write(entry[:]); err != nil {
			_ = f.Close()
			return fmt.Errorf("cache write failed: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("cache close failed: %w", err)
	}

	s.mem.Add(name, index)
	slog.Debug("saved cache entry", slog.String("name", name), slog.Int("entries", len(index)))
	return nil
}

// PrimaryName returns the cache file name of a primary index:
// MD5 of "<basename>_<totalSize>" in hex, with the .dix suffix.
func PrimaryName(basename string, totalSize int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", basename, totalSize)))
	return fmt.Sprintf("%x.dix", sum)
}

// FilterName returns the cache file name of a filtered index. The key
// combines the joined basenames with the total file size, concatenated
// with the filter list fingerprint. Sorted-by-time indexes use the _S
// suffix and join the basenames in lexicographic order.
func FilterName(basenames []string, totalSize int64, fingerprint [16]byte, sortByTime bool) string {
	names := make([]string, len(basenames))
	copy(names, basenames)
	if sortByTime {
		sort.Strings(names)
	}

	joined := strings.Join(names, "_")
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", joined, totalSize)))

	if sortByTime {
		return fmt.Sprintf("%x_%x_S.dix", sum, fingerprint)
	}
	return fmt.Sprintf("%x_%x.dix", sum, fingerprint)
}
