package indexer

import "github.com/dltkit/dltindex/internal/dlt"

// FileProvider is the log file handle an indexing job works on.
// *dlt.File implements it; tests substitute in-memory providers.
//
// The worker reads from the provider and writes back computed indexes
// between phases. Callers must not run two jobs against the same
// provider concurrently.
type FileProvider interface {
	// NumberOfFiles returns how many physical files the handle spans.
	NumberOfFiles() int

	// FileName returns the path of file i.
	FileName(i int) string

	// FileSize returns the total byte size across all files.
	FileSize() int64

	// Size returns the global message count across all files.
	Size() int64

	// GetMsg decodes the message at a global index. Returns false for
	// broken frames, which the walk skips.
	GetMsg(globalIndex int64) (*dlt.Message, bool)

	// SetIndex publishes the primary index of file i.
	SetIndex(index []int64, i int)

	// SetFilterIndex publishes the filtered index.
	SetFilterIndex(index []int64)

	// FilterList returns the active filter list.
	FilterList() *dlt.FilterList
}
