package dlt

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxFrameRead bounds how many bytes GetMsg reads for a single frame:
// storage header plus the largest length the 16-bit standard header can name.
const maxFrameRead = storageHeaderSize + 0xffff

// part is one underlying log file of a multi-file handle.
type part struct {
	name  string
	size  int64
	f     *os.File
	index []int64 // frame offsets, ascending
}

// File is a handle over one or more DLT log files forming a single
// logical message stream. Messages are addressed by their global index:
// position in the concatenation of all per-file frame indexes, in file
// order then offset order.
type File struct {
	mu    sync.Mutex
	parts []*part

	filterList  *FilterList
	filterIndex []int64
}

// Open opens the given log files as one logical stream.
func Open(paths ...string) (*File, error) {
	df := &File{filterList: &FilterList{}}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			df.Close()
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			df.Close()
			return nil, fmt.Errorf("failed to stat log file: %w", err)
		}
		df.parts = append(df.parts, &part{name: p, size: info.Size(), f: f})
	}
	return df, nil
}

// Close closes all underlying files.
func (df *File) Close() {
	df.mu.Lock()
	defer df.mu.Unlock()
	for _, p := range df.parts {
		if p.f != nil {
			_ = p.f.Close()
			p.f = nil
		}
	}
}

// NumberOfFiles returns how many underlying files the handle spans.
func (df *File) NumberOfFiles() int {
	return len(df.parts)
}

// FileName returns the path of file i.
func (df *File) FileName(i int) string {
	if i < 0 || i >= len(df.parts) {
		return ""
	}
	return df.parts[i].name
}

// BaseName returns the base name of file i.
func (df *File) BaseName(i int) string {
	return filepath.Base(df.FileName(i))
}

// FileSize returns the total byte size of all underlying files.
func (df *File) FileSize() int64 {
	var total int64
	for _, p := range df.parts {
		total += p.size
	}
	return total
}

// SetIndex publishes the primary index for file i.
func (df *File) SetIndex(index []int64, i int) {
	df.mu.Lock()
	defer df.mu.Unlock()
	if i < 0 || i >= len(df.parts) {
		return
	}
	df.parts[i].index = index
}

// Index returns the primary index of file i.
func (df *File) Index(i int) []int64 {
	df.mu.Lock()
	defer df.mu.Unlock()
	if i < 0 || i >= len(df.parts) {
		return nil
	}
	return df.parts[i].index
}

// Size returns the global message count across all files.
func (df *File) Size() int64 {
	df.mu.Lock()
	defer df.mu.Unlock()
	var total int64
	for _, p := range df.parts {
		total += int64(len(p.index))
	}
	return total
}

// SetFilterIndex publishes the filtered index.
func (df *File) SetFilterIndex(index []int64) {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.filterIndex = index
}

// FilterIndex returns the published filtered index.
func (df *File) FilterIndex() []int64 {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.filterIndex
}

// SetFilterList installs the active filter list.
func (df *File) SetFilterList(list *FilterList) {
	df.mu.Lock()
	defer df.mu.Unlock()
	if list == nil {
		list = &FilterList{}
	}
	df.filterList = list
}

// FilterList returns the active filter list.
func (df *File) FilterList() *FilterList {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.filterList
}

// GetMsg decodes the message at the given global index. It returns false
// for out-of-range indexes and for structurally broken frames.
func (df *File) GetMsg(globalIndex int64) (*Message, bool) {
	df.mu.Lock()
	defer df.mu.Unlock()

	if globalIndex < 0 {
		return nil, false
	}

	rest := globalIndex
	for _, p := range df.parts {
		n := int64(len(p.index))
		if rest >= n {
			rest -= n
			continue
		}

		offset := p.index[rest]
		readLen := p.size - offset
		if readLen <= 0 {
			return nil, false
		}
		if readLen > maxFrameRead {
			readLen = maxFrameRead
		}

		buf := make([]byte, readLen)
		read, err := p.f.ReadAt(buf, offset)
		if err != nil && read <= 0 {
			return nil, false
		}

		msg, _, err := Decode(buf[:read])
		if err != nil {
			return nil, false
		}
		return msg, true
	}

	return nil, false
}
