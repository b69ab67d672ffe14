// Package locator scans raw DLT log bytes for frame starts.
package locator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// SegmentSize is the read buffer size for streaming scans.
const SegmentSize = 1024 * 1024

// ErrStopped is returned when a scan observes the stop flag. No partial
// index is returned alongside it.
var ErrStopped = errors.New("locator: scan stopped")

// ProgressFunc receives the byte position before each segment read.
type ProgressFunc func(pos int64)

// Locator finds the byte offsets of every frame start in a log file by
// matching the literal magic D L T 0x01 with a small byte-state machine.
//
// The matcher restarts on every 'D', mirroring the established scanner
// behaviour the cache format depends on; it does not resynchronize
// beyond that, so magic bytes inside payloads are reported too and left
// for the decoder to reject.
type Locator struct {
	// SegmentSize overrides the streaming buffer size. Zero uses SegmentSize.
	SegmentSize int
}

// Locate scans the file at path and returns the ascending frame offsets.
// An empty file yields an empty index. The stop flag is checked on every
// byte; when observed the scan returns ErrStopped without an index.
func (l *Locator) Locate(path string, stop *atomic.Bool, progress ProgressFunc) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	defer f.Close()

	return l.scan(f, stop, progress)
}

// scan runs the segment loop over r.
func (l *Locator) scan(r io.Reader, stop *atomic.Bool, progress ProgressFunc) ([]int64, error) {
	segSize := l.SegmentSize
	if segSize <= 0 {
		segSize = SegmentSize
	}

	var (
		index     []int64
		lastFound byte
		pos       int64
	)
	buf := make([]byte, segSize)

	for {
		segStart := pos
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := buf[:n]
			for i := 0; i < n; i++ {
				switch {
				case data[i] == 'D':
					lastFound = 'D'
				case lastFound == 'D' && data[i] == 'L':
					lastFound = 'L'
				case lastFound == 'L' && data[i] == 'T':
					lastFound = 'T'
				case lastFound == 'T' && data[i] == 0x01:
					index = append(index, segStart+int64(i)-3)
					lastFound = 0
				default:
					lastFound = 0
				}

				if stop != nil && stop.Load() {
					return nil, ErrStopped
				}
			}
			pos += int64(n)
			if progress != nil {
				progress(segStart)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return index, nil
			}
			return nil, fmt.Errorf("read failed at offset %d: %w", pos, err)
		}
	}
}
