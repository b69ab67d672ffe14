package dlt

// FilterIndex is the persistent filter index of one default filter,
// together with the plausibility data stored alongside it: the source
// file name and the total message count it was computed against.
type FilterIndex struct {
	Index        []int64
	FileName     string
	AllIndexSize int64
}

// SetFileName records the source log file name.
func (fi *FilterIndex) SetFileName(name string) {
	fi.FileName = name
}

// SetAllIndexSize records the total message count at computation time.
func (fi *FilterIndex) SetAllIndexSize(n int64) {
	fi.AllIndexSize = n
}

// Plausible reports whether the stored index still matches the given
// file name and message count.
func (fi *FilterIndex) Plausible(name string, allIndexSize int64) bool {
	return fi.FileName == name && fi.AllIndexSize == allIndexSize
}

// DefaultFilterStore holds the registered default filters, each with its
// own filter list and filter index. The two slices are parallel.
type DefaultFilterStore struct {
	Lists   []*FilterList
	Indexes []*FilterIndex
}

// Add registers a default filter.
func (s *DefaultFilterStore) Add(list *FilterList) {
	s.Lists = append(s.Lists, list)
	s.Indexes = append(s.Indexes, &FilterIndex{})
}

// Len returns the number of registered default filters.
func (s *DefaultFilterStore) Len() int {
	return len(s.Lists)
}

// ClearFilterIndex resets every default filter index before a new walk.
func (s *DefaultFilterStore) ClearFilterIndex() {
	for _, fi := range s.Indexes {
		fi.Index = nil
		fi.FileName = ""
		fi.AllIndexSize = 0
	}
}
