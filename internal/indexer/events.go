package indexer

// EventSink receives the events an indexing job emits. All methods are
// called from the worker goroutine, in walk order; implementations are
// responsible for any cross-goroutine hand-off.
type EventSink interface {
	// ProgressMax announces the total work units of the coming phase.
	ProgressMax(n int64)

	// Progress reports monotonic progress within a phase.
	Progress(n int64)

	// ProgressText announces the current run as "current/max".
	ProgressText(s string)

	// VersionString reports a software version control response.
	VersionString(ecuID, version string)

	// Timezone reports a timezone control response.
	Timezone(offsetSeconds int32, dst bool)

	// UnregisterContext reports an unregister context control response.
	UnregisterContext(ecuID, appID, ctxID string)

	// GetLogInfo reports the global index of a get log info response.
	GetLogInfo(index int64)

	// FinishIndex signals completion of the primary index phase.
	FinishIndex()

	// FinishFilter signals completion of the filter index phase.
	FinishFilter()

	// FinishDefaultFilter signals completion of the default filter phase.
	FinishDefaultFilter()
}

// NopSink discards all events. Useful as an embedding base and in tests.
type NopSink struct{}

func (NopSink) ProgressMax(int64) {}
func (NopSink) Progress(int64) {}
func (NopSink) ProgressText(string) {}
func (NopSink) VersionString(string, string) {}
func (NopSink) Timezone(int32, bool) {}
func (NopSink) UnregisterContext(_, _, _ string) {}
func (NopSink) GetLogInfo(int64) {}
func (NopSink) FinishIndex() {}
func (NopSink) FinishFilter() {}
func (NopSink) FinishDefaultFilter() {}
