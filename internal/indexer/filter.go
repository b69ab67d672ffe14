package indexer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dltkit/dltindex/internal/cache"
	"github.com/dltkit/dltindex/internal/dlt"
)

// versionPayloadEnd bounds the software version string read from a
// get software version response: bytes [9, min(len, 265)).
const (
	versionPayloadStart = 9
	versionPayloadEnd   = 265
)

// timeKey orders filtered entries when sort by time is enabled.
// Ordering is lexicographic over (seconds, microseconds, global index),
// so ties on the timestamp keep ascending global index.
type timeKey struct {
	time  int64
	micro uint32
	index int64
}

func (a timeKey) less(b timeKey) bool {
	if a.time != b.time {
		return a.time < b.time
	}
	if a.micro != b.micro {
		return a.micro < b.micro
	}
	return a.index < b.index
}

// indexFilterPass walks the whole message stream, producing the filtered
// index and firing the control message side channels.
func (x *Indexer) indexFilterPass(basenames []string) error {
	started := time.Now()

	filterList := x.file.FilterList()
	fingerprint := filterList.Fingerprint()
	cacheName := cache.FilterName(basenames, x.file.FileSize(), fingerprint, x.cfg.SortByTime)

	// A cached filter index can only stand in when the walk's side
	// effects are not needed, i.e. not on an initial loading of the file.
	if x.cfg.Mode != ModeIndexAndFilter {
		if index, err := x.cache.Load(cacheName); err == nil {
			slog.Debug("loaded filter index cache", slog.String("files", strings.Join(basenames, ",")))
			x.indexFilter = index
			x.msecsFilter = time.Since(started)
			return nil
		} else if !errors.Is(err, cache.ErrNotAvailable) {
			slog.Warn("filter index cache unusable, rebuilding", slog.String("error", err.Error()))
		}
	}

	size := x.file.Size()

	x.sink.ProgressText(fmt.Sprintf("%d/%d", x.currentRun, x.maxRun))
	x.sink.ProgressMax(size)

	x.indexFilter = nil
	x.getLogInfoList = nil

	// Reserve the worst case up front so the walk never reallocates.
	x.indexFilter = make([]int64, 0, size)
	var sorted []timeKey
	if x.cfg.SortByTime {
		sorted = make([]timeKey, 0, size)
	}

	err := x.walk(size, func(ix int64, msg *dlt.Message) {
		if x.cfg.Mode == ModeIndexAndFilter {
			x.extractSideChannels(ix, msg)
		}

		// Offer the raw message to the viewer plugins.
		if x.cfg.Mode == ModeIndexAndFilter && x.cfg.PluginsEnabled {
			for _, p := range x.activeViewerPlugins {
				p.InitMsg(ix, msg)
			}
		}

		// Run the decoder plugin chain.
		if x.cfg.PluginsEnabled {
			decodeMsg(x.activeDecoderPlugins, msg, x.cfg.SilentMode)
		}

		// Add to the filter index if it matches.
		if !x.cfg.FiltersEnabled || filterList.Matches(msg) {
			if x.cfg.SortByTime {
				sorted = append(sorted, timeKey{time: msg.Time, micro: msg.Microseconds, index: ix})
			} else {
				x.indexFilter = append(x.indexFilter, ix)
			}
		}

		// Offer the message again after decoding.
		if x.cfg.Mode == ModeIndexAndFilter && x.cfg.PluginsEnabled {
			for _, p := range x.activeViewerPlugins {
				p.InitMsgDecoded(ix, msg)
			}
		}
	})
	if err != nil {
		return err
	}

	slog.Debug("created filter index", slog.String("files", strings.Join(basenames, ",")))

	x.msecsFilter = time.Since(started)

	// Flatten the time-ordered container into the result vector.
	if x.cfg.SortByTime {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })
		x.indexFilter = x.indexFilter[:0]
		for _, k := range sorted {
			x.indexFilter = append(x.indexFilter, k.index)
		}
	}

	if err := x.cache.Save(cacheName, x.indexFilter); err != nil {
		slog.Warn("failed to save filter index cache", slog.String("error", err.Error()))
	}

	return nil
}

// extractSideChannels fires the control response side channels for one
// message. None of them affects the filtered index.
func (x *Indexer) extractSideChannels(ix int64, msg *dlt.Message) {
	if !msg.IsControlResponse() {
		return
	}

	payload := msg.Payload

	switch msg.ServiceID {
	case dlt.ServiceIDGetSoftwareVersion:
		if len(payload) > versionPayloadStart {
			end := len(payload)
			if end > versionPayloadEnd {
				end = versionPayloadEnd
			}
			version := strings.TrimSpace(dlt.ToASCII(payload[versionPayloadStart:end]))
			x.sink.VersionString(msg.EcuID, version)
		}

	case dlt.ServiceIDTimezone:
		if len(payload) == dlt.TimezoneRecordSize {
			var offset int32
			if msg.Endianness == dlt.BigEndian {
				offset = int32(binary.BigEndian.Uint32(payload[4:8]))
			} else {
				offset = int32(binary.LittleEndian.Uint32(payload[4:8]))
			}
			x.sink.Timezone(offset, payload[8] != 0)
		}

	case dlt.ServiceIDUnregisterContext:
		if len(payload) == dlt.UnregisterContextRecordSize {
			appID := idString(payload[5:9])
			ctxID := idString(payload[9:13])
			x.sink.UnregisterContext(msg.EcuID, appID, ctxID)
		}

	case dlt.ServiceIDGetLogInfo:
		x.getLogInfoList = append(x.getLogInfoList, ix)
		x.sink.GetLogInfo(ix)
	}
}

// idString converts a fixed 4-byte id field, dropping NUL padding.
func idString(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
