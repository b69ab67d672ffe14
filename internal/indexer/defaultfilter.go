package indexer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dltkit/dltindex/internal/cache"
	"github.com/dltkit/dltindex/internal/dlt"
)

// indexDefaultFilterPass walks the whole message stream once and fills
// the filter index of every registered default filter. A message may
// land in several indexes.
func (x *Indexer) indexDefaultFilterPass() error {
	started := time.Now()

	if x.defaultFilter == nil {
		x.msecsDefaultFilter = time.Since(started)
		return nil
	}

	size := x.file.Size()

	x.sink.ProgressText(fmt.Sprintf("%d/%d", x.currentRun, x.maxRun))
	x.sink.ProgressMax(size)

	x.defaultFilter.ClearFilterIndex()

	err := x.walk(size, func(ix int64, msg *dlt.Message) {
		if x.cfg.PluginsEnabled {
			decodeMsg(x.activeDecoderPlugins, msg, x.cfg.SilentMode)
		}

		for num, list := range x.defaultFilter.Lists {
			if list.Matches(msg) {
				fi := x.defaultFilter.Indexes[num]
				fi.Index = append(fi.Index, ix)
			}
		}
	})
	if err != nil {
		return err
	}

	// Stamp plausibility data and persist each filter index.
	fileName := x.file.FileName(0)
	basename := filepath.Base(fileName)
	for num, fi := range x.defaultFilter.Indexes {
		fi.SetFileName(fileName)
		fi.SetAllIndexSize(size)

		list := x.defaultFilter.Lists[num]
		name := cache.FilterName([]string{basename}, x.file.FileSize(), list.Fingerprint(), x.cfg.SortByTime)
		if err := x.cache.Save(name, fi.Index); err != nil {
			slog.Warn("failed to save default filter index cache",
				slog.Int("filter", num), slog.String("error", err.Error()))
		}
	}

	x.msecsDefaultFilter = time.Since(started)
	return nil
}
