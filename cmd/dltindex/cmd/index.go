package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dltkit/dltindex/internal/cache"
	"github.com/dltkit/dltindex/internal/config"
	"github.com/dltkit/dltindex/internal/dlt"
	"github.com/dltkit/dltindex/internal/indexer"
	"github.com/dltkit/dltindex/internal/ui"
)

// indexOptions carries the flag overrides of the index command.
type indexOptions struct {
	cacheDir   string
	noCache    bool
	filterFile string
	sortByTime bool
	noFilters  bool
	noPlugins  bool
	single     bool
}

// newIndexCmd creates the index command.
func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Build primary and filter indexes over DLT log files",
		Long: `Index scans the given DLT log files for frame offsets, then walks
the decoded message stream once to build the filter index. Both
indexes are cached under the configured cache directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory for .dix files (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Disable the index cache")
	cmd.Flags().StringVar(&opts.filterFile, "filters", "", "YAML filter list to apply")
	cmd.Flags().BoolVar(&opts.sortByTime, "sort-by-time", false, "Order the filter index by message timestamp")
	cmd.Flags().BoolVar(&opts.noFilters, "no-filters", false, "Treat every message as matching")
	cmd.Flags().BoolVar(&opts.noPlugins, "no-plugins", false, "Skip decoder and viewer plugins")
	cmd.Flags().BoolVar(&opts.single, "single-threaded", false, "Locate multi-file jobs sequentially")

	return cmd
}

// runIndex executes one IndexAndFilter job over the given files.
func runIndex(cmd *cobra.Command, paths []string, opts indexOptions) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	applyIndexOverrides(cfg, opts)

	file, err := dlt.Open(paths...)
	if err != nil {
		return err
	}
	defer file.Close()

	if opts.filterFile != "" {
		list, err := dlt.LoadFilterList(opts.filterFile)
		if err != nil {
			return err
		}
		file.SetFilterList(list)
	}

	store, err := cache.NewStore(cfg.Cache.Dir, cfg.Cache.MemoryEntries)
	if err != nil {
		return err
	}

	sink := ui.NewConsoleSink(ui.Config{
		Output:  cmd.OutOrStdout(),
		NoColor: noColor,
		Quiet:   quiet,
	})

	job := indexer.New(file, nil, nil, store, sink, indexer.Config{
		Mode:           indexer.ModeIndexAndFilter,
		PluginsEnabled: cfg.Indexing.PluginsEnabled,
		FiltersEnabled: cfg.Indexing.FiltersEnabled,
		SortByTime:     cfg.Indexing.SortByTime,
		Multithreaded:  cfg.Indexing.Multithreaded,
		SilentMode:     cfg.Indexing.SilentMode,
	})

	job.Run()

	indexDur, filterDur, _ := job.Durations()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(),
		"%d messages, %d matching (index %s, filter %s)\n",
		file.Size(), len(file.FilterIndex()), indexDur.Round(time.Millisecond), filterDur.Round(time.Millisecond))

	return nil
}

// applyIndexOverrides folds the command flags into the loaded config.
func applyIndexOverrides(cfg *config.Config, opts indexOptions) {
	if opts.cacheDir != "" {
		cfg.Cache.Dir = opts.cacheDir
	}
	if opts.noCache {
		cfg.Cache.Dir = ""
	}
	if opts.sortByTime {
		cfg.Indexing.SortByTime = true
	}
	if opts.noFilters {
		cfg.Indexing.FiltersEnabled = false
	}
	if opts.noPlugins {
		cfg.Indexing.PluginsEnabled = false
	}
	if opts.single {
		cfg.Indexing.Multithreaded = false
	}
}
