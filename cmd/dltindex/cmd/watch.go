package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dltkit/dltindex/internal/watcher"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-index a DLT log file whenever it changes",
		Long: `Watch runs an indexing job over the file, then watches it with the
platform file notification API and re-indexes after every change.
Interrupt with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory for .dix files (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Disable the index cache")
	cmd.Flags().StringVar(&opts.filterFile, "filters", "", "YAML filter list to apply")
	cmd.Flags().BoolVar(&opts.sortByTime, "sort-by-time", false, "Order the filter index by message timestamp")

	return cmd
}

// runWatch indexes once, then re-indexes on file changes until interrupted.
func runWatch(cmd *cobra.Command, path string, opts indexOptions) error {
	if err := runIndex(cmd, []string{path}, opts); err != nil {
		return err
	}

	w, err := watcher.New(path, watcher.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", path)

	for {
		select {
		case <-w.Changes():
			slog.Debug("file changed, re-indexing", slog.String("file", path))
			if err := runIndex(cmd, []string{path}, opts); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "re-index failed: %v\n", err)
			}

		case <-sigCh:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "stopped")
			return nil
		}
	}
}
