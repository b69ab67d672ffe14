// Package cmd provides the CLI commands for dltindex.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dltkit/dltindex/internal/logging"
	"github.com/dltkit/dltindex/pkg/version"
)

var (
	debugMode      bool
	noColor        bool
	quiet          bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the dltindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dltindex",
		Short: "Indexer for DLT automotive trace logs",
		Long: `dltindex builds byte-offset and filter indexes over DLT trace log
files and caches them on disk, so reopening a large log is instant.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("dltindex version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.dltindex/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRunE = teardownLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging initializes file logging when --debug is set.
func setupLogging(cmd *cobra.Command, args []string) error {
	if !debugMode {
		return nil
	}
	cleanup, err := logging.SetupDefault()
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.Debug("debug logging enabled")
	return nil
}

// teardownLogging closes the log file.
func teardownLogging(cmd *cobra.Command, args []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
