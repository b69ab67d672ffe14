package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dltkit/dltindex/internal/config"
)

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the index cache",
	}

	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

// newCacheListCmd lists the cache entries.
func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached index files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "caching is disabled")
				return nil
			}

			entries, err := cacheEntries(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no cache entries in %s\n", cfg.Cache.Dir)
				return nil
			}

			var total int64
			for _, e := range entries {
				info, err := e.Info()
				if err != nil {
					continue
				}
				total += info.Size()
				kind := "primary"
				if strings.Contains(e.Name(), "_") {
					kind = "filter"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-70s %8d  %s\n", e.Name(), info.Size(), kind)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %d bytes\n", len(entries), total)
			return nil
		},
	}
}

// newCacheClearCmd removes all cache entries.
func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached index files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "caching is disabled")
				return nil
			}

			entries, err := cacheEntries(cfg.Cache.Dir)
			if err != nil {
				return err
			}

			var removed int
			for _, e := range entries {
				if err := os.Remove(filepath.Join(cfg.Cache.Dir, e.Name())); err == nil {
					removed++
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d cache entries\n", removed)
			return nil
		},
	}
}

// cacheEntries returns the .dix entries of the cache directory.
func cacheEntries(dir string) ([]os.DirEntry, error) {
	all, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []os.DirEntry
	for _, e := range all {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".dix") {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
