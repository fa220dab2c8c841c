// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache_cmd.go - Persistent response cache management.
//
// Examples:
//   rigrun-chat cache stats
//   rigrun-chat cache clear             Remove every entry
//   rigrun-chat cache clear --expired   Remove only expired entries

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigrun-chat/internal/cache"
)

// cacheStats is the --json output of cache stats.
type cacheStats struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Entries int64  `json:"entries"`
}

func newCacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent response cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, store, err := openCache(opts)
			if err != nil {
				return err
			}
			stats := cacheStats{Path: path}
			if store != nil {
				defer store.Close()
				s, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				stats.Exists, stats.Entries = true, s.Entries
			}
			return emit(cmd, opts, stats, func(w io.Writer) error {
				fmt.Fprintln(w, RenderField("Path", stats.Path))
				if !stats.Exists {
					_, err := fmt.Fprintln(w, DimStyle.Render("No persistent cache yet."))
					return err
				}
				_, err := fmt.Fprintln(w, RenderField("Entries", strconv.FormatInt(stats.Entries, 10)))
				return err
			})
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openCache(opts)
			if err != nil {
				return err
			}
			var removed int64
			if store != nil {
				defer store.Close()
				if removed, err = store.Clear(cmd.Context(), expiredOnly); err != nil {
					return err
				}
			}
			return emit(cmd, opts, map[string]int64{"removed": removed}, func(w io.Writer) error {
				what := "cache entries"
				if expiredOnly {
					what = "expired cache entries"
				}
				_, err := fmt.Fprintf(w, "%s %d %s.\n", SuccessStyle.Render("Cleared"), removed, what)
				return err
			})
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}

// openCache opens the cache database when it exists. A missing database
// is not an error and yields a nil store.
func openCache(opts *globalOptions) (string, *cache.SQLiteStore, error) {
	cfg, _, err := loadConfig(opts.configPath)
	if err != nil {
		return "", nil, err
	}
	path, err := cfg.CachePath()
	if err != nil {
		return "", nil, &ConfigError{Err: err}
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path, nil, nil
	}
	store, err := cache.OpenSQLite(path, cfg.CacheTTL())
	if err != nil {
		return path, nil, fmt.Errorf("open cache: %w", err)
	}
	return path, store, nil
}
