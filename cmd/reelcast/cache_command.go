package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelcast/internal/audiocache"
	"reelcast/internal/config"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the narration cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cached narration totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openCache(cmd, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"path":          store.Path(),
					"entries":       stats.Entries,
					"total_seconds": stats.TotalSeconds,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", store.Path())
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Audio: %.1fs\n", stats.TotalSeconds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove narrations not used recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openCache(cmd, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d narration(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Prune entries unused for this long")
	return cmd
}

func openCache(cmd *cobra.Command, cfg *config.Config) (*audiocache.Store, error) {
	if !cfg.Pipeline.CacheEnabled {
		return nil, fmt.Errorf("narration cache is disabled (pipeline.cache_enabled = false)")
	}
	return audiocache.Open(cmd.Context(), cfg.CacheDBPath())
}
