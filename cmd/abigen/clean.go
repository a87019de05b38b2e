package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abigen/internal/plancache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove cached emission plans",
	Long: `Remove every entry from the plan cache. The cache directory is taken from
--cache-dir, the [cache] section of the nearest abigen.toml, or the user cache
directory, in that order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("cache-dir", "", "plan cache directory")
}

func runClean(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir == "" {
		start := "."
		if len(args) > 0 && args[0] != "" {
			start = args[0]
		}
		m, ok, err := loadProjectManifest(start)
		if err != nil {
			return err
		}
		if ok {
			dir = m.cacheDir()
		}
	}

	var cache *plancache.DiskCache
	if dir != "" {
		cache, err = plancache.OpenDir(dir)
	} else {
		cache, err = plancache.Open("abigen")
	}
	if err != nil {
		return fmt.Errorf("failed to open plan cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", cache.Dir(), err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cache.Dir())
	}
	return nil
}
