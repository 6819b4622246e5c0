package cli

import (
	"fmt"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog and stats cache",
		Long:  "Clean and show information about the cached catalog and statistics files",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		all       bool
		catalogs  bool
		statsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove cached files to free up disk space",
		RunE: func(*cobra.Command, []string) error {
			return runCacheClean(all, catalogs, statsOnly)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&catalogs, "catalogs", false, "Clean only cached catalogs")
	cmd.Flags().BoolVar(&statsOnly, "stats", false, "Clean only cached statistics")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display size and file counts of the cache",
		RunE:  runCacheInfo,
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		RunE:  runCacheDir,
	}

	return cmd
}

func runCacheClean(all, catalogs, statsOnly bool) error {
	manager, err := loadCacheManager()
	if err != nil {
		return err
	}

	result, err := manager.Clean(cache.CleanOptions{All: all, Catalogs: catalogs, Stats: statsOnly})
	if err != nil {
		return err
	}

	if result.CatalogsFreed > 0 {
		logger.Info("cleaned cached catalogs", logger.Fields{"size": formatBytes(result.CatalogsFreed)})
	}
	if result.StatsFreed > 0 {
		logger.Info("cleaned cached statistics", logger.Fields{"size": formatBytes(result.StatsFreed)})
	}
	logger.Info("cache cleaning completed", logger.Fields{"total_freed": formatBytes(result.TotalFreed)})
	return nil
}

func runCacheInfo(*cobra.Command, []string) error {
	manager, err := loadCacheManager()
	if err != nil {
		return err
	}

	info, err := manager.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("Cache directory: %s\n", info.Directory)
	fmt.Printf("Total size:      %s\n", formatBytes(info.TotalSize))
	fmt.Printf("Catalogs:        %s in %d file(s)\n", formatBytes(info.CatalogSize), info.CatalogFiles)
	fmt.Printf("Statistics:      %s in %d file(s)\n", formatBytes(info.StatsSize), info.StatsFiles)
	return nil
}

func runCacheDir(*cobra.Command, []string) error {
	manager, err := loadCacheManager()
	if err != nil {
		return err
	}
	fmt.Println(manager.GetDirectory())
	return nil
}

func loadCacheManager() (cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newCacheManager(cfg)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
