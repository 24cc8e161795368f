package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the manifest cache",
	Long: `Commands for managing the manifest cache.

The cache stores parsed manifests keyed by modification time so repeat
scans of unchanged history folders skip the JSON parsing. Cache data is
stored in the XDG cache directory (typically ~/.cache/salvage/manifests).`,
}

// cachePath returns the configured cache database path.
func cachePath() string {
	if path := viper.GetString("cache.path"); path != "" {
		return path
	}
	return config.DefaultCachePath()
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached data",
	Long:  `Removes all cached manifests. The next scan will re-parse every folder.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cachePath()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays information about the cache including its location, size, and last modified time.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cachePath()

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			fmt.Println("Cache: empty (no cache database)")
			fmt.Printf("Cache location: %s\n", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat cache: %w", err)
		}

		var size int64
		var fileCount int
		err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				size += info.Size()
				fileCount++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to calculate cache size: %w", err)
		}

		fmt.Printf("Cache location: %s\n", path)
		fmt.Printf("Cache size: %.2f MB\n", float64(size)/1024/1024)
		fmt.Printf("Cache files: %d\n", fileCount)
		fmt.Printf("Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache database.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(cachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
