package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/cmd/salvage/tui"
	"github.com/tkrisch/salvage/pkg/salvage/cache"
	"github.com/tkrisch/salvage/pkg/salvage/config"
	"github.com/tkrisch/salvage/pkg/salvage/history"
	"github.com/tkrisch/salvage/pkg/salvage/locator"
	"github.com/tkrisch/salvage/pkg/salvage/output"
	"github.com/tkrisch/salvage/pkg/salvage/restore"
	"github.com/tkrisch/salvage/pkg/salvage/runlog"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
)

// RecoveryPrefix is prepended to every recovered filename.
const RecoveryPrefix = "REV_"

// runLocate is the main locate command handler: scan, rank, copy, report.
func runLocate(_ *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	sel, err := buildSelector()
	if err != nil {
		return err
	}

	roots, err := resolveRoots()
	if err != nil {
		return err
	}

	outputDir, err := config.ExpandPath(viper.GetString("output_dir"))
	if err != nil {
		return fmt.Errorf("failed to expand output directory: %w", err)
	}

	raw := viper.GetBool("raw")

	if viper.GetBool("interactive") {
		return tui.Run(tui.Options{
			Roots:       roots,
			Selector:    sel,
			HeaderBytes: viper.GetInt("header_bytes"),
			Raw:         raw,
			OutputDir:   outputDir,
			Prefix:      RecoveryPrefix,
		})
	}

	return runNonInteractiveLocate(sel, roots, outputDir, raw)
}

// resolveRoots returns the roots to scan: flag/config roots when given,
// otherwise the per-platform editor defaults.
func resolveRoots() ([]string, error) {
	roots := viper.GetStringSlice("roots")
	if len(roots) == 0 {
		return history.DefaultRoots(), nil
	}

	expanded := make([]string, len(roots))
	for i, root := range roots {
		r, err := config.ExpandPath(root)
		if err != nil {
			return nil, fmt.Errorf("failed to expand root %q: %w", root, err)
		}
		expanded[i] = r
	}
	return expanded, nil
}

// openCache opens the manifest cache unless disabled. A cache failure is
// not fatal; the scan just runs uncached.
func openCache(raw bool) *cache.Cache {
	if raw || viper.GetBool("no_cache") || !viper.GetBool("cache.enabled") {
		return nil
	}

	path := viper.GetString("cache.path")
	if path == "" {
		path = config.DefaultCachePath()
	}

	c, err := cache.Open(path)
	if err != nil {
		printVerbose("Cache unavailable, scanning uncached: %v", err)
		return nil
	}
	return c
}

// runNonInteractiveLocate runs the scan-list-copy pipeline.
func runNonInteractiveLocate(sel *selector.Selector, roots []string, outputDir string, raw bool) error {
	outFormat := viper.GetString("format")
	if outFormat == "" {
		outFormat = config.DefaultFormat
	}
	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	interrupted := false
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping scan...")
		interrupted = true
		cancel()
	}()

	cacheDB := openCache(raw)
	if cacheDB != nil {
		defer cacheDB.Close()
	}

	loc := locator.New(locator.Options{
		Roots:       roots,
		Selector:    sel,
		HeaderBytes: viper.GetInt("header_bytes"),
		Raw:         raw,
		Cache:       cacheDB,
	})

	result, err := loc.Scan(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scan failed: %w", err)
		}
		// Ctrl-C mid-scan: keep what was found, list it, copy nothing.
		interrupted = true
	}

	listing := output.NewListing(result, roots)
	listing.Interrupted = interrupted

	// Copy the top candidates unless listing only.
	if !viper.GetBool("no_copy") && len(result.Candidates) > 0 && !interrupted {
		mat := &restore.Materializer{
			OutputDir: outputDir,
			Limit:     sel.Limit,
			Prefix:    RecoveryPrefix,
		}
		if err := mat.EnsureDir(); err != nil {
			return err
		}

		copies, skips, err := mat.Copy(result.Candidates)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		for _, skip := range skips {
			printVerbose("Skipped %s: %s", skip.Path, skip.Reason)
		}

		listing.OutputDir = outputDir
		listing.Copied = len(copies)

		recordRun(outputDir, sel, raw, len(result.Candidates), copies)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, listing); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// recordRun journals a run that copied files. Journal failures are logged,
// never fatal; the copies already happened.
func recordRun(outputDir string, sel *selector.Selector, raw bool, matched int, copies []restore.CopyRecord) {
	if !viper.GetBool("runlog.enabled") || len(copies) == 0 {
		return
	}

	dir := viper.GetString("runlog.dir")
	if dir == "" {
		dir = config.DefaultRunlogDir()
	}

	journal, err := runlog.New(dir)
	if err != nil {
		printVerbose("Run journal unavailable: %v", err)
		return
	}

	if _, err := journal.Record(outputDir, buildCriteria(sel, raw), matched, copies); err != nil {
		printVerbose("Failed to record run: %v", err)
	}
}
