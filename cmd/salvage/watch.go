package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/types"
	"github.com/tkrisch/salvage/pkg/salvage/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch history roots for new matching snapshots",
	Long: `Watch the history roots and print each new snapshot that matches the
selection flags as the editor writes it.

Useful while reconstructing a file: leave a watch running with the
target's name and see every autosaved version arrive.

Examples:
  salvage watch -n records.tsx
  salvage watch -m "import React" --min-size 500K`,
	PreRun: func(cmd *cobra.Command, _ []string) { bindSelectionFlags(cmd) },
	RunE:   runWatch,
}

func init() {
	watchCmd.Flags().StringP("name", "n", "", "filename substring to match (case-insensitive)")
	watchCmd.Flags().String("min-size", "", "minimum snapshot size")
	watchCmd.Flags().String("max-size", "", "maximum snapshot size, exclusive")
	watchCmd.Flags().StringSliceP("marker", "m", nil, "content marker (repeatable)")
	watchCmd.Flags().StringSliceP("exclude", "e", nil, "glob patterns to exclude (repeatable)")
	watchCmd.Flags().StringSliceP("root", "r", nil, "history root to watch (repeatable; default: auto-detect)")

	rootCmd.AddCommand(watchCmd)
}

// runWatch watches the roots and prints matches until interrupted.
func runWatch(_ *cobra.Command, _ []string) error {
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

	w, err := watcher.New(sel, viper.GetInt("header_bytes"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	watching := 0
	for _, root := range roots {
		if err := w.Watch(root); err != nil {
			printVerbose("Cannot watch %s: %v", root, err)
			continue
		}
		watching++
		printInfo("Watching %s", root)
	}
	if watching == 0 {
		return fmt.Errorf("no watchable history roots found")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nStopping watch...")
		cancel()
	}()

	printInfo("Waiting for snapshots (Ctrl-C to stop)...")

	w.Run(ctx, func(c types.Candidate) {
		fmt.Printf("%s  %-10s  %-30s  %s\n",
			c.Time().Format("15:04:05"),
			c.HumanSize(),
			c.Basename(),
			c.BlobPath,
		)
	})

	return nil
}
