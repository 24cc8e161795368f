package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/config"
	"github.com/tkrisch/salvage/pkg/salvage/runlog"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "View past recovery runs",
	Long: `View the journal of past recovery runs.

Every run that copied files is recorded with its criteria and the list
of files it materialized, so a recovery can be audited later.`,
	RunE: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Long:  `Display the criteria and copied files of a run by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old run entries",
	Long:  `Remove run journal entries older than the retention period.`,
	RunE:  runRunsClean,
}

var runsLimit int

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "maximum number of runs to show")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsCleanCmd)
	rootCmd.AddCommand(runsCmd)
}

// getRunlog returns the run journal at the configured directory.
func getRunlog() (*runlog.Log, error) {
	dir := viper.GetString("runlog.dir")
	if dir == "" {
		dir = config.DefaultRunlogDir()
	}
	return runlog.New(dir)
}

// runRuns lists recent recovery runs.
func runRuns(_ *cobra.Command, _ []string) error {
	journal, err := getRunlog()
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}

	entries, err := journal.List(runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No recovery runs recorded.")
		printInfo("Run 'salvage -n <filename>' to recover file versions.")
		return nil
	}

	fmt.Printf("\n%-32s  %-19s  %-7s  %-10s\n", "ID", "WHEN", "COPIED", "SIZE")
	fmt.Println(strings.Repeat("-", 76))

	for _, entry := range entries {
		fmt.Printf("%-32s  %-19s  %-7d  %-10s\n",
			entry.ID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Summary.Copied,
			types.FormatSize(entry.Summary.TotalBytes),
		)
	}

	fmt.Println(strings.Repeat("-", 76))
	fmt.Println("Use 'salvage runs show <id>' for details on a specific run.")

	return nil
}

// runRunsShow displays details of a specific run.
func runRunsShow(_ *cobra.Command, args []string) error {
	journal, err := getRunlog()
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}

	entry, err := journal.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Println("\nRecovery Run")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:          %s\n", entry.ID)
	fmt.Printf("When:        %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Output dir:  %s\n", entry.OutputDir)
	fmt.Printf("Matched:     %d\n", entry.Summary.Matched)
	fmt.Printf("Copied:      %d (%s)\n", entry.Summary.Copied, types.FormatSize(entry.Summary.TotalBytes))

	if c := entry.Criteria; c.NameContains != "" || c.MinSize > 0 || c.MaxSize > 0 || len(c.Markers) > 0 || c.ModifiedAfter != "" || c.Raw {
		fmt.Println("\nCriteria:")
		if c.NameContains != "" {
			fmt.Printf("  name contains:  %s\n", c.NameContains)
		}
		if c.MinSize > 0 || c.MaxSize > 0 {
			fmt.Printf("  size window:    [%d, %d)\n", c.MinSize, c.MaxSize)
		}
		if len(c.Markers) > 0 {
			fmt.Printf("  markers:        %s\n", strings.Join(c.Markers, ", "))
		}
		if c.ModifiedAfter != "" {
			fmt.Printf("  modified after: %s\n", c.ModifiedAfter)
		}
		if c.Raw {
			fmt.Println("  raw walk:       yes")
		}
	}

	if len(entry.Copies) > 0 {
		fmt.Println("\nCopied files:")
		fmt.Println(strings.Repeat("-", 60))
		for _, copyRec := range entry.Copies {
			fmt.Printf("%-12s  %s\n", types.FormatSize(copyRec.Size), copyRec.Dest)
		}
	}

	return nil
}

// runRunsClean removes old run entries.
func runRunsClean(_ *cobra.Command, _ []string) error {
	journal, err := getRunlog()
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}

	retentionDays := viper.GetInt("runlog.retention_days")
	if retentionDays <= 0 {
		retentionDays = config.DefaultRunlogRetentionDays
	}

	printInfo("Cleaning runs older than %d days...", retentionDays)

	removed, err := journal.Prune(time.Duration(retentionDays) * 24 * time.Hour)
	if err != nil {
		return fmt.Errorf("failed to clean runs: %w", err)
	}

	printInfo("Removed %d run entries.", removed)
	return nil
}
