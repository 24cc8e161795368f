package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkrisch/salvage/pkg/salvage/history"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List history roots and their tracked files",
	Long: `List the editor history roots that would be scanned, showing whether
each exists and how many tracked-file folders it holds.

Roots come from --root flags or the config file; with neither, the
standard VS Code / Cursor / VSCodium locations for this platform are
checked.`,
	RunE: runRoots,
}

func init() {
	rootCmd.AddCommand(rootsCmd)
}

// runRoots lists each candidate root with its status.
func runRoots(_ *cobra.Command, _ []string) error {
	roots, err := resolveRoots()
	if err != nil {
		return err
	}

	if len(roots) == 0 {
		printInfo("No history roots configured or detected.")
		return nil
	}

	found := 0
	for _, root := range roots {
		folders, exists, err := history.TrackedFolders(root)
		switch {
		case err != nil:
			fmt.Printf("  %-60s  (unreadable: %v)\n", root, err)
		case !exists:
			fmt.Printf("  %-60s  (missing)\n", root)
		default:
			fmt.Printf("  %-60s  %d tracked files\n", root, len(folders))
			found++
		}
	}

	if found == 0 {
		printInfo("\nNo existing history roots found. Use --root to point at one.")
	}
	return nil
}
