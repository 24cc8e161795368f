package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/config"
	"github.com/tkrisch/salvage/pkg/salvage/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "salvage",
		Short: "Recover file versions from editor local history",
		Long: `Salvage scans VS Code / Cursor style local-history folders for snapshots
of a lost or overwritten file, ranks the matches newest-first, and copies
the best candidates into a recovery directory under collision-free names.

Examples:
  salvage -n records.tsx                 # Find snapshots of records.tsx
  salvage -n app.py --since 2h           # Versions written in the last 2 hours
  salvage --min-size 500K --max-size 650K -m import -m React
                                         # Size window plus content markers
  salvage -n notes.md --no-copy          # List only, copy nothing
  salvage --raw --today                  # Ignore manifests, walk blobs by mtime
  salvage runs                           # Review past recovery runs`,
		Args: cobra.NoArgs,
		// Selection keys are shared with the watch command, so each command
		// binds its own flag set just before running.
		PreRun: func(cmd *cobra.Command, _ []string) { bindSelectionFlags(cmd) },
		RunE:   runLocate,
	}
)

// bindSelectionFlags points the shared viper keys at cmd's flag set.
func bindSelectionFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{
		"name":     "name",
		"min_size": "min-size",
		"max_size": "max-size",
		"marker":   "marker",
		"exclude":  "exclude",
		"roots":    "root",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/salvage/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Selection flags
	rootCmd.Flags().StringP("name", "n", "", "filename substring to match (case-insensitive)")
	rootCmd.Flags().String("min-size", "", "minimum snapshot size (e.g., 500K, 1M)")
	rootCmd.Flags().String("max-size", "", "maximum snapshot size, exclusive (e.g., 650K)")
	rootCmd.Flags().StringSliceP("marker", "m", nil, "content marker that must appear in the snapshot header (repeatable)")
	rootCmd.Flags().String("since", "", "only snapshots newer than this (e.g., 2h, 3d, 1w)")
	rootCmd.Flags().Bool("today", false, "only snapshots written since local midnight")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "glob patterns to exclude (repeatable)")
	rootCmd.Flags().IntP("limit", "l", 0, "max candidates to copy (0 = copy all matches)")

	// Scan flags
	rootCmd.Flags().StringSliceP("root", "r", nil, "history root to scan (repeatable; default: auto-detect)")
	rootCmd.Flags().Bool("raw", false, "ignore manifests, walk every blob by mtime")
	rootCmd.Flags().Bool("no-cache", false, "bypass the manifest cache")

	// Output flags
	rootCmd.Flags().StringP("output", "o", "", "output format: pretty, plain, json, jsonl, yaml")
	rootCmd.Flags().String("out", "", "recovery directory (default: RECOVERED)")
	rootCmd.Flags().Bool("no-copy", false, "list candidates without copying")
	rootCmd.Flags().BoolP("interactive", "i", false, "pick candidates in an interactive TUI")

	// Bind flags to viper
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("since", rootCmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("today", rootCmd.Flags().Lookup("today"))
	_ = viper.BindPFlag("limit", rootCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("raw", rootCmd.Flags().Lookup("raw"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output_dir", rootCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("no_copy", rootCmd.Flags().Lookup("no-copy"))
	_ = viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "salvage"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "salvage"))
		}
	}

	viper.SetEnvPrefix("SALVAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("output_dir", config.DefaultOutputDir)
	viper.SetDefault("header_bytes", config.DefaultHeaderBytes)
	viper.SetDefault("limit", config.DefaultLimit)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("format", config.DefaultFormat)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("runlog.enabled", true)
	viper.SetDefault("runlog.retention_days", config.DefaultRunlogRetentionDays)
	viper.SetDefault("logging.level", "info")

	_ = viper.ReadInConfig()
}

// initLogging initializes file logging from the loaded configuration.
// Console logging stays off; the listing is the console's deliverable.
func initLogging() error {
	level := viper.GetString("logging.level")
	if getVerbose() {
		level = "debug"
	}

	return logging.Init(logging.Config{
		Level:      level,
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
	})
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
