// Package config provides configuration management for the salvage recovery tool.
package config

// Default configuration values for salvage.
const (
	// DefaultOutputDir is the directory recovered files are copied into,
	// relative to the working directory unless an absolute path is given.
	DefaultOutputDir = "RECOVERED"

	// DefaultHeaderBytes is how much of each blob is read when content
	// markers are checked.
	DefaultHeaderBytes = 1000

	// DefaultLimit is the maximum number of candidates copied per run.
	DefaultLimit = 25

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/salvage"

	// DefaultRunlogRetentionDays is how long run journal entries are kept.
	DefaultRunlogRetentionDays = 30

	// DefaultFormat is the output format used when none is specified.
	DefaultFormat = "pretty"
)

// DefaultExclusions contains snapshot basename patterns skipped by default.
// Editors keep history for scratch and lock files that are never worth
// recovering.
var DefaultExclusions = []string{
	"*.lock",
	"*.tmp",
	".DS_Store",
}
