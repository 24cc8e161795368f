package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/history"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the manifest cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RunlogConfig configures the run journal.
type RunlogConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Dir           string `mapstructure:"dir"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Roots       []string      `mapstructure:"roots"`
	OutputDir   string        `mapstructure:"output_dir"`
	HeaderBytes int           `mapstructure:"header_bytes"`
	Limit       int           `mapstructure:"limit"`
	Format      string        `mapstructure:"format"`
	Exclude     []string      `mapstructure:"exclude"`
	Cache       CacheConfig   `mapstructure:"cache"`
	Runlog      RunlogConfig  `mapstructure:"runlog"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/salvage/config.yaml
//   - $HOME/.config/salvage/config.yaml
//
// Environment variables are prefixed with SALVAGE_ (e.g., SALVAGE_OUTPUT_DIR).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "salvage"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "salvage"))

	v.SetEnvPrefix("SALVAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Empty roots means use the per-platform editor defaults at runtime;
	// we keep the resolved list out of the config so a config file written
	// on one machine stays valid on another.
	v.SetDefault("roots", []string{})
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("header_bytes", DefaultHeaderBytes)
	v.SetDefault("limit", DefaultLimit)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("exclude", DefaultExclusions)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means DefaultCachePath

	v.SetDefault("runlog.enabled", true)
	v.SetDefault("runlog.dir", "") // Empty means DefaultRunlogDir
	v.SetDefault("runlog.retention_days", DefaultRunlogRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"locator": "info",
		"restore": "info",
		"watcher": "warn",
		"cache":   "warn",
	})

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i, root := range cfg.Roots {
		expanded, err := ExpandPath(root)
		if err != nil {
			return nil, err
		}
		cfg.Roots[i] = expanded
	}
	if strings.HasPrefix(cfg.OutputDir, "~") {
		cfg.OutputDir = filepath.Join(homeDir, cfg.OutputDir[1:])
	}

	return &cfg, nil
}

// ResolveRoots returns the configured history roots, falling back to the
// per-platform editor defaults when none are configured.
func (c *Config) ResolveRoots() []string {
	if len(c.Roots) > 0 {
		return c.Roots
	}
	return history.DefaultRoots()
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "salvage"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "salvage"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Salvage Recovery Tool Configuration

# Editor history roots to scan. Empty means auto-detect the standard
# VS Code / Cursor / VSCodium locations for this platform.
roots: []

# Directory recovered files are copied into.
output_dir: %s

# How many bytes of each snapshot are read when content markers are checked.
header_bytes: %d

# Maximum number of candidates copied per run. 0 copies every match.
limit: %d

# Default output format: pretty, plain, json, jsonl, yaml
format: %s

# Snapshot basename patterns to skip.
exclude:
  - "*.lock"
  - "*.tmp"
  - ".DS_Store"

# Manifest cache settings.
cache:
  enabled: true
  # Cache database path (empty means use default: $XDG_CACHE_HOME/salvage/manifests)
  path: ""

# Run journal settings.
runlog:
  enabled: true
  # Journal directory (empty means use default: $XDG_DATA_HOME/salvage/runs)
  dir: ""
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/salvage/salvage.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    locator: info
    restore: info
    watcher: warn
    cache: warn
`, DefaultOutputDir, DefaultHeaderBytes, DefaultLimit, DefaultFormat, DefaultRunlogRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/salvage/ for the run journal.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "salvage")
}

// StateDir returns $XDG_STATE_HOME/salvage/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "salvage")
}

// CacheDir returns $XDG_CACHE_HOME/salvage/ for the manifest cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "salvage")
}

// DefaultCachePath returns the default manifest cache database path.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "manifests")
}

// DefaultRunlogDir returns the default run journal directory.
func DefaultRunlogDir() string {
	return filepath.Join(DataDir(), "runs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "salvage.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
