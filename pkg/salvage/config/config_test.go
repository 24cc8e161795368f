package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Roots)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultHeaderBytes, cfg.HeaderBytes)
	assert.Equal(t, DefaultLimit, cfg.Limit)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultExclusions, cfg.Exclude)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Runlog.Enabled)
	assert.Equal(t, DefaultRunlogRetentionDays, cfg.Runlog.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["watcher"])
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "salvage")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	yaml := `
roots:
  - /custom/History
output_dir: SAVED
limit: 5
format: json
cache:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"/custom/History"}, cfg.Roots)
	assert.Equal(t, "SAVED", cfg.OutputDir)
	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, "json", cfg.Format)
	assert.False(t, cfg.Cache.Enabled)
	// Unset keys still get defaults.
	assert.Equal(t, DefaultHeaderBytes, cfg.HeaderBytes)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SALVAGE_OUTPUT_DIR", "/tmp/env-out")
	t.Setenv("SALVAGE_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-out", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Limit)
}

func TestResolveRoots(t *testing.T) {
	explicit := &Config{Roots: []string{"/a", "/b"}}
	assert.Equal(t, []string{"/a", "/b"}, explicit.ResolveRoots())

	// No configured roots falls back to the editor defaults, which all
	// end in User/History.
	implicit := &Config{}
	for _, root := range implicit.ResolveRoots() {
		assert.Equal(t, "History", filepath.Base(root))
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{"~/RECOVERED", filepath.Join(home, "RECOVERED")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := ExpandPath(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestWriteDefault(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	require.NoError(t, WriteDefault())

	path := filepath.Join(configHome, "salvage", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "output_dir")

	// The written defaults parse back cleanly.
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
}
