package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkrisch/salvage/pkg/salvage/config"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

// loadDefaults seeds viper the way a real invocation does, pointed at an
// empty config dir so the user's real config file stays out of the test.
func loadDefaults(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	initConfig()
}

func TestBuildSelector(t *testing.T) {
	t.Run("bare viper is inactive and unlimited", func(t *testing.T) {
		resetViper(t)

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.False(t, sel.Active())
		assert.Zero(t, sel.Limit)
	})

	t.Run("config defaults", func(t *testing.T) {
		resetViper(t)
		loadDefaults(t)

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.Equal(t, config.DefaultLimit, sel.Limit)
		assert.Equal(t, config.DefaultExclusions, sel.Exclude)
	})

	t.Run("explicit zero limit copies all", func(t *testing.T) {
		resetViper(t)
		loadDefaults(t)
		viper.Set("limit", 0)

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.Zero(t, sel.Limit)
	})

	t.Run("negative limit clamps to unlimited", func(t *testing.T) {
		resetViper(t)
		viper.Set("limit", -3)

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.Zero(t, sel.Limit)
	})

	t.Run("full criteria", func(t *testing.T) {
		resetViper(t)
		viper.Set("name", "records")
		viper.Set("min_size", "550000")
		viper.Set("max_size", "650000")
		viper.Set("marker", []string{"import", "React"})
		viper.Set("exclude", []string{"*.lock"})
		viper.Set("limit", 10)

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.Equal(t, "records", sel.NameContains)
		assert.Equal(t, int64(550_000), sel.MinSize)
		assert.Equal(t, int64(650_000), sel.MaxSize)
		assert.Equal(t, []string{"import", "React"}, sel.Markers)
		assert.Equal(t, []string{"*.lock"}, sel.Exclude)
		assert.Equal(t, 10, sel.Limit)
	})

	t.Run("invalid min size", func(t *testing.T) {
		resetViper(t)
		viper.Set("min_size", "notasize")

		_, err := buildSelector()
		assert.Error(t, err)
	})

	t.Run("inverted size window", func(t *testing.T) {
		resetViper(t)
		viper.Set("min_size", "1M")
		viper.Set("max_size", "100K")

		_, err := buildSelector()
		assert.Error(t, err)
	})

	t.Run("since sets cutoff", func(t *testing.T) {
		resetViper(t)
		viper.Set("since", "2d")

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(-48*time.Hour), sel.ModifiedAfter, time.Minute)
	})

	t.Run("invalid since", func(t *testing.T) {
		resetViper(t)
		viper.Set("since", "2x")

		_, err := buildSelector()
		assert.Error(t, err)
	})

	t.Run("today and since take the later cutoff", func(t *testing.T) {
		resetViper(t)
		viper.Set("today", true)
		viper.Set("since", "30d")

		sel, err := buildSelector()
		require.NoError(t, err)

		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		assert.Equal(t, startOfDay, sel.ModifiedAfter)
	})

	t.Run("tight since beats today", func(t *testing.T) {
		resetViper(t)
		viper.Set("today", true)
		viper.Set("since", "5m")

		sel, err := buildSelector()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(-5*time.Minute), sel.ModifiedAfter, time.Minute)
	})
}

// The scan path reads the global viper seeded by initConfig, while config
// show goes through config.Load. With no config file the two must agree,
// or the listing applies different settings than the operator was shown.
func TestInitConfigMatchesLoader(t *testing.T) {
	resetViper(t)
	loadDefaults(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Exclude, viper.GetStringSlice("exclude"))
	assert.Equal(t, cfg.Limit, viper.GetInt("limit"))
	assert.Equal(t, cfg.OutputDir, viper.GetString("output_dir"))
	assert.Equal(t, cfg.HeaderBytes, viper.GetInt("header_bytes"))
	assert.Equal(t, cfg.Format, viper.GetString("format"))
}

func TestBuildCriteria(t *testing.T) {
	resetViper(t)
	viper.Set("name", "records")
	viper.Set("min_size", "1000")
	viper.Set("marker", []string{"import"})

	sel, err := buildSelector()
	require.NoError(t, err)

	criteria := buildCriteria(sel, true)
	assert.Equal(t, "records", criteria.NameContains)
	assert.Equal(t, int64(1000), criteria.MinSize)
	assert.Equal(t, []string{"import"}, criteria.Markers)
	assert.True(t, criteria.Raw)
	assert.Empty(t, criteria.ModifiedAfter)
}
