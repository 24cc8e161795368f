package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tkrisch/salvage/pkg/salvage/runlog"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// buildSelector creates a selector.Selector from the CLI flags.
func buildSelector() (*selector.Selector, error) {
	var opts []selector.Option

	if name := viper.GetString("name"); name != "" {
		opts = append(opts, selector.WithNameContains(name))
	}

	var minSize, maxSize int64
	if s := viper.GetString("min_size"); s != "" {
		v, err := types.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", s, err)
		}
		minSize = v
	}
	if s := viper.GetString("max_size"); s != "" {
		v, err := types.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid max-size %q: %w", s, err)
		}
		maxSize = v
	}
	if minSize > 0 || maxSize > 0 {
		if maxSize > 0 && minSize >= maxSize {
			return nil, fmt.Errorf("min-size %d must be below max-size %d", minSize, maxSize)
		}
		opts = append(opts, selector.WithSizeRange(minSize, maxSize))
	}

	if markers := viper.GetStringSlice("marker"); len(markers) > 0 {
		opts = append(opts, selector.WithMarkers(markers...))
	}

	// --today and --since combine by taking the later cutoff, so the
	// tighter of the two windows wins.
	var cutoff time.Time
	if viper.GetBool("today") {
		now := time.Now()
		cutoff = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	if s := viper.GetString("since"); s != "" {
		d, err := selector.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid since %q: %w", s, err)
		}
		if since := time.Now().Add(-d); since.After(cutoff) {
			cutoff = since
		}
	}
	if !cutoff.IsZero() {
		opts = append(opts, selector.WithModifiedAfter(cutoff))
	}

	if exclude := viper.GetStringSlice("exclude"); len(exclude) > 0 {
		opts = append(opts, selector.WithExclude(exclude...))
	}

	// An explicit zero copies every match. The usual cap of 25 is a viper
	// default, so it only applies when neither flag nor config set one.
	limit := viper.GetInt("limit")
	if limit < 0 {
		limit = 0
	}
	opts = append(opts, selector.WithLimit(limit))

	return selector.New(opts...), nil
}

// buildCriteria summarizes the active selector for the run journal.
func buildCriteria(sel *selector.Selector, raw bool) runlog.Criteria {
	c := runlog.Criteria{
		NameContains: sel.NameContains,
		MinSize:      sel.MinSize,
		MaxSize:      sel.MaxSize,
		Markers:      sel.Markers,
		Raw:          raw,
		Limit:        sel.Limit,
	}
	if !sel.ModifiedAfter.IsZero() {
		c.ModifiedAfter = sel.ModifiedAfter.Format("2006-01-02 15:04:05")
	}
	return c
}
