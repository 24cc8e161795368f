// Package runlog journals recovery runs so past copies stay auditable.
package runlog

import (
	"time"

	"github.com/tkrisch/salvage/pkg/salvage/restore"
)

// Entry records one recovery run that materialized files.
type Entry struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	OutputDir string               `json:"output_dir"`
	Criteria  Criteria             `json:"criteria"`
	Copies    []restore.CopyRecord `json:"copies"`
	Summary   Summary              `json:"summary"`
}

// Criteria summarizes the selector clauses that were active for the run.
type Criteria struct {
	NameContains  string   `json:"name_contains,omitempty"`
	MinSize       int64    `json:"min_size,omitempty"`
	MaxSize       int64    `json:"max_size,omitempty"`
	Markers       []string `json:"markers,omitempty"`
	ModifiedAfter string   `json:"modified_after,omitempty"`
	Raw           bool     `json:"raw,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// Summary contains run totals.
type Summary struct {
	Matched    int   `json:"matched"`
	Copied     int   `json:"copied"`
	TotalBytes int64 `json:"total_bytes"`
}
