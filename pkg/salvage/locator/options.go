// Package locator implements the history candidate locator: it scans one or
// more editor local-history roots, evaluates every snapshot entry against a
// selector, and produces a ranked list of recovery candidates. Failure
// isolation is per-item; no single bad folder or blob aborts a scan.
package locator

import (
	"github.com/tkrisch/salvage/pkg/salvage/cache"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
)

// DefaultHeaderBytes is the size of the blob header window read when a
// content-signature clause is active.
const DefaultHeaderBytes = 1000

// Progress reports real-time scan progress.
type Progress struct {
	// RootsScanned is the number of existing roots processed so far.
	RootsScanned int `json:"roots_scanned"`

	// FoldersScanned is the number of tracked-file folders processed so far.
	FoldersScanned int `json:"folders_scanned"`

	// EntriesExamined is the number of snapshot entries evaluated so far.
	EntriesExamined int `json:"entries_examined"`

	// Matched is the number of candidates accepted so far.
	Matched int `json:"matched"`

	// CurrentPath is the folder or file currently being examined.
	CurrentPath string `json:"current_path"`
}

// Options configures the locator.
type Options struct {
	// Roots is the ordered list of history roots to scan.
	// Nonexistent roots are skipped, not errors.
	Roots []string

	// Selector holds the active selection clauses. Nil selects everything.
	Selector *selector.Selector

	// HeaderBytes is how much of each blob to read for content-signature
	// matching. Values <= 0 use DefaultHeaderBytes.
	HeaderBytes int

	// Raw walks each root recursively and treats every non-manifest file
	// as a candidate with its mtime as timestamp, instead of going through
	// manifests. Used when manifests are suspect or blobs are orphaned.
	Raw bool

	// Cache is an optional manifest cache. Nil disables caching.
	Cache *cache.Cache

	// OnProgress is called periodically with scan progress updates.
	OnProgress func(Progress)
}

// Validate applies defaults for unset values.
func (o *Options) Validate() error {
	if o.Selector == nil {
		o.Selector = selector.New()
	}
	if o.HeaderBytes <= 0 {
		o.HeaderBytes = DefaultHeaderBytes
	}
	return nil
}

// skip reason constants recorded in types.SkipReason.
const (
	SkipMissingRoot = "missing-root"
	SkipReadRoot    = "read-root"
	SkipBadManifest = "bad-manifest"
	SkipMissingBlob = "missing-blob"
	SkipRead        = "read"
	SkipStat        = "stat"
	SkipCache       = "cache"
)
