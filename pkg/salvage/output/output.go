// Package output provides formatters for displaying candidate listings in
// various output formats (pretty, plain, json, jsonl, yaml). The listing is
// the tool's primary deliverable: a human reads it to pick the right
// recovered version among near-duplicates.
//
// The package uses a registry pattern so formatter implementations can be
// selected at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, listing); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Row is one candidate prepared for display, with human-readable fields
// precomputed so every formatter renders the same values.
type Row struct {
	// Stamp is the snapshot time formatted for listing ("MMDD_HHMMSS").
	Stamp string `json:"stamp"`

	// Time is the snapshot time.
	Time time.Time `json:"time"`

	// Size is the blob size in bytes.
	Size int64 `json:"size"`

	// SizeHuman is the human-readable size (e.g. "585 KiB").
	SizeHuman string `json:"size_human"`

	// Basename is the original file's base name.
	Basename string `json:"basename"`

	// Resource is the original location identifier.
	Resource string `json:"resource"`

	// BlobPath is the snapshot blob on disk.
	BlobPath string `json:"blob_path"`

	// FromManifest is false for raw-walk candidates.
	FromManifest bool `json:"from_manifest"`
}

// ScanStats carries scan totals into the listing footer.
type ScanStats struct {
	RootsScanned    int           `json:"roots_scanned"`
	FoldersScanned  int           `json:"folders_scanned"`
	EntriesExamined int           `json:"entries_examined"`
	Skipped         int           `json:"skipped"`
	CacheHits       int           `json:"cache_hits"`
	Duration        time.Duration `json:"duration"`
}

// Listing contains the complete output data for formatting.
type Listing struct {
	// Rows are the matched candidates, most recent first.
	Rows []Row `json:"rows"`

	// Stats contains scan statistics.
	Stats ScanStats `json:"stats"`

	// Roots are the history roots that were requested.
	Roots []string `json:"roots"`

	// OutputDir is the recovery directory, when copying was enabled.
	OutputDir string `json:"output_dir,omitempty"`

	// Copied is how many candidates were materialized.
	Copied int `json:"copied"`

	// Interrupted indicates the scan was cancelled before completion.
	Interrupted bool `json:"interrupted"`
}

// NewListing converts a locate result into display rows.
func NewListing(result *types.LocateResult, roots []string) *Listing {
	rows := make([]Row, len(result.Candidates))
	for i := range result.Candidates {
		c := &result.Candidates[i]
		rows[i] = Row{
			Stamp:        types.FormatStamp(c.Timestamp),
			Time:         c.Time(),
			Size:         c.Size,
			SizeHuman:    c.HumanSize(),
			Basename:     c.Basename(),
			Resource:     c.Resource,
			BlobPath:     c.BlobPath,
			FromManifest: c.FromManifest,
		}
	}

	return &Listing{
		Rows:  rows,
		Roots: roots,
		Stats: ScanStats{
			RootsScanned:    result.RootsScanned,
			FoldersScanned:  result.FoldersScanned,
			EntriesExamined: result.EntriesExamined,
			Skipped:         len(result.Skips),
			CacheHits:       result.CacheHits,
			Duration:        result.Elapsed,
		},
	}
}

// TotalSize returns the sum of all row sizes.
func (l *Listing) TotalSize() int64 {
	var total int64
	for i := range l.Rows {
		total += l.Rows[i].Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, l *Listing) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any
// existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
