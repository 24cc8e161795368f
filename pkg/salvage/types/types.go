// Package types provides core data types for the salvage history recovery tool.
// It includes the candidate and scan-result structures shared by the locator,
// selector, and output layers, along with size parsing and formatting helpers.
package types

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// Candidate is one snapshot entry that is eligible for recovery.
// Candidates are derived from disk state on every scan and never mutated.
type Candidate struct {
	// Timestamp is the snapshot time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`

	// Resource is the original file's location identifier, typically a URI.
	Resource string `json:"resource"`

	// BlobPath is the absolute path of the snapshot blob on disk.
	BlobPath string `json:"blob_path"`

	// Size is the blob size in bytes.
	Size int64 `json:"size"`

	// Folder is the tracked-file folder the entry came from.
	Folder string `json:"folder"`

	// Root is the history root the entry was found under.
	Root string `json:"root"`

	// FromManifest is false for candidates found by a raw walk,
	// where the timestamp is the blob's mtime rather than a manifest entry.
	FromManifest bool `json:"from_manifest"`
}

// Time returns the candidate's timestamp as a time.Time in the local zone.
func (c *Candidate) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Basename returns the base name of the original resource.
// For URI resources the path component is used, so
// "file:///c%3A/work/Records.tsx" and "/work/Records.tsx" both
// yield "Records.tsx".
func (c *Candidate) Basename() string {
	res := c.Resource
	if i := strings.Index(res, "://"); i >= 0 {
		res = res[i+3:]
	}
	if unescaped, err := unescapePath(res); err == nil {
		res = unescaped
	}
	res = strings.ReplaceAll(res, "\\", "/")
	return path.Base(res)
}

// HumanSize returns the candidate size formatted with IEC units.
func (c *Candidate) HumanSize() string {
	return FormatSize(c.Size)
}

// SkipReason records one per-item failure that was isolated instead of
// aborting the scan. The locator collects these so that skip causes
// stay inspectable without turning into errors.
type SkipReason struct {
	// Path is the root, folder, or blob the failure applies to.
	Path string `json:"path"`

	// Reason is a short machine-friendly cause ("missing-root",
	// "bad-manifest", "missing-blob", "stat", "read").
	Reason string `json:"reason"`

	// Err is the underlying error message, if any.
	Err string `json:"error,omitempty"`
}

// LocateResult contains the outcome of one locator scan.
type LocateResult struct {
	// Candidates are all entries that satisfied every active selector
	// clause, ordered timestamp-descending.
	Candidates []Candidate `json:"candidates"`

	// RootsScanned is the number of history roots that existed and were read.
	RootsScanned int `json:"roots_scanned"`

	// FoldersScanned is the number of tracked-file folders examined.
	FoldersScanned int `json:"folders_scanned"`

	// EntriesExamined is the total number of snapshot entries evaluated.
	EntriesExamined int `json:"entries_examined"`

	// Skips records every per-item failure that was isolated.
	Skips []SkipReason `json:"skips,omitempty"`

	// CacheHits counts folders served from the manifest cache.
	CacheHits int `json:"cache_hits"`

	// Elapsed is the total scan duration.
	Elapsed time.Duration `json:"elapsed"`
}

// TotalSize returns the sum of all candidate sizes.
func (r *LocateResult) TotalSize() int64 {
	var total int64
	for i := range r.Candidates {
		total += r.Candidates[i].Size
	}
	return total
}

// sizePattern matches size strings like "100K", "2M", "550000", "1.5MiB".
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMG]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// Plain byte counts ("599252"), suffixed values ("550K", "1.5M", "2GiB"),
// and decimal values are accepted. Decimal values are truncated to the
// nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, matching common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// FormatStamp renders an epoch-millisecond timestamp the way listing rows
// and output filenames use it: "MMDD_HHMMSS" in the local zone.
func FormatStamp(ms int64) string {
	return time.UnixMilli(ms).Format("0102_150405")
}

// unescapePath decodes %XX escapes in a URI path component.
// Invalid escapes leave the input unchanged rather than failing the caller.
func unescapePath(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}
