// Package restore materializes selected candidates into a recovery output
// directory. Copies are binary-safe and written under names that embed the
// snapshot timestamp and size, so re-runs and same-named originals from
// different source folders never overwrite one another.
package restore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tkrisch/salvage/pkg/salvage/logging"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Materializer copies ranked candidates into the output directory.
type Materializer struct {
	// OutputDir is the recovery destination. Created if absent, reused if
	// present, never cleared.
	OutputDir string

	// Limit caps how many candidates are copied. 0 copies all.
	Limit int

	// Prefix is prepended to every output filename, e.g. "REV_".
	Prefix string
}

// CopyRecord describes one materialized candidate.
type CopyRecord struct {
	// Source is the blob that was copied.
	Source string `json:"source"`

	// Dest is the path written under the output directory.
	Dest string `json:"dest"`

	// Size is the number of bytes copied.
	Size int64 `json:"size"`

	// Timestamp is the candidate's snapshot time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Resource is the candidate's original location identifier.
	Resource string `json:"resource"`
}

// EnsureDir creates the output directory idempotently. This is the one
// environment failure that aborts a run: without the directory there is
// no deliverable.
func (m *Materializer) EnsureDir() error {
	if m.OutputDir == "" {
		return fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(m.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", m.OutputDir, err)
	}
	return nil
}

// Copy materializes at most Limit candidates from an already-ranked slice,
// so the copies are the ones with the largest timestamps. Per-candidate
// copy failures are isolated: the failed candidate is skipped and the rest
// still copy.
func (m *Materializer) Copy(candidates []types.Candidate) ([]CopyRecord, []types.SkipReason, error) {
	if err := m.EnsureDir(); err != nil {
		return nil, nil, err
	}

	log := logging.Get("restore")
	picked := selector.Top(candidates, m.Limit)

	records := make([]CopyRecord, 0, len(picked))
	var skips []types.SkipReason

	for i := range picked {
		c := &picked[i]
		dest, err := m.copyOne(c)
		if err != nil {
			skips = append(skips, types.SkipReason{
				Path:   c.BlobPath,
				Reason: "copy",
				Err:    err.Error(),
			})
			log.Warn("copy failed", "blob", c.BlobPath, "error", err)
			continue
		}

		records = append(records, CopyRecord{
			Source:    c.BlobPath,
			Dest:      dest,
			Size:      c.Size,
			Timestamp: c.Timestamp,
			Resource:  c.Resource,
		})
		log.Debug("copied", "dest", dest, "bytes", c.Size)
	}

	return records, skips, nil
}

// copyOne copies a single blob byte-for-byte to a collision-free name.
func (m *Materializer) copyOne(c *types.Candidate) (string, error) {
	dest := m.destPath(c)

	src, err := os.Open(c.BlobPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	// O_EXCL so an existing copy is never overwritten; on collision a
	// counter is appended and the create retried.
	var out *os.File
	for n := 0; ; n++ {
		name := dest
		if n > 0 {
			name = fmt.Sprintf("%s~%d", dest, n)
		}
		out, err = os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			dest = name
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return "", err
	}

	// Carry the snapshot time onto the copy so directory listings sort
	// the same way the candidate listing does.
	ts := time.UnixMilli(c.Timestamp)
	_ = os.Chtimes(dest, ts, ts)

	return dest, nil
}

// destPath builds the output name: <prefix><MMDD_HHMMSS>_<size>_<basename>.
// Timestamp plus size keeps copies of same-named originals from distinct
// snapshots apart.
func (m *Materializer) destPath(c *types.Candidate) string {
	name := fmt.Sprintf("%s%s_%d_%s", m.Prefix, types.FormatStamp(c.Timestamp), c.Size, c.Basename())
	return filepath.Join(m.OutputDir, name)
}
