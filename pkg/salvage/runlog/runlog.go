package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tkrisch/salvage/pkg/salvage/restore"
)

// Log manages run journaling to the filesystem: one JSON file per run.
type Log struct {
	dir string
	mu  sync.Mutex
}

// New creates a Log with the given directory.
// The directory is not created until the first Record call.
func New(dir string) (*Log, error) {
	if dir == "" {
		return nil, errors.New("runlog directory cannot be empty")
	}
	return &Log{dir: dir}, nil
}

// Record journals one completed recovery run and returns the created entry.
func (l *Log) Record(outputDir string, criteria Criteria, matched int, copies []restore.CopyRecord) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()

	var totalBytes int64
	for _, c := range copies {
		totalBytes += c.Size
	}

	entry := &Entry{
		ID:        generateID(now),
		Timestamp: now,
		OutputDir: outputDir,
		Criteria:  criteria,
		Copies:    copies,
		Summary: Summary{
			Matched:    matched,
			Copied:     len(copies),
			TotalBytes: totalBytes,
		},
	}

	if err := l.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write run entry: %w", err)
	}

	return entry, nil
}

// writeEntry writes an entry atomically using a temp file and rename.
func (l *Log) writeEntry(entry *Entry) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}

	filePath := filepath.Join(l.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned. A missing runlog
// directory simply yields an empty list.
func (l *Log) List(limit int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read runlog directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := l.readEntry(filepath.Join(l.dir, f.Name()))
		if err != nil {
			continue // skip unreadable entries
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns a single entry by ID.
func (l *Log) Get(id string) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.readEntry(filepath.Join(l.dir, id+".json"))
}

// Prune removes entries older than the retention period.
// It returns the number of entries removed.
func (l *Log) Prune(retention time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(l.dir, f.Name())
		entry, err := l.readEntry(path)
		if err != nil {
			continue
		}
		if entry.Timestamp.Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// readEntry loads one entry file.
func (l *Log) readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse run entry %s: %w", filepath.Base(path), err)
	}
	return &entry, nil
}

// generateID builds a sortable, unique entry ID: timestamp plus a short
// uuid suffix so concurrent runs in the same second stay distinct.
func generateID(t time.Time) string {
	return fmt.Sprintf("run-%s-%s", t.Format("20060102-150405"), uuid.NewString()[:8])
}
