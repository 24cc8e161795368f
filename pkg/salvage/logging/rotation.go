package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RotationConfig bounds how much log history a writer keeps on disk.
type RotationConfig struct {
	// MaxSize in bytes before the current file is rotated out.
	// Zero falls back to 10MB.
	MaxSize int64

	// MaxAge in days; rotated files older than this are pruned.
	// Zero disables age pruning.
	MaxAge int

	// MaxBackups caps how many rotated files survive a prune.
	// Zero keeps them all, subject to MaxAge.
	MaxBackups int

	// Daily also rotates on the first write after local midnight.
	Daily bool
}

// DefaultRotationConfig returns the rotation policy used when the config
// file does not set one.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser that rotates its file by size and
// day boundary. Safe for concurrent writers within one process; salvage
// never shares a log file across processes.
type RotatingWriter struct {
	path       string
	cfg        RotationConfig
	mu         sync.Mutex
	file       *os.File
	size       int64
	lastRotate time.Time
}

// NewRotatingWriter opens (or creates) the log file at path, creating
// missing parent directories, and prunes stale rotated files.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, lastRotate: time.Now()}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	w.cleanup()

	return w, nil
}

// Write appends p, rotating first when the write would breach the policy.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close flushes and closes the current file. Further writes panic.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("syncing log file: %w", err)
	}

	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) openFile() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	// Resuming an existing file keeps its size and age so the next write
	// still rotates at the right boundary.
	w.file = file
	w.size = info.Size()
	w.lastRotate = info.ModTime()

	return nil
}

// due reports whether writing n more bytes requires a rotation first.
func (w *RotatingWriter) due(n int64) bool {
	if w.size+n > w.cfg.MaxSize {
		return true
	}
	if !w.cfg.Daily {
		return false
	}
	now := time.Now()
	return now.YearDay() != w.lastRotate.YearDay() || now.Year() != w.lastRotate.Year()
}

// rotate renames the current file to <base>.<timestamp><ext> and starts a
// fresh one at the original path.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("closing current file: %w", err)
		}
		w.file = nil
	}

	ext := filepath.Ext(w.path)
	stem := strings.TrimSuffix(w.path, ext)
	aside := fmt.Sprintf("%s.%s%s", stem, time.Now().Format("2006-01-02-150405"), ext)

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, aside); err != nil {
			return fmt.Errorf("renaming log file: %w", err)
		}
	}

	if err := w.openFile(); err != nil {
		return err
	}

	w.lastRotate = time.Now()
	w.cleanup()

	return nil
}

// cleanup prunes rotated files past MaxBackups or MaxAge. The embedded
// timestamps sort lexically, so newest-first is a plain name sort. Prune
// failures are ignored; a leftover file costs disk, not correctness.
func (w *RotatingWriter) cleanup() {
	dir := filepath.Dir(w.path)
	live := filepath.Base(w.path)
	ext := filepath.Ext(live)
	stem := strings.TrimSuffix(live, ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var rotated []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == live {
			continue
		}
		if strings.HasPrefix(name, stem+".") && strings.HasSuffix(name, ext) {
			rotated = append(rotated, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(rotated)))

	maxAge := time.Duration(w.cfg.MaxAge) * 24 * time.Hour
	for i, name := range rotated {
		path := filepath.Join(dir, name)

		if w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups {
			_ = os.Remove(path)
			continue
		}
		if w.cfg.MaxAge > 0 {
			if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) > maxAge {
				_ = os.Remove(path)
			}
		}
	}
}
