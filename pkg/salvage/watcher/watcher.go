// Package watcher provides filesystem watching of editor history roots,
// reporting new snapshots as they are written.
package watcher

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tkrisch/salvage/pkg/salvage/history"
	"github.com/tkrisch/salvage/pkg/salvage/logging"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Watcher watches history roots for new snapshot entries. Editors write the
// blob first and then rewrite entries.json, so manifest writes are the signal
// that a snapshot is complete.
type Watcher struct {
	watcher     *fsnotify.Watcher
	sel         *selector.Selector
	headerBytes int
	roots       []string
	paths       map[string]bool
	seen        map[string]bool
	mu          sync.Mutex
	closed      bool
}

// New creates a new Watcher that reports snapshots matching sel.
func New(sel *selector.Selector, headerBytes int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fsw,
		sel:         sel,
		headerBytes: headerBytes,
		paths:       make(map[string]bool),
		seen:        make(map[string]bool),
	}, nil
}

// Watch starts watching a history root and every tracked folder under it.
// History roots are one level deep: the root holds per-file folders, each
// holding a manifest and its blobs, so no recursive walk is needed.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	if err := w.addWatch(absRoot); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots = append(w.roots, absRoot)
	w.mu.Unlock()

	folders, _, err := history.TrackedFolders(absRoot)
	if err != nil {
		return err
	}
	for _, folder := range folders {
		_ = w.addWatch(folder)
	}
	return nil
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watcher").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
// The onMatch callback is called for each new snapshot that matches the
// selector.
func (w *Watcher) Run(ctx context.Context, onMatch func(types.Candidate)) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, onMatch)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watcher").Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event, onMatch func(types.Candidate)) {
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name, onMatch)
	case event.Op&fsnotify.Write != 0:
		if filepath.Base(event.Name) == history.ManifestName {
			w.evaluateFolder(filepath.Dir(event.Name), onMatch)
		}
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.handleRemove(event.Name)
	}
}

// handleCreate handles creation events. A new directory under a root is a
// freshly tracked file and gets its own watch; a new entries.json means the
// folder has its first snapshot.
func (w *Watcher) handleCreate(path string, onMatch func(types.Candidate)) {
	info, err := os.Lstat(path)
	if err != nil {
		return // Gone already
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}

	if info.IsDir() {
		if w.rootOf(path) != "" {
			_ = w.addWatch(path)
			// Anything written into the folder before the watch took
			// effect produced no events; evaluate once to catch up.
			w.evaluateFolder(path, onMatch)
		}
		return
	}

	if filepath.Base(path) == history.ManifestName {
		w.evaluateFolder(filepath.Dir(path), onMatch)
	}
}

// handleRemove drops the watch for a deleted folder.
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}
}

// evaluateFolder re-reads a folder's manifest and reports any new matching
// snapshots.
func (w *Watcher) evaluateFolder(folder string, onMatch func(types.Candidate)) {
	root := w.rootOf(folder)
	if root == "" {
		return
	}

	manifest, snapshots, _, err := history.ReadFolder(folder)
	if err != nil {
		logging.Get("watcher").Debug("skipping folder", "folder", folder, "error", err)
		return
	}

	for _, snap := range snapshots {
		c := types.Candidate{
			Timestamp:    snap.Entry.Timestamp,
			Resource:     manifest.Resource,
			BlobPath:     snap.BlobPath,
			Size:         snap.Size,
			Folder:       folder,
			Root:         root,
			FromManifest: true,
		}

		w.mu.Lock()
		dup := w.seen[c.BlobPath]
		if !dup {
			w.seen[c.BlobPath] = true
		}
		w.mu.Unlock()
		if dup {
			continue
		}

		if !w.sel.MatchMeta(c) {
			continue
		}
		var header []byte
		if w.sel.NeedsContent() {
			header, err = readHeader(c.BlobPath, w.headerBytes)
			if err != nil {
				continue
			}
		}
		if !w.sel.Match(c, header) {
			continue
		}

		if onMatch != nil {
			onMatch(c)
		}
	}
}

// rootOf returns the watched root containing path, or "".
func (w *Watcher) rootOf(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if path == root || isSubPath(path, root) {
			return root
		}
	}
	return ""
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// readHeader reads up to n bytes from the start of a blob, tolerating
// arbitrary binary content.
func readHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return []byte(strings.ToValidUTF8(string(buf[:read]), "")), nil
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
