package locator

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkrisch/salvage/pkg/salvage/cache"
	"github.com/tkrisch/salvage/pkg/salvage/history"
	"github.com/tkrisch/salvage/pkg/salvage/logging"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Locator scans history roots and produces ranked recovery candidates.
type Locator struct {
	opts Options

	candidates []types.Candidate
	skips      []types.SkipReason

	rootsScanned    int
	foldersScanned  int
	entriesExamined int
	cacheHits       int

	// pending collects manifest parses for a cache batch write per root.
	pending map[string]*cache.CachedFolder

	lastProgress time.Time
}

// New creates a Locator with the given options.
func New(opts Options) *Locator {
	_ = opts.Validate()
	return &Locator{opts: opts}
}

// Scan evaluates every snapshot entry under every existing root and returns
// the candidates satisfying all active selector clauses, ordered timestamp
// descending. Per-item failures are recorded as skips, never returned as
// errors. Cancellation returns ctx.Err() together with the partial result
// accumulated so far.
func (l *Locator) Scan(ctx context.Context) (*types.LocateResult, error) {
	start := time.Now()
	log := logging.Get("locator")

	for _, root := range l.opts.Roots {
		if err := ctx.Err(); err != nil {
			break
		}

		if l.opts.Raw {
			l.scanRaw(ctx, root)
			continue
		}
		l.scanRoot(ctx, root, log)
	}

	l.candidates = selector.Sort(l.candidates)
	l.reportProgress("", true)

	result := &types.LocateResult{
		Candidates:      l.candidates,
		RootsScanned:    l.rootsScanned,
		FoldersScanned:  l.foldersScanned,
		EntriesExamined: l.entriesExamined,
		Skips:           l.skips,
		CacheHits:       l.cacheHits,
		Elapsed:         time.Since(start),
	}

	log.Info("scan complete",
		"roots", l.rootsScanned,
		"folders", l.foldersScanned,
		"entries", l.entriesExamined,
		"matched", len(l.candidates),
		"skips", len(l.skips),
		"elapsed", result.Elapsed)

	return result, ctx.Err()
}

// scanRoot processes one history root in manifest mode.
func (l *Locator) scanRoot(ctx context.Context, root string, log *logging.Logger) {
	folders, exists, err := history.TrackedFolders(root)
	if !exists {
		l.addSkip(root, SkipMissingRoot, nil)
		log.Debug("root not found", "root", root)
		return
	}
	if err != nil {
		l.addSkip(root, SkipReadRoot, err)
		return
	}

	l.rootsScanned++
	log.Info("scanning root", "root", root, "folders", len(folders))

	if l.opts.Cache != nil {
		l.pending = make(map[string]*cache.CachedFolder)
	}

	for _, folder := range folders {
		if ctx.Err() != nil {
			break
		}
		l.scanFolder(root, folder)
	}

	l.flushPending(root)
}

// scanFolder evaluates every snapshot in one tracked-file folder.
func (l *Locator) scanFolder(root, folder string) {
	l.foldersScanned++
	l.reportProgress(folder, false)

	resource, snaps, ok := l.loadFolder(root, folder)
	if !ok {
		return
	}

	for _, snap := range snaps {
		l.entriesExamined++

		c := types.Candidate{
			Timestamp:    snap.Timestamp,
			Resource:     resource,
			BlobPath:     snap.BlobPath,
			Size:         snap.Size,
			Folder:       folder,
			Root:         root,
			FromManifest: true,
		}

		// Metadata clauses first so only plausible blobs are opened.
		if !l.opts.Selector.MatchMeta(c) {
			continue
		}

		var header []byte
		if l.opts.Selector.NeedsContent() {
			var err error
			header, err = l.readHeader(snap.BlobPath)
			if err != nil {
				l.addSkip(snap.BlobPath, SkipRead, err)
				continue
			}
		}

		if l.opts.Selector.Match(c, header) {
			l.candidates = append(l.candidates, c)
		}
	}
}

// loadFolder returns the folder's resource and live snapshots, consulting
// the cache first. A folder whose manifest fails to read or parse is
// recorded as a skip and excluded from the scan.
func (l *Locator) loadFolder(root, folder string) (string, []history.Snapshot, bool) {
	if resource, snaps, ok := l.loadFromCache(root, folder); ok {
		return resource, snaps, true
	}

	m, snaps, missing, err := history.ReadFolder(folder)
	if err != nil {
		reason := SkipRead
		if errors.Is(err, history.ErrBadManifest) {
			reason = SkipBadManifest
		}
		l.addSkip(folder, reason, err)
		return "", nil, false
	}
	if missing > 0 {
		l.addSkip(folder, SkipMissingBlob, nil)
	}

	l.remember(root, folder, m)
	return m.Resource, snaps, true
}

// loadFromCache serves a folder from the manifest cache when its manifest
// mtime is unchanged. Blob existence and size are always re-checked.
func (l *Locator) loadFromCache(root, folder string) (string, []history.Snapshot, bool) {
	if l.opts.Cache == nil {
		return "", nil, false
	}

	info, err := os.Stat(filepath.Join(folder, history.ManifestName))
	if err != nil {
		return "", nil, false
	}

	cached, err := l.opts.Cache.Get(root, folder)
	if err != nil || cached.ManifestMtime != info.ModTime().UnixNano() {
		return "", nil, false
	}

	snaps := make([]history.Snapshot, 0, len(cached.IDs))
	for i, id := range cached.IDs {
		blobPath := filepath.Join(folder, id)
		blobInfo, err := os.Stat(blobPath)
		if err != nil || blobInfo.IsDir() {
			continue
		}
		snaps = append(snaps, history.Snapshot{
			Entry:    history.Entry{ID: id, Timestamp: cached.Timestamps[i]},
			BlobPath: blobPath,
			Size:     blobInfo.Size(),
		})
	}

	l.cacheHits++
	return cached.Resource, snaps, true
}

// remember queues a freshly parsed manifest for the per-root cache batch.
func (l *Locator) remember(root, folder string, m *history.Manifest) {
	if l.pending == nil {
		return
	}

	info, err := os.Stat(filepath.Join(folder, history.ManifestName))
	if err != nil {
		return
	}

	entry := &cache.CachedFolder{
		ManifestMtime: info.ModTime().UnixNano(),
		Resource:      m.Resource,
		IDs:           make([]string, len(m.Entries)),
		Timestamps:    make([]int64, len(m.Entries)),
	}
	for i, e := range m.Entries {
		entry.IDs[i] = e.ID
		entry.Timestamps[i] = e.Timestamp
	}
	l.pending[folder] = entry
}

// flushPending writes queued manifest parses to the cache.
// Cache write failure degrades silently to uncached behavior.
func (l *Locator) flushPending(root string) {
	if l.opts.Cache == nil || len(l.pending) == 0 {
		return
	}
	if err := l.opts.Cache.PutBatch(root, l.pending); err != nil {
		l.addSkip(root, SkipCache, err)
	}
	l.pending = nil
}

// readHeader reads the blob's header window and decodes it permissively:
// invalid bytes are dropped, never fatal.
func (l *Locator) readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, l.opts.HeaderBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	return []byte(strings.ToValidUTF8(string(buf[:n]), "")), nil
}

// addSkip records one isolated per-item failure.
func (l *Locator) addSkip(path, reason string, err error) {
	skip := types.SkipReason{Path: path, Reason: reason}
	if err != nil {
		skip.Err = err.Error()
	}
	l.skips = append(l.skips, skip)
}

// reportProgress calls the progress callback, throttled to every 25ms
// unless forced.
func (l *Locator) reportProgress(current string, force bool) {
	if l.opts.OnProgress == nil {
		return
	}
	now := time.Now()
	if !force && now.Sub(l.lastProgress) < 25*time.Millisecond {
		return
	}
	l.lastProgress = now

	l.opts.OnProgress(Progress{
		RootsScanned:    l.rootsScanned,
		FoldersScanned:  l.foldersScanned,
		EntriesExamined: l.entriesExamined,
		Matched:         len(l.candidates),
		CurrentPath:     current,
	})
}
