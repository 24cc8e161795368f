package locator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/tkrisch/salvage/pkg/salvage/history"
	"github.com/tkrisch/salvage/pkg/salvage/logging"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// scanRaw walks a root recursively, treating every non-manifest regular file
// as a candidate with its mtime as timestamp. This bypasses manifests
// entirely, which finds orphaned blobs that no entries.json references.
// fastwalk visits entries from multiple goroutines, so all shared state is
// guarded; results are re-sorted deterministically afterwards.
func (l *Locator) scanRaw(ctx context.Context, root string) {
	log := logging.Get("locator")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		l.addSkip(root, SkipMissingRoot, nil)
		log.Debug("root not found", "root", root)
		return
	}

	l.rootsScanned++
	log.Info("raw walk", "root", root)

	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}
		if err != nil {
			mu.Lock()
			l.addSkip(path, SkipStat, err)
			mu.Unlock()
			return nil
		}
		if d.IsDir() {
			mu.Lock()
			l.foldersScanned++
			l.reportProgress(path, false)
			mu.Unlock()
			return nil
		}
		if !d.Type().IsRegular() || d.Name() == history.ManifestName {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			mu.Lock()
			l.addSkip(path, SkipStat, err)
			mu.Unlock()
			return nil
		}

		c := types.Candidate{
			Timestamp:    fi.ModTime().UnixMilli(),
			Resource:     path,
			BlobPath:     path,
			Size:         fi.Size(),
			Root:         root,
			FromManifest: false,
		}

		mu.Lock()
		l.entriesExamined++
		mu.Unlock()

		// Metadata clauses first so only plausible files are opened.
		if !l.opts.Selector.MatchMeta(c) {
			return nil
		}

		var header []byte
		if l.opts.Selector.NeedsContent() {
			header, err = l.readHeader(path)
			if err != nil {
				mu.Lock()
				l.addSkip(path, SkipRead, err)
				mu.Unlock()
				return nil
			}
		}

		if l.opts.Selector.Match(c, header) {
			mu.Lock()
			l.candidates = append(l.candidates, c)
			mu.Unlock()
		}
		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		l.addSkip(root, SkipReadRoot, walkErr)
	}
}
