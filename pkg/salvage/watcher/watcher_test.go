package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkrisch/salvage/pkg/salvage/history"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

func startWatcher(t *testing.T, sel *selector.Selector, root string) chan types.Candidate {
	t.Helper()

	w, err := New(sel, 1000)
	require.NoError(t, err)
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	matches := make(chan types.Candidate, 16)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(c types.Candidate) { matches <- c })
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return matches
}

func writeSnapshot(t *testing.T, folder, blobID, content, resource string, ts int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, blobID), []byte(content), 0o644))

	manifest := fmt.Sprintf(`{"resource":%q,"entries":[{"id":%q,"timestamp":%d}]}`, resource, blobID, ts)
	require.NoError(t, os.WriteFile(filepath.Join(folder, history.ManifestName), []byte(manifest), 0o644))
}

func waitForMatch(t *testing.T, matches chan types.Candidate) types.Candidate {
	t.Helper()
	select {
	case c := <-matches:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a match")
		return types.Candidate{}
	}
}

func TestWatcherReportsNewSnapshot(t *testing.T) {
	root := t.TempDir()
	matches := startWatcher(t, selector.New(), root)

	// A new tracked folder appears after the watch started.
	folder := filepath.Join(root, "-newfile")
	writeSnapshot(t, folder, "v1.go", "package main", "file:///work/main.go", 1000)

	c := waitForMatch(t, matches)
	assert.Equal(t, "file:///work/main.go", c.Resource)
	assert.Equal(t, int64(1000), c.Timestamp)
	assert.True(t, c.FromManifest)
}

func TestWatcherAppliesSelector(t *testing.T) {
	root := t.TempDir()
	sel := selector.New(selector.WithNameContains("records"))
	matches := startWatcher(t, sel, root)

	writeSnapshot(t, filepath.Join(root, "-other"), "v1", "x", "file:///work/other.txt", 1000)
	writeSnapshot(t, filepath.Join(root, "-records"), "v1.tsx", "import React", "file:///work/Records.tsx", 2000)

	c := waitForMatch(t, matches)
	assert.Equal(t, "file:///work/Records.tsx", c.Resource)

	select {
	case extra := <-matches:
		t.Fatalf("unexpected extra match: %s", extra.Resource)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDeduplicatesBlobs(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "-app")

	// The folder exists before the watch starts, so it is watched directly.
	writeSnapshot(t, folder, "v1", "one", "file:///work/app.py", 1000)

	matches := startWatcher(t, selector.New(), root)

	// A second snapshot appends to the manifest; only the new blob reports.
	require.NoError(t, os.WriteFile(filepath.Join(folder, "v2"), []byte("two"), 0o644))
	manifest := `{"resource":"file:///work/app.py","entries":[{"id":"v1","timestamp":1000},{"id":"v2","timestamp":2000}]}`
	require.NoError(t, os.WriteFile(filepath.Join(folder, history.ManifestName), []byte(manifest), 0o644))

	first := waitForMatch(t, matches)
	second := waitForMatch(t, matches)
	assert.NotEqual(t, first.BlobPath, second.BlobPath)

	// Rewriting the manifest with the same entries reports nothing new.
	require.NoError(t, os.WriteFile(filepath.Join(folder, history.ManifestName), []byte(manifest), 0o644))
	select {
	case c := <-matches:
		t.Fatalf("duplicate report for %s", c.BlobPath)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingRoot(t *testing.T) {
	w, err := New(selector.New(), 1000)
	require.NoError(t, err)
	defer w.Close()

	err = w.Watch(filepath.Join(t.TempDir(), "no-such-root"))
	assert.Error(t, err)
}
