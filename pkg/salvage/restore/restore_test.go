package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkrisch/salvage/pkg/salvage/types"
)

func writeBlob(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func candidateFor(t *testing.T, blobPath, resource string, ts time.Time) types.Candidate {
	t.Helper()
	info, err := os.Stat(blobPath)
	require.NoError(t, err)
	return types.Candidate{
		Timestamp: ts.UnixMilli(),
		Resource:  resource,
		BlobPath:  blobPath,
		Size:      info.Size(),
	}
}

func TestCopyNaming(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "RECOVERED")

	blob := writeBlob(t, src, "abc1.tsx", "import React")
	ts := time.Date(2024, 5, 3, 19, 35, 0, 0, time.Local)
	c := candidateFor(t, blob, "file:///c%3A/work/Records.tsx", ts)

	mat := &Materializer{OutputDir: out, Prefix: "REV_"}
	records, skips, err := mat.Copy([]types.Candidate{c})
	require.NoError(t, err)
	assert.Empty(t, skips)
	require.Len(t, records, 1)

	want := filepath.Join(out, "REV_0503_193500_12_Records.tsx")
	assert.Equal(t, want, records[0].Dest)

	data, err := os.ReadFile(records[0].Dest)
	require.NoError(t, err)
	assert.Equal(t, "import React", string(data))

	// The copy carries the snapshot time.
	info, err := os.Stat(records[0].Dest)
	require.NoError(t, err)
	assert.WithinDuration(t, ts, info.ModTime(), time.Second)
}

func TestCopyCollisionSuffix(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	// Two distinct blobs with identical timestamp, size, and basename.
	blobA := writeBlob(t, src, "a", "same len")
	blobB := writeBlob(t, src, "b", "diff tex")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	cA := candidateFor(t, blobA, "file:///x/dup.txt", ts)
	cB := candidateFor(t, blobB, "file:///y/dup.txt", ts)

	mat := &Materializer{OutputDir: out, Prefix: "REV_"}
	records, skips, err := mat.Copy([]types.Candidate{cA, cB})
	require.NoError(t, err)
	assert.Empty(t, skips)
	require.Len(t, records, 2)

	assert.NotEqual(t, records[0].Dest, records[1].Dest)
	assert.Equal(t, records[0].Dest+"~1", records[1].Dest)

	// Both originals survived intact.
	dataA, _ := os.ReadFile(records[0].Dest)
	dataB, _ := os.ReadFile(records[1].Dest)
	assert.Equal(t, "same len", string(dataA))
	assert.Equal(t, "diff tex", string(dataB))
}

func TestCopyRerunDoesNotOverwrite(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	blob := writeBlob(t, src, "v1", "original")
	c := candidateFor(t, blob, "file:///x/f.txt", time.Now())

	mat := &Materializer{OutputDir: out, Prefix: "REV_"}

	first, _, err := mat.Copy([]types.Candidate{c})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same candidate again: the earlier copy stays, a suffixed one appears.
	second, _, err := mat.Copy([]types.Candidate{c})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Dest+"~1", second[0].Dest)
}

func TestCopyLimit(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	// Ranked input: timestamps descending.
	var candidates []types.Candidate
	for i := 0; i < 5; i++ {
		blob := writeBlob(t, src, fmt.Sprintf("v%d", i), fmt.Sprintf("content %d", i))
		ts := time.Date(2024, 6, 1, 12, 0, 59-i, 0, time.Local)
		candidates = append(candidates, candidateFor(t, blob, "file:///x/f.txt", ts))
	}

	mat := &Materializer{OutputDir: out, Limit: 2, Prefix: "REV_"}
	records, _, err := mat.Copy(candidates)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The two most recent candidates were the ones copied.
	assert.Equal(t, candidates[0].Timestamp, records[0].Timestamp)
	assert.Equal(t, candidates[1].Timestamp, records[1].Timestamp)
}

func TestCopyFailureIsIsolated(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	good := writeBlob(t, src, "good", "fine")
	cGood := candidateFor(t, good, "file:///x/good.txt", time.Now())

	cGone := types.Candidate{
		Timestamp: time.Now().UnixMilli(),
		Resource:  "file:///x/gone.txt",
		BlobPath:  filepath.Join(src, "deleted-between-scan-and-copy"),
		Size:      10,
	}

	mat := &Materializer{OutputDir: out, Prefix: "REV_"}
	records, skips, err := mat.Copy([]types.Candidate{cGone, cGood})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, good, records[0].Source)

	require.Len(t, skips, 1)
	assert.Equal(t, cGone.BlobPath, skips[0].Path)
	assert.Equal(t, "copy", skips[0].Reason)
	assert.NotEmpty(t, skips[0].Err)
}

func TestEnsureDir(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "a", "b", "RECOVERED")
		mat := &Materializer{OutputDir: out}
		require.NoError(t, mat.EnsureDir())

		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing directory is reused", func(t *testing.T) {
		out := t.TempDir()
		keep := writeBlob(t, out, "existing.txt", "keep me")

		mat := &Materializer{OutputDir: out}
		require.NoError(t, mat.EnsureDir())

		data, err := os.ReadFile(keep)
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	})

	t.Run("empty path is an error", func(t *testing.T) {
		mat := &Materializer{}
		assert.Error(t, mat.EnsureDir())
	})
}
