package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriterBasic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salvage.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	require.NoError(t, err)

	n, err := w.Write([]byte("hello log\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello log\n", string(data))
}

func TestRotatingWriterAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salvage.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	require.NoError(t, err)
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestRotatingWriterRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salvage.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 32})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte(strings.Repeat("a", 30) + "\n"))
	require.NoError(t, err)
	// This write exceeds MaxSize and forces a rotation first.
	_, err = w.Write([]byte("fresh file\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh file\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestRotatingWriterMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salvage.log")

	w := &RotatingWriter{path: path, cfg: RotationConfig{MaxSize: 1024, MaxBackups: 2}}
	require.NoError(t, w.openFile())
	defer w.Close()

	// Simulate rotated files beyond the backup budget.
	for _, name := range []string{
		"salvage.2026-08-01-120000.log",
		"salvage.2026-08-02-120000.log",
		"salvage.2026-08-03-120000.log",
		"salvage.2026-08-04-120000.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old"), 0o644))
	}

	w.cleanup()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	rotated := 0
	for _, e := range entries {
		if e.Name() != "salvage.log" {
			rotated++
		}
	}
	assert.Equal(t, 2, rotated)
}

func TestRotatingWriterCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "salvage.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
