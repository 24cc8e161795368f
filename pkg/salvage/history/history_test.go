package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		data := []byte(`{
			"version": 1,
			"resource": "file:///home/user/work/Records.tsx",
			"entries": [
				{"id": "abc1.tsx", "timestamp": 1714764900000},
				{"id": "def2.tsx", "timestamp": 1714764800000, "source": "undoRedo.source"}
			]
		}`)

		m, err := ParseManifest(data)
		require.NoError(t, err)
		assert.Equal(t, "file:///home/user/work/Records.tsx", m.Resource)
		require.Len(t, m.Entries, 2)
		assert.Equal(t, "abc1.tsx", m.Entries[0].ID)
		assert.Equal(t, int64(1714764900000), m.Entries[0].Timestamp)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseManifest([]byte(`{"resource": "fil`))
		assert.ErrorIs(t, err, ErrBadManifest)
	})

	t.Run("missing resource", func(t *testing.T) {
		_, err := ParseManifest([]byte(`{"entries": [{"id": "a", "timestamp": 1}]}`))
		assert.ErrorIs(t, err, ErrBadManifest)
	})

	t.Run("entries missing fields are dropped", func(t *testing.T) {
		data := []byte(`{
			"resource": "file:///a.txt",
			"entries": [
				{"id": "good", "timestamp": 100},
				{"timestamp": 200},
				{"id": "no-timestamp"},
				{"id": "also-good", "timestamp": 300}
			]
		}`)

		m, err := ParseManifest(data)
		require.NoError(t, err)
		require.Len(t, m.Entries, 2)
		assert.Equal(t, "good", m.Entries[0].ID)
		assert.Equal(t, "also-good", m.Entries[1].ID)
	})

	t.Run("no entries", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"resource": "file:///a.txt"}`))
		require.NoError(t, err)
		assert.Empty(t, m.Entries)
	})
}

func TestReadFolder(t *testing.T) {
	folder := t.TempDir()

	manifest := `{
		"resource": "file:///work/app.py",
		"entries": [
			{"id": "blob1", "timestamp": 1000},
			{"id": "blob2", "timestamp": 2000},
			{"id": "ghost", "timestamp": 3000}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(folder, ManifestName), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "blob1"), []byte("first version"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "blob2"), []byte("second, longer version"), 0o644))
	// "ghost" has a manifest entry but no blob on disk

	m, snaps, missing, err := ReadFolder(folder)
	require.NoError(t, err)
	assert.Equal(t, "file:///work/app.py", m.Resource)
	assert.Equal(t, 1, missing)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(len("first version")), snaps[0].Size)
	assert.Equal(t, filepath.Join(folder, "blob1"), snaps[0].BlobPath)
}

func TestReadFolderNoManifest(t *testing.T) {
	folder := t.TempDir()

	_, _, _, err := ReadFolder(folder)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTrackedFolders(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		folders, exists, err := TrackedFolders(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Empty(t, folders)
	})

	t.Run("existing root", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "-4f21ab9c"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(root, "-77e0cd12"), 0o755))
		// A stray file at root level is not a tracked folder
		require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

		folders, exists, err := TrackedFolders(root)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Len(t, folders, 2)
	})
}

func TestDefaultRoots(t *testing.T) {
	roots := DefaultRoots()

	// Every root ends with the History suffix regardless of platform.
	for _, root := range roots {
		assert.Equal(t, "History", filepath.Base(root))
		assert.Equal(t, "User", filepath.Base(filepath.Dir(root)))
	}
}
