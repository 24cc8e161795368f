package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sample() *CachedFolder {
	return &CachedFolder{
		ManifestMtime: 1714764900000000000,
		Resource:      "file:///work/Records.tsx",
		IDs:           []string{"abc1.tsx", "def2.tsx"},
		Timestamps:    []int64{1714764900000, 1714764800000},
	}
}

func TestCacheRoundtrip(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("/root", "/root/-folder", sample()))

	got, err := c.Get("/root", "/root/-folder")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestCacheGetMissing(t *testing.T) {
	c := openTestCache(t)

	_, err := c.Get("/root", "/root/-nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachePutBatch(t *testing.T) {
	c := openTestCache(t)

	entries := map[string]*CachedFolder{
		"/root/-a": {ManifestMtime: 1, Resource: "file:///a"},
		"/root/-b": {ManifestMtime: 2, Resource: "file:///b"},
	}
	require.NoError(t, c.PutBatch("/root", entries))

	a, err := c.Get("/root", "/root/-a")
	require.NoError(t, err)
	assert.Equal(t, "file:///a", a.Resource)

	b, err := c.Get("/root", "/root/-b")
	require.NoError(t, err)
	assert.Equal(t, "file:///b", b.Resource)
}

func TestCacheClearRoot(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("/rootA", "/rootA/-x", sample()))
	require.NoError(t, c.Put("/rootB", "/rootB/-y", sample()))

	require.NoError(t, c.Clear("/rootA"))

	_, err := c.Get("/rootA", "/rootA/-x")
	assert.ErrorIs(t, err, ErrNotFound)

	// Other roots are untouched.
	_, err = c.Get("/rootB", "/rootB/-y")
	assert.NoError(t, err)
}

func TestCacheClearAll(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("/rootA", "/rootA/-x", sample()))
	require.NoError(t, c.Put("/rootB", "/rootB/-y", sample()))

	require.NoError(t, c.Clear(""))

	_, err := c.Get("/rootA", "/rootA/-x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get("/rootB", "/rootB/-y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMakeKey(t *testing.T) {
	key := MakeKey("/root", "/root/-folder")
	assert.Equal(t, "/root\x00/root/-folder", string(key))

	// The separator keeps a root from prefix-matching its siblings'
	// keys, so clearing "/root" leaves "/root2" alone.
	sibling := MakeKey("/root2", "/root2/-folder")
	assert.False(t, bytes.HasPrefix(sibling, MakeKeyPrefix("/root")))
}
