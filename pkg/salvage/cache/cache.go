// Package cache provides a Badger-backed cache of parsed history manifests.
// Tracked-file folders whose manifest mtime is unchanged since the last scan
// are served from the cache without re-reading entries.json. Cache failures
// always degrade to uncached scanning; they are never fatal to a run.
package cache

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// Cache wraps Badger for manifest cache operations.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get retrieves the cached manifest parse for a folder. The caller compares
// ManifestMtime against the manifest on disk to decide staleness.
func (c *Cache) Get(root, folder string) (*CachedFolder, error) {
	key := MakeKey(root, folder)
	var entry CachedFolder

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.Decode)
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores the parse of a single folder's manifest.
func (c *Cache) Put(root, folder string, entry *CachedFolder) error {
	key := MakeKey(root, folder)
	value, err := entry.Encode()
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// PutBatch stores multiple folder parses in a single write batch.
func (c *Cache) PutBatch(root string, entries map[string]*CachedFolder) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for folder, entry := range entries {
		value, err := entry.Encode()
		if err != nil {
			return err
		}
		if err := wb.Set(MakeKey(root, folder), value); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Clear removes all cached entries for a root. An empty root clears
// everything.
func (c *Cache) Clear(root string) error {
	prefix := MakeKeyPrefix(root)

	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}
