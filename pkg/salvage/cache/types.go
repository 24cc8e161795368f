package cache

import (
	"bytes"
	"encoding/gob"
)

// KeySeparator separates root from folder path in cache keys.
const KeySeparator = '\x00'

// CachedFolder is the cached parse of one tracked-file folder's manifest.
// The entry is valid only while the manifest's mtime is unchanged; blob
// existence and sizes are always re-checked against disk by the locator.
type CachedFolder struct {
	// ManifestMtime is the manifest file's mtime as UnixNano when parsed.
	ManifestMtime int64

	// Resource is the manifest's original-file identifier.
	Resource string

	// IDs and Timestamps describe the manifest entries in order.
	IDs        []string
	Timestamps []int64
}

// Encode serializes the folder record using gob.
func (e *CachedFolder) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the folder record using gob.
func (e *CachedFolder) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// MakeKey creates a cache key from root and folder path.
// Format: <root>\x00<folder>
func MakeKey(root, folder string) []byte {
	return []byte(root + string(KeySeparator) + folder)
}

// MakeKeyPrefix returns the prefix for all keys under a root.
// An empty root matches every key.
func MakeKeyPrefix(root string) []byte {
	if root == "" {
		return []byte{}
	}
	return []byte(root + string(KeySeparator))
}
