// Package history reads editor local-history roots: directories maintained
// by VS Code-style tooling that hold one opaque folder per tracked file,
// each containing an entries.json manifest and timestamped snapshot blobs.
//
// The layout consumed is:
//
//	<root>/<opaque-folder>/entries.json
//	<root>/<opaque-folder>/<blob-id>
//
// with a manifest shape of
//
//	{"resource": "<uri>", "entries": [{"id": "...", "timestamp": <ms>}, ...]}
//
// Roots are read-only inputs owned by the editor; this package never
// writes to them.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tidwall/gjson"
)

// ManifestName is the manifest filename inside each tracked-file folder.
const ManifestName = "entries.json"

// Entry is one snapshot descriptor from a manifest.
type Entry struct {
	// ID is the opaque blob filename, sibling to the manifest.
	ID string

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64
}

// Manifest is the parsed descriptor for one tracked file.
type Manifest struct {
	// Resource is the original file's location identifier, typically a URI.
	Resource string

	// Entries are the snapshot descriptors in manifest order.
	Entries []Entry
}

// ErrBadManifest indicates a manifest that exists but does not parse or
// is missing required fields. Callers skip the folder, never abort.
var ErrBadManifest = errors.New("malformed manifest")

// ParseManifest parses manifest bytes permissively. A manifest that is not
// valid JSON or has no resource returns ErrBadManifest; individual entries
// missing an id or timestamp are dropped rather than failing the manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrBadManifest
	}

	doc := gjson.ParseBytes(data)
	resource := doc.Get("resource").Str
	if resource == "" {
		return nil, fmt.Errorf("%w: no resource", ErrBadManifest)
	}

	m := &Manifest{Resource: resource}
	doc.Get("entries").ForEach(func(_, e gjson.Result) bool {
		id := e.Get("id").Str
		ts := e.Get("timestamp")
		if id == "" || !ts.Exists() {
			return true
		}
		m.Entries = append(m.Entries, Entry{ID: id, Timestamp: ts.Int()})
		return true
	})

	return m, nil
}

// ReadManifest loads and parses the manifest of a tracked-file folder.
func ReadManifest(folder string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(folder, ManifestName))
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// Snapshot pairs a manifest entry with its on-disk blob.
type Snapshot struct {
	Entry
	BlobPath string
	Size     int64
}

// ReadFolder reads a tracked-file folder: it parses the manifest and stats
// each entry's sibling blob. Entries whose blob is missing are excluded.
// The returned missing count lets callers account for dropped entries.
func ReadFolder(folder string) (*Manifest, []Snapshot, int, error) {
	m, err := ReadManifest(folder)
	if err != nil {
		return nil, nil, 0, err
	}

	snaps := make([]Snapshot, 0, len(m.Entries))
	missing := 0
	for _, e := range m.Entries {
		blobPath := filepath.Join(folder, e.ID)
		info, err := os.Stat(blobPath)
		if err != nil || info.IsDir() {
			missing++
			continue
		}
		snaps = append(snaps, Snapshot{
			Entry:    e,
			BlobPath: blobPath,
			Size:     info.Size(),
		})
	}

	return m, snaps, missing, nil
}

// DefaultRoots returns the conventional VS Code and Cursor local-history
// locations for the current OS. Paths that do not exist are still returned;
// a nonexistent root contributes zero candidates and is not an error.
func DefaultRoots() []string {
	var bases []string
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			bases = append(bases, appdata)
		}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			bases = append(bases, local)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			bases = append(bases, filepath.Join(home, "Library", "Application Support"))
		}
	default:
		if cfg, err := os.UserConfigDir(); err == nil {
			bases = append(bases, cfg)
		}
	}

	var roots []string
	for _, base := range bases {
		for _, product := range []string{"Code", "Cursor", "VSCodium", "Code - Insiders"} {
			roots = append(roots, filepath.Join(base, product, "User", "History"))
		}
	}
	return roots
}

// TrackedFolders lists the immediate subdirectories of a history root.
// The boolean reports whether the root exists at all.
func TrackedFolders(root string) ([]string, bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, true, err
	}

	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, filepath.Join(root, e.Name()))
		}
	}
	return folders, true, nil
}
