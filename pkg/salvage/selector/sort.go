package selector

import (
	"cmp"
	"slices"

	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Sort returns candidates ordered by timestamp descending, most recent
// first. Equal timestamps are tie-broken by blob path ascending, a
// deterministic secondary key; both candidates always remain in the result.
// The input slice is not modified.
func Sort(candidates []types.Candidate) []types.Candidate {
	sorted := make([]types.Candidate, len(candidates))
	copy(sorted, candidates)

	slices.SortFunc(sorted, func(a, b types.Candidate) int {
		if r := cmp.Compare(b.Timestamp, a.Timestamp); r != 0 {
			return r
		}
		return cmp.Compare(a.BlobPath, b.BlobPath)
	})

	return sorted
}

// Top returns the first k candidates of an already-ranked slice, or all of
// them when k is 0 (unlimited) or exceeds the slice length.
func Top(candidates []types.Candidate, k int) []types.Candidate {
	if k <= 0 || k >= len(candidates) {
		return candidates
	}
	return candidates[:k]
}
