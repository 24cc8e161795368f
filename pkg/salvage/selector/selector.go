// Package selector provides the selection predicate and ranking rule used
// to evaluate snapshot candidates against a target description: filename
// substring, size window, content signature, or recency window. Any
// combination of clauses may be active; a candidate must satisfy all of them.
package selector

import (
	"path"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// Selector defines criteria for matching, ranking, and bounding candidates.
type Selector struct {
	// NameContains is a case-insensitive substring the resource basename
	// must contain. Empty disables the clause.
	NameContains string

	// MinSize and MaxSize bound the blob size as [MinSize, MaxSize).
	// MaxSize of 0 disables the upper bound; both zero disables the clause.
	MinSize int64
	MaxSize int64

	// Markers are substrings that must all appear in the blob's header
	// window (the first HeaderBytes, decoded permissively).
	Markers []string

	// ModifiedAfter excludes entries with timestamps at or before it.
	// Zero disables the clause.
	ModifiedAfter time.Time

	// Exclude contains glob patterns; blob paths matching any are excluded.
	Exclude []string

	// Limit caps how many candidates are materialized (copied).
	// 0 means unlimited. Listing is never limited.
	Limit int
}

// Option is a functional option for configuring a Selector.
type Option func(*Selector)

// New creates a Selector with the given options. With no options every
// entry matches, ranked most-recent-first.
func New(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithNameContains sets the filename-substring clause.
func WithNameContains(substr string) Option {
	return func(s *Selector) {
		s.NameContains = strings.ToLower(strings.TrimSpace(substr))
	}
}

// WithSizeRange sets the size window [min, max). A max of 0 leaves the
// window open above. Negative bounds are clamped to 0.
func WithSizeRange(min, max int64) Option {
	return func(s *Selector) {
		if min < 0 {
			min = 0
		}
		if max < 0 {
			max = 0
		}
		s.MinSize = min
		s.MaxSize = max
	}
}

// WithMarkers sets the content-signature clause. Empty markers are dropped.
func WithMarkers(markers ...string) Option {
	return func(s *Selector) {
		s.Markers = s.Markers[:0]
		for _, m := range markers {
			if m != "" {
				s.Markers = append(s.Markers, m)
			}
		}
	}
}

// WithModifiedAfter sets an absolute recency cutoff.
func WithModifiedAfter(t time.Time) Option {
	return func(s *Selector) {
		s.ModifiedAfter = t
	}
}

// WithSince sets the recency cutoff to now minus d.
func WithSince(d time.Duration) Option {
	return func(s *Selector) {
		s.ModifiedAfter = time.Now().Add(-d)
	}
}

// WithToday sets the recency cutoff to the start of the current day
// in the local zone.
func WithToday() Option {
	return func(s *Selector) {
		now := time.Now()
		s.ModifiedAfter = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// WithExclude sets glob patterns for blob paths to exclude.
func WithExclude(patterns ...string) Option {
	return func(s *Selector) {
		s.Exclude = patterns
	}
}

// WithLimit sets the materialization cap. Negative becomes 0 (unlimited).
func WithLimit(limit int) Option {
	return func(s *Selector) {
		if limit < 0 {
			limit = 0
		}
		s.Limit = limit
	}
}

// NeedsContent reports whether matching requires the blob's header bytes.
// The locator only reads blob content when a content clause is active.
func (s *Selector) NeedsContent() bool {
	return len(s.Markers) > 0
}

// Active reports whether any clause is set.
func (s *Selector) Active() bool {
	return s.NameContains != "" || s.MinSize > 0 || s.MaxSize > 0 ||
		len(s.Markers) > 0 || !s.ModifiedAfter.IsZero() || len(s.Exclude) > 0
}

// Match reports whether the candidate satisfies every active clause.
// header holds the blob's first bytes, decoded permissively; it may be nil
// when NeedsContent is false.
func (s *Selector) Match(c types.Candidate, header []byte) bool {
	return s.MatchMeta(c) && s.matchMarkers(header)
}

// MatchMeta checks every clause that needs only candidate metadata,
// letting callers decide whether a blob is worth opening for its header.
func (s *Selector) MatchMeta(c types.Candidate) bool {
	if !s.matchName(c) {
		return false
	}
	if !s.matchSize(c) {
		return false
	}
	if !s.matchRecency(c) {
		return false
	}
	return s.matchExclude(c)
}

// matchName checks the filename-substring clause against the resource basename.
func (s *Selector) matchName(c types.Candidate) bool {
	if s.NameContains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Basename()), s.NameContains)
}

// matchSize checks the [MinSize, MaxSize) window.
func (s *Selector) matchSize(c types.Candidate) bool {
	if c.Size < s.MinSize {
		return false
	}
	if s.MaxSize > 0 && c.Size >= s.MaxSize {
		return false
	}
	return true
}

// matchRecency checks the timestamp cutoff.
func (s *Selector) matchRecency(c types.Candidate) bool {
	if s.ModifiedAfter.IsZero() {
		return true
	}
	return c.Time().After(s.ModifiedAfter)
}

// matchExclude checks exclusion patterns against both the full blob path
// and its basename, so "*.lock" works without a "**/" prefix.
// Invalid patterns are skipped rather than failing the match.
func (s *Selector) matchExclude(c types.Candidate) bool {
	base := path.Base(strings.ReplaceAll(c.BlobPath, "\\", "/"))
	for _, pattern := range s.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if g.Match(c.BlobPath) || g.Match(base) {
			return false
		}
	}
	return true
}

// matchMarkers requires every marker to appear in the header window.
func (s *Selector) matchMarkers(header []byte) bool {
	if len(s.Markers) == 0 {
		return true
	}
	h := string(header)
	for _, m := range s.Markers {
		if !strings.Contains(h, m) {
			return false
		}
	}
	return true
}
