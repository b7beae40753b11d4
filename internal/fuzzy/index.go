package fuzzy

import (
	"sort"
	"unicode/utf8"
)

// Index answers approximate lookups over one fixed list of names.
type Index struct {
	names   []string
	opts    Options
	matcher Matcher
}

// NewIndex normalizes names once and keeps them in the given order, which is
// the tie-break order for equal scores. A nil matcher selects one from opts.
func NewIndex(names []string, opts Options, matcher Matcher) *Index {
	if matcher == nil {
		matcher = NewMatcher(opts)
	}
	normalized := make([]string, len(names))
	for i, n := range names {
		normalized[i] = Normalize(n)
	}
	return &Index{names: normalized, opts: opts, matcher: matcher}
}

// Len returns the number of indexed names.
func (x *Index) Len() int {
	return len(x.names)
}

// Search returns at most k hits for term, best first; equal scores keep index
// order. Empty terms, terms shorter than MinMatchLength and k <= 0 return nil.
func (x *Index) Search(term string, k int) []Hit {
	if k <= 0 {
		return nil
	}
	t := Normalize(term)
	if t == "" || utf8.RuneCountInString(t) < x.opts.MinMatchLength {
		return nil
	}

	hits := x.matcher.Match(t, x.names)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
