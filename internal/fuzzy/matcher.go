package fuzzy

import (
	"math"
	"strings"
	"unicode/utf8"

	fz "github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Hit is one accepted name. Index points into the names slice given to Match;
// Score is the similarity, 1 - dissimilarity.
type Hit struct {
	Index int
	Score float64
}

// Matcher scores a normalized term against normalized names. Implementations
// return only names whose dissimilarity is below the threshold, in names order.
type Matcher interface {
	Match(term string, names []string) []Hit
}

// Normalize prepares a string for comparison: trimmed, NFC composed and case
// folded. Indexes apply it to names at build time and to terms per query.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser keeps state and is not safe for concurrent use, so each call
	// gets its own.
	return cases.Fold().String(norm.NFC.String(s))
}

// Approx scores a name by the cheapest way to turn the term into any substring
// of the name, divided by the term length. With IgnoreLocation set, a match at
// the end of a name is as good as one at the start.
type Approx struct {
	opts Options
}

// NewApprox creates an approximate substring matcher.
func NewApprox(opts Options) *Approx {
	return &Approx{opts: opts}
}

// Match implements Matcher.
func (a *Approx) Match(term string, names []string) []Hit {
	p := []rune(term)
	if len(p) == 0 {
		return nil
	}
	row := newRows()
	var hits []Hit
	for i, name := range names {
		d := a.dissimilarity(p, []rune(name), row, a.opts.Threshold)
		if d < a.opts.Threshold {
			hits = append(hits, Hit{Index: i, Score: 1 - d})
		}
	}
	return hits
}

// Dissimilarity scores a single pair in [0, 1] without the threshold cut-off,
// so rejected pairs report their true score. Mostly for tests and tooling.
func (a *Approx) Dissimilarity(term, name string) float64 {
	p := []rune(Normalize(term))
	if len(p) == 0 {
		return 1
	}
	return a.dissimilarity(p, []rune(Normalize(name)), newRows(), math.Inf(1))
}

// dissimilarity returns 1 as soon as no score below cutoff is possible.
func (a *Approx) dissimilarity(p, t []rune, r *rows, cutoff float64) float64 {
	m := len(p)
	window := a.opts.Location + a.opts.Distance + m
	if len(t) > window {
		t = t[:window]
	}
	last, ok := r.last(p, t, cutoff)
	if !ok {
		return 1
	}

	best := 1.0
	for end, errs := range last {
		s := float64(errs) / float64(m)
		if !a.opts.IgnoreLocation {
			s += a.proximity(end - m)
		}
		if s < best {
			best = s
		}
	}
	return best
}

// proximity penalises matches that start away from the expected location.
func (a *Approx) proximity(start int) float64 {
	if start < 0 {
		start = 0
	}
	off := start - a.opts.Location
	if off < 0 {
		off = -off
	}
	if a.opts.Distance == 0 {
		if off == 0 {
			return 0
		}
		return 1
	}
	return float64(off) / float64(a.opts.Distance)
}

// Levenshtein scores whole names: edit distance over the longer rune length.
// It suits short reference lists where partial names should not match.
type Levenshtein struct {
	opts Options
}

// NewLevenshtein creates a whole-string matcher.
func NewLevenshtein(opts Options) *Levenshtein {
	return &Levenshtein{opts: opts}
}

// Match implements Matcher.
func (l *Levenshtein) Match(term string, names []string) []Hit {
	tl := utf8.RuneCountInString(term)
	if tl == 0 {
		return nil
	}
	var hits []Hit
	for i, name := range names {
		longest := max(tl, utf8.RuneCountInString(name))
		d := float64(fz.LevenshteinDistance(term, name)) / float64(longest)
		if d < l.opts.Threshold {
			hits = append(hits, Hit{Index: i, Score: 1 - d})
		}
	}
	return hits
}
