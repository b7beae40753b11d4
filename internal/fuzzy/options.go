// Package fuzzy implements approximate name matching for one administrative
// level at a time.
//
// Each Index is built once over the display names of a level and answers
// "which names look like this term" with a similarity in (1-Threshold, 1].
// The scoring strategy sits behind the Matcher interface so it can be swapped
// or tested on its own.
package fuzzy

import (
	"fmt"
	"strings"
)

// Matcher names accepted by Options.Matcher.
const (
	MatcherApprox      = "approx"
	MatcherLevenshtein = "levenshtein"
)

// Options holds the matching parameters.
type Options struct {
	// Threshold is the dissimilarity cut-off. A name matches only when its
	// dissimilarity is strictly below it.
	// Default: 0.4
	Threshold float64

	// MinMatchLength is the shortest term, in runes, that is searched at all.
	// Default: 2 (single characters match too much to be useful)
	MinMatchLength int

	// IgnoreLocation disables the proximity penalty, so where the term sits
	// inside the name does not affect the score.
	// Default: true
	IgnoreLocation bool

	// Location is the expected start of the match when IgnoreLocation is false.
	// Default: 0
	Location int

	// Distance bounds the scanned window of each name to
	// Location+Distance+len(term) runes, and scales the proximity penalty.
	// Default: 100
	Distance int

	// Matcher selects the scoring strategy: "approx" or "levenshtein".
	// Default: "approx"
	Matcher string
}

// DefaultOptions returns the production matching parameters.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.4,
		MinMatchLength: 2,
		IgnoreLocation: true,
		Location:       0,
		Distance:       100,
		Matcher:        MatcherApprox,
	}
}

// Validate rejects parameter combinations that cannot produce sensible scores.
func (o Options) Validate() error {
	if o.Threshold <= 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0,1], got %v", o.Threshold)
	}
	if o.MinMatchLength < 1 {
		return fmt.Errorf("min match length must be >= 1, got %d", o.MinMatchLength)
	}
	if o.Distance < 0 || o.Location < 0 {
		return fmt.Errorf("distance and location must be >= 0")
	}
	switch strings.ToLower(o.Matcher) {
	case "", MatcherApprox, MatcherLevenshtein:
	default:
		return fmt.Errorf("unknown matcher %q", o.Matcher)
	}
	return nil
}

// NewMatcher returns the Matcher selected by o.Matcher.
func NewMatcher(o Options) Matcher {
	if strings.ToLower(o.Matcher) == MatcherLevenshtein {
		return NewLevenshtein(o)
	}
	return NewApprox(o)
}
