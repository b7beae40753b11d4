package fuzzy

import "math"

// rows holds the two dynamic-programming rows reused across the names of one
// Match call.
type rows struct {
	prev []int
	cur  []int
}

func newRows() *rows {
	return &rows{prev: make([]int, 0, 32), cur: make([]int, 0, 32)}
}

func (r *rows) reset(n int) {
	if cap(r.prev) < n+1 {
		r.prev = make([]int, n+1)
		r.cur = make([]int, n+1)
	}
	r.prev = r.prev[:n+1]
	r.cur = r.cur[:n+1]
}

// last computes, for every end offset j in t, the minimum number of edits
// turning p into some substring of t that ends at j (Sellers' algorithm: the
// first row is all zeros so a match may start anywhere). The returned slice is
// only valid until the next call.
//
// It gives up early, returning false, once every cell of a row is at or above
// threshold*len(p): row minima never decrease, so no end offset can qualify.
func (r *rows) last(p, t []rune, threshold float64) ([]int, bool) {
	m, n := len(p), len(t)
	r.reset(n)
	prev, cur := r.prev, r.cur
	for j := range prev {
		prev[j] = 0
	}

	for i := 1; i <= m; i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= n; j++ {
			cost := 1
			if p[i-1] == t[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // term rune not in name
				cur[j-1]+1,     // extra rune in name
				prev[j-1]+cost, // match or substitution
			)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if float64(rowMin)/float64(m) >= threshold {
			return nil, false
		}
		prev, cur = cur, prev
	}
	r.prev, r.cur = prev, cur
	return prev, true
}

// SubstringDistance returns the fewest edits that turn pattern into some
// substring of text. It compares runes as given; callers normalize first.
func SubstringDistance(pattern, text string) int {
	p, t := []rune(pattern), []rune(text)
	if len(p) == 0 {
		return 0
	}
	last, _ := newRows().last(p, t, math.Inf(1))
	best := len(p)
	for _, e := range last {
		if e < best {
			best = e
		}
	}
	return best
}
