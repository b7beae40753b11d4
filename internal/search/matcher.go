package search

import (
	"github.com/ug-admin-search/internal/refdata"
)

// matchTerm runs one term through every level index and pools the hits, level
// by level from the district down. Each level contributes at most k hits. A
// name matching at two levels yields two candidates.
func (e *Engine) matchTerm(term string, k int) []Candidate {
	var pool []Candidate
	for _, level := range refdata.Levels() {
		i := level.Index()
		units := e.units[i]
		for _, h := range e.indexes[i].Search(term, k) {
			u := units[h.Index]
			pool = append(pool, Candidate{
				Unit:        u,
				Similarity:  h.Score,
				Chain:       e.hier.ChainOf(level, u.ID),
				MatchedTerm: term,
			})
		}
	}
	return pool
}
