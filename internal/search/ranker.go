package search

import (
	"sort"
)

// Rank combines the candidate pools of a multi-term query, one pool per term
// in query order. Only candidates of the first pool are ranked; every later
// pool can lift a seed by holding a relative of it. For each later pool the
// first related candidate in pool order counts, not the best scoring one.
//
// Results are ordered by the number of terms satisfied, then by confidence,
// and truncated to limit.
func Rank(pools [][]Candidate, limit int) []Result {
	n := len(pools)
	if n == 0 || limit <= 0 || len(pools[0]) == 0 {
		return nil
	}

	results := make([]Result, 0, len(pools[0]))
	for _, seed := range pools[0] {
		count := 1
		total := seed.Similarity
		bonus := 1.0

		for _, pool := range pools[1:] {
			for _, c := range pool {
				if Related(seed, c) {
					count++
					total += c.Similarity
					bonus = HierarchyBonus
					break
				}
			}
		}

		avg := total / float64(n)
		combined := avg * bonus * (float64(count) / float64(n))
		results = append(results, Result{
			Candidate:      seed,
			HierarchyBonus: bonus,
			MatchInfo: &MatchInfo{
				MatchedTerms: count,
				TotalTerms:   n,
				Confidence:   combined,
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].MatchInfo, results[j].MatchInfo
		if a.MatchedTerms != b.MatchedTerms {
			return a.MatchedTerms > b.MatchedTerms
		}
		return a.Confidence > b.Confidence
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// rankSingle orders the pool of a one-term query by similarity.
func rankSingle(pool []Candidate, limit int) []Result {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}
	sorted := make([]Candidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	results := make([]Result, len(sorted))
	for i, c := range sorted {
		results[i] = Result{Candidate: c, HierarchyBonus: 1.0}
	}
	return results
}
