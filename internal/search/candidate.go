// Package search resolves free-text queries against the administrative
// hierarchy. An Engine owns every index it needs; it is built once and never
// modified, so one Engine serves any number of concurrent queries.
package search

import (
	"github.com/ug-admin-search/internal/hierarchy"
	"github.com/ug-admin-search/internal/refdata"
)

// HierarchyBonus is applied to a seed once any later term matched one of its
// relatives. It is not compounded per extra term.
const HierarchyBonus = 1.5

// Candidate is one unit matched against one query term.
type Candidate struct {
	Unit        refdata.AdminUnit `json:"unit"`
	Similarity  float64           `json:"similarity"`
	Chain       hierarchy.Chain   `json:"chain"`
	MatchedTerm string            `json:"matched_term"`
}

// MatchInfo summarises how a multi-term result was scored.
type MatchInfo struct {
	MatchedTerms int     `json:"matched_terms"`
	TotalTerms   int     `json:"total_terms"`
	Confidence   float64 `json:"confidence"`
}

// Result is a ranked candidate. MatchInfo is nil for single-term queries,
// whose HierarchyBonus is always 1.
type Result struct {
	Candidate
	HierarchyBonus float64    `json:"hierarchy_bonus"`
	MatchInfo      *MatchInfo `json:"match_info,omitempty"`
}
