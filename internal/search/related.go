package search

import (
	"github.com/ug-admin-search/internal/hierarchy"
	"github.com/ug-admin-search/internal/refdata"
)

// relatedLevels are the levels whose identifiers tie two candidates together.
var relatedLevels = [...]refdata.Level{refdata.District, refdata.County, refdata.SubCounty}

// Related reports whether two candidates share an identifier at the district,
// county or sub-county level. The levels of the candidates themselves do not
// have to line up: a county and a village in that county are related.
func Related(a, b Candidate) bool {
	return chainsRelated(a.Chain, b.Chain)
}

func chainsRelated(a, b hierarchy.Chain) bool {
	for _, l := range relatedLevels {
		id := a.At(l)
		if id != "" && id == b.At(l) {
			return true
		}
	}
	return false
}
