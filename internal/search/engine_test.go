package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ug-admin-search/internal/fuzzy"
	"github.com/ug-admin-search/internal/hierarchy"
	"github.com/ug-admin-search/internal/refdata"
)

// testDataset is a small two-district hierarchy with one dangling parish.
func testDataset() *refdata.Dataset {
	ds := refdata.NewDataset()
	for _, u := range []refdata.AdminUnit{
		{ID: "D1", Name: "Kampala", Level: refdata.District},
		{ID: "D2", Name: "Gulu", Level: refdata.District},
		{ID: "C1", Name: "Nakawa", Level: refdata.County, ParentID: "D1"},
		{ID: "C2", Name: "Aswa", Level: refdata.County, ParentID: "D2"},
		{ID: "C3", Name: "Omoro", Level: refdata.County, ParentID: "D2"},
		{ID: "S1", Name: "Nakawa Division", Level: refdata.SubCounty, ParentID: "C1"},
		{ID: "S2", Name: "Bungatira", Level: refdata.SubCounty, ParentID: "C2"},
		{ID: "P1", Name: "Mbuya", Level: refdata.Parish, ParentID: "S1"},
		{ID: "P2", Name: "Orphan", Level: refdata.Parish, ParentID: "S404"},
		{ID: "V1", Name: "Mbuya I", Level: refdata.Village, ParentID: "P1"},
	} {
		ds.Add(u)
	}
	return ds
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testDataset(), fuzzy.DefaultOptions())
	require.NoError(t, err)
	return e
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Unit.ID
	}
	return out
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	_, err := NewEngine(nil, fuzzy.DefaultOptions())
	assert.Error(t, err)

	opts := fuzzy.DefaultOptions()
	opts.Threshold = 0
	_, err = NewEngine(testDataset(), opts)
	assert.Error(t, err)
}

func TestSearchMisspelledSingleTerm(t *testing.T) {
	e := newTestEngine(t)

	results := e.Search("Kampla", DefaultLimit)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "D1", top.Unit.ID)
	assert.Greater(t, top.Similarity, 0.6)
	assert.Equal(t, "Kampla", top.MatchedTerm)
	assert.Equal(t, 1.0, top.HierarchyBonus)
	assert.Nil(t, top.MatchInfo)
	assert.Equal(t, hierarchy.Chain{District: "D1"}, top.Chain)
}

func TestSearchSingleTermOrdering(t *testing.T) {
	e := newTestEngine(t)

	results := e.Search("Aswa", DefaultLimit)
	require.NotEmpty(t, results)
	assert.Equal(t, "C2", results[0].Unit.ID)
	assert.Equal(t, 1.0, results[0].Similarity)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
	for _, r := range results {
		assert.Greater(t, r.Similarity, 0.6)
		assert.LessOrEqual(t, r.Similarity, 1.0)
	}

	limited := e.Search("Aswa", 1)
	assert.Equal(t, []string{"C2"}, ids(limited))
}

func TestSearchNoCrossLevelDedup(t *testing.T) {
	e := newTestEngine(t)

	results := e.Search("Nakawa", DefaultLimit)
	assert.Equal(t, []string{"C1", "S1"}, ids(results))
}

func TestSearchChildQualifiedByAncestor(t *testing.T) {
	e := newTestEngine(t)

	for _, q := range []string{"Nakawa, Kampala", "Nakawa in Kampala", "nakawa; KAMPALA"} {
		t.Run(q, func(t *testing.T) {
			results := e.Search(q, DefaultLimit)
			require.NotEmpty(t, results)

			top := results[0]
			assert.Equal(t, "C1", top.Unit.ID)
			assert.Equal(t, HierarchyBonus, top.HierarchyBonus)
			require.NotNil(t, top.MatchInfo)
			assert.Equal(t, 2, top.MatchInfo.MatchedTerms)
			assert.Equal(t, 2, top.MatchInfo.TotalTerms)
			assert.InDelta(t, 1.5, top.MatchInfo.Confidence, 1e-9)
		})
	}
}

func TestSearchUnrelatedQualifier(t *testing.T) {
	e := newTestEngine(t)

	for _, q := range []string{"Nakawa, Elsewhere", "Nakawa, Gulu"} {
		t.Run(q, func(t *testing.T) {
			results := e.Search(q, DefaultLimit)
			require.NotEmpty(t, results)
			assert.Contains(t, ids(results), "C1")

			for _, r := range results {
				require.NotNil(t, r.MatchInfo)
				assert.Equal(t, 1, r.MatchInfo.MatchedTerms)
				assert.Equal(t, 1.0, r.HierarchyBonus)
				// one of two terms at similarity 1: (1/2) * 1.0 * (1/2)
				assert.InDelta(t, 0.25, r.MatchInfo.Confidence, 1e-9)
			}
		})
	}
}

func TestSearchMatchCountOrdering(t *testing.T) {
	e := newTestEngine(t)

	// "Aswa" also fuzzily matches the "awa" in Nakawa, but only Aswa sits in Gulu.
	results := e.Search("Aswa, Gulu", DefaultLimit)
	require.GreaterOrEqual(t, len(results), 2)

	assert.Equal(t, "C2", results[0].Unit.ID)
	assert.Equal(t, 2, results[0].MatchInfo.MatchedTerms)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchInfo.MatchedTerms, results[i].MatchInfo.MatchedTerms,
			"matched terms must not increase down the list")
	}

	limited := e.Search("Aswa, Gulu", 1)
	assert.Equal(t, []string{"C2"}, ids(limited))
}

func TestSearchRelatedAtDeeperLevels(t *testing.T) {
	e := newTestEngine(t)

	results := e.Search("Mbuya at Nakawa Division", DefaultLimit)
	require.NotEmpty(t, results)
	assert.Equal(t, []string{"P1", "V1"}, ids(results)[:2])
	for _, r := range results[:2] {
		assert.Equal(t, 2, r.MatchInfo.MatchedTerms)
		assert.Equal(t, HierarchyBonus, r.HierarchyBonus)
	}
}

func TestSearchDegenerateInput(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		query string
		limit int
	}{
		{name: "empty query", query: "", limit: DefaultLimit},
		{name: "whitespace query", query: "   ", limit: DefaultLimit},
		{name: "separators only", query: " , in ; at ", limit: DefaultLimit},
		{name: "single character", query: "K", limit: DefaultLimit},
		{name: "zero limit", query: "Kampala", limit: 0},
		{name: "negative limit", query: "Kampala", limit: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.Search(tt.query, tt.limit))
		})
	}
}

func TestSearchSkipsShortTerms(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{"Kampala"}, e.Terms("K, Kampala"))

	results := e.Search("K, Kampala", DefaultLimit)
	require.NotEmpty(t, results)
	assert.Equal(t, "D1", results[0].Unit.ID)
	assert.Nil(t, results[0].MatchInfo, "one usable term is a single-term query")
}

func TestExactSearch(t *testing.T) {
	e := newTestEngine(t)

	got := e.ExactSearch("NAKAWA")
	require.Len(t, got, 2)
	assert.Equal(t, "C1", got[0].Unit.ID)
	assert.Equal(t, "S1", got[1].Unit.ID)
	for _, c := range got {
		assert.Equal(t, 1.0, c.Similarity)
		assert.Equal(t, "D1", c.Chain.District)
	}

	assert.Empty(t, e.ExactSearch(""))
	assert.Empty(t, e.ExactSearch("   "))
	assert.Empty(t, e.ExactSearch("Kampla"), "exact search does not tolerate typos")
}

func TestEngineHierarchyAccessors(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t,
		hierarchy.Chain{District: "D1", County: "C1", SubCounty: "S1", Parish: "P1", Village: "V1"},
		e.Chain(refdata.Village, "V1"))
	assert.Equal(t, hierarchy.Chain{Parish: "P2"}, e.Chain(refdata.Parish, "P2"), "dangling parent truncates")
	assert.True(t, e.Chain(refdata.Parish, "missing").IsZero())

	assert.Equal(t,
		[]string{"district: Kampala", "county: Nakawa", "subcounty: Nakawa Division", "parish: Mbuya"},
		e.AncestorNames(refdata.Village, "V1"))
	assert.Empty(t, e.AncestorNames(refdata.District, "D1"))

	u, ok := e.Unit(refdata.County, "C2")
	require.True(t, ok)
	assert.Equal(t, "Aswa", u.Name)

	kids := e.Children(refdata.District, "D2")
	require.Len(t, kids, 2)
	assert.Equal(t, "C2", kids[0].ID)
	assert.Equal(t, "C3", kids[1].ID)

	assert.Len(t, e.Units(refdata.County), 3)
	assert.Nil(t, e.Units(refdata.Level(9)))
}

func TestEngineStats(t *testing.T) {
	e := newTestEngine(t)

	s := e.Stats()
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 2, s.Counts["district"])
	assert.Equal(t, 1, s.Counts["village"])
	assert.Equal(t, testDataset().Fingerprint(), s.Fingerprint)
	assert.False(t, s.BuiltAt.IsZero())
}

func TestSearchEmbeddedSample(t *testing.T) {
	ds, err := refdata.Embedded().Load(testContext(t))
	require.NoError(t, err)
	e, err := NewEngine(ds, fuzzy.DefaultOptions())
	require.NoError(t, err)

	results := e.Search("Kampla", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "D001", results[0].Unit.ID)

	results = e.Search("Nakawa, Kampala", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "C002", results[0].Unit.ID)
	assert.Equal(t, 2, results[0].MatchInfo.MatchedTerms)
	assert.Equal(t, HierarchyBonus, results[0].HierarchyBonus)
}

func BenchmarkSearchMultiTerm(b *testing.B) {
	e, err := NewEngine(testDataset(), fuzzy.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Search("Mbuya in Nakawa, Kampala", DefaultLimit)
	}
}
