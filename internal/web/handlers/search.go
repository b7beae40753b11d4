package handlers

import (
	"net/http"
	"time"

	"github.com/ug-admin-search/internal/cache"
	"github.com/ug-admin-search/internal/metrics"
	"github.com/ug-admin-search/internal/search"
)

// SearchHandler handles search endpoints
type SearchHandler struct {
	Holder *search.Holder
	Cache  cache.Cache
	Config *Config
}

// SearchResponse represents a fuzzy search reply
type SearchResponse struct {
	Query   string          `json:"query"`
	Terms   []string        `json:"terms"`
	Limit   int             `json:"limit"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
	Cached  bool            `json:"cached"`
}

// ExactResponse represents an exact search reply
type ExactResponse struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []search.Candidate `json:"results"`
	Cached  bool               `json:"cached"`
}

// Search runs a fuzzy, possibly multi-term, query
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	e := engineOrUnavailable(w, h.Holder)
	if e == nil {
		return
	}
	q := r.URL.Query().Get("q")
	limit, ok := parseIntParam(r.URL.Query().Get("limit"), h.Config.DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if limit > h.Config.MaxLimit {
		limit = h.Config.MaxLimit
	}

	key := cache.Key(e.Fingerprint(), "search", limit, q)
	terms := e.Terms(q)
	if resp, ok := cache.GetJSON[SearchResponse](r.Context(), h.Cache, key); ok && relabel(&resp, terms) {
		resp.Query = q
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	results := e.Search(q, limit)
	observe("fuzzy", start, len(results))
	metrics.SearchTerms.Observe(float64(len(terms)))

	if terms == nil {
		terms = []string{}
	}
	if results == nil {
		results = []search.Result{}
	}
	resp := SearchResponse{
		Query:   q,
		Terms:   terms,
		Limit:   limit,
		Count:   len(results),
		Results: results,
	}
	cache.SetJSON(r.Context(), h.Cache, key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// ExactSearch lists every unit whose name contains q
func (h *SearchHandler) ExactSearch(w http.ResponseWriter, r *http.Request) {
	e := engineOrUnavailable(w, h.Holder)
	if e == nil {
		return
	}
	q := r.URL.Query().Get("q")

	key := cache.Key(e.Fingerprint(), "exact", 0, q)
	if resp, ok := cache.GetJSON[ExactResponse](r.Context(), h.Cache, key); ok {
		resp.Query = q
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	results := e.ExactSearch(q)
	observe("exact", start, len(results))

	if results == nil {
		results = []search.Candidate{}
	}
	resp := ExactResponse{Query: q, Count: len(results), Results: results}
	cache.SetJSON(r.Context(), h.Cache, key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// relabel swaps the terms of a cached reply, filled by a query that differed
// only in case or spacing, for this request's terms. It reports false when the
// terms do not line up, and the reply must then be recomputed.
func relabel(resp *SearchResponse, terms []string) bool {
	if len(resp.Terms) != len(terms) {
		return false
	}
	byCached := make(map[string]string, len(terms))
	for i, t := range resp.Terms {
		byCached[t] = terms[i]
	}
	for i := range resp.Results {
		own, ok := byCached[resp.Results[i].MatchedTerm]
		if !ok {
			return false
		}
		resp.Results[i].MatchedTerm = own
	}
	resp.Terms = append([]string{}, terms...)
	return true
}

func observe(kind string, start time.Time, n int) {
	metrics.SearchesTotal.WithLabelValues(kind).Inc()
	metrics.SearchDurationMs.WithLabelValues(kind).Observe(float64(time.Since(start).Microseconds()) / 1000)
	if n == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(kind).Inc()
	}
}
