// Package metrics holds the Prometheus collectors of the search service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 250, 500, 1000}

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adminsearch_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminsearch_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"route"})
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adminsearch_searches_total",
		Help: "Queries executed by kind (fuzzy, exact)",
	}, []string{"kind"})
	SearchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminsearch_search_duration_ms",
		Help:    "Engine query time in milliseconds, cache hits excluded",
		Buckets: durationBuckets,
	}, []string{"kind"})
	SearchTerms = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "adminsearch_search_terms",
		Help:    "Number of usable terms per fuzzy query",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
	})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adminsearch_empty_results_total",
		Help: "Queries that returned no results",
	}, []string{"kind"})
	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adminsearch_cache_requests_total",
		Help: "Result cache lookups by tier (lru, redis) and outcome (hit, miss, error)",
	}, []string{"tier", "outcome"})
	ReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adminsearch_reloads_total",
		Help: "Reference data reloads by status (ok, failed)",
	}, []string{"status"})
	EngineGeneration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "adminsearch_engine_generation",
		Help: "Generation of the engine in service",
	})
	UnitsLoaded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "adminsearch_units_loaded",
		Help: "Administrative units in the engine in service, by level",
	}, []string{"level"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(SearchTerms)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(CacheRequestsTotal)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(EngineGeneration)
	prometheus.MustRegister(UnitsLoaded)
}

// SetUnits publishes per-level unit counts after an engine swap.
func SetUnits(counts map[string]int) {
	for level, n := range counts {
		UnitsLoaded.WithLabelValues(level).Set(float64(n))
	}
}

// Handler exposes the default registry for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
