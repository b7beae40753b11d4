package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetUnits(t *testing.T) {
	SetUnits(map[string]int{"district": 6, "village": 12})

	if got := testutil.ToFloat64(UnitsLoaded.WithLabelValues("district")); got != 6 {
		t.Errorf("district gauge = %v, want 6", got)
	}
	if got := testutil.ToFloat64(UnitsLoaded.WithLabelValues("village")); got != 12 {
		t.Errorf("village gauge = %v, want 12", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	SearchesTotal.WithLabelValues("fuzzy").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "adminsearch_searches_total") {
		t.Error("scrape output is missing adminsearch_searches_total")
	}
}
