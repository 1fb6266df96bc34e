package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodGet, "GET /api/v1.0/stations", http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "GET /api/v1.0/stations", http.StatusOK, 7*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "GET /api/v1.0/{start}", http.StatusInternalServerError, time.Millisecond)

	if got := promtest.ToFloat64(m.httpRequests.WithLabelValues("GET", "GET /api/v1.0/stations", "200")); got != 2 {
		t.Errorf("stations 200 count = %v, want 2", got)
	}
	if got := promtest.ToFloat64(m.httpRequests.WithLabelValues("GET", "GET /api/v1.0/{start}", "500")); got != 1 {
		t.Errorf("start 500 count = %v, want 1", got)
	}
	if got := promtest.CollectAndCount(m.httpRequestDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestObserveQuery(t *testing.T) {
	m := New()

	m.ObserveQuery("stations", time.Millisecond, nil)
	m.ObserveQuery("stations", time.Millisecond, errors.New("boom"))
	m.ObserveQuery("precipitation", time.Millisecond, nil)

	tests := []struct {
		query, outcome string
		want           float64
	}{
		{query: "stations", outcome: "ok", want: 1},
		{query: "stations", outcome: "error", want: 1},
		{query: "precipitation", outcome: "ok", want: 1},
	}
	for _, tt := range tests {
		if got := promtest.ToFloat64(m.queries.WithLabelValues(tt.query, tt.outcome)); got != tt.want {
			t.Errorf("queries{%s,%s} = %v, want %v", tt.query, tt.outcome, got, tt.want)
		}
	}
}

func TestOptions(t *testing.T) {
	m := New(
		WithNamespace("hawaii"),
		WithBuckets([]float64{0.1, 1}),
		WithConstLabels(prometheus.Labels{"env": "test"}),
	)
	m.ObserveQuery("stations", time.Millisecond, nil)

	want := `
# HELP hawaii_store_queries_total Store queries by name and outcome.
# TYPE hawaii_store_queries_total counter
hawaii_store_queries_total{env="test",outcome="ok",query="stations"} 1
`
	if err := promtest.GatherAndCompare(m.Registry(), strings.NewReader(want), "hawaii_store_queries_total"); err != nil {
		t.Fatalf("GatherAndCompare: %v", err)
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New(WithRuntimeCollectors())

	a.ObserveQuery("stations", time.Millisecond, nil)
	if got := promtest.ToFloat64(b.queries.WithLabelValues("stations", "ok")); got != 0 {
		t.Fatalf("registries share state: b count = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "GET /healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `climate_http_requests_total{method="GET",route="GET /healthz",status="200"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}
}
