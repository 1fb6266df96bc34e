// Package metrics exposes HTTP and query metrics on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

type Metrics struct {
	namespace   string
	buckets     []float64
	runtime     bool
	constLabels prometheus.Labels

	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	queries             *prometheus.CounterVec
	queryDuration       *prometheus.HistogramVec
}

// New builds the collectors and registers them on a fresh registry, so
// several instances can coexist in tests.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace: "climate",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by method, route pattern and status code.",
		ConstLabels: m.constLabels,
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request latency by method and route pattern.",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	}, []string{"method", "route"})

	m.queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "queries_total",
		Help:        "Store queries by name and outcome.",
		ConstLabels: m.constLabels,
	}, []string{"query", "outcome"})

	m.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "query_duration_seconds",
		Help:        "Store query latency by name.",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.registry.MustRegister(m.httpRequests, m.httpRequestDuration, m.queries, m.queryDuration)
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ObserveHTTP records one finished request. route is the matched mux
// pattern, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveQuery implements repository.QueryObserver.
func (m *Metrics) ObserveQuery(name string, elapsed time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.queries.WithLabelValues(name, outcome).Inc()
	m.queryDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
