package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Metrics instance.
type Option func(*Metrics)

// WithNamespace sets the metric namespace. Default "climate".
func WithNamespace(ns string) Option {
	return func(m *Metrics) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithBuckets sets the histogram buckets for both latency histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Metrics) {
		m.runtime = true
	}
}

// WithConstLabels attaches constant labels (e.g. env) to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(m *Metrics) {
		m.constLabels = labels
	}
}
