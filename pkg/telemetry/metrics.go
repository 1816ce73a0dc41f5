// Copyright 2025 Veyra Protocol
//
// Package telemetry exposes Prometheus metrics for the resolve/verify/
// issue operations (SPEC_FULL.md DOMAIN STACK: prometheus/client_golang
// wired into the resolve/verify/issue hot paths). Grounded on the
// standard promauto registration idiom since no example repo in the
// retrieval pack exercises this client directly (see DESIGN.md).
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the counters and histograms the core's operations
// report against. Callers hold one Metrics per process and pass it
// explicitly; there are no package-level globals (spec §5: "no mutable
// globals").
type Metrics struct {
	registry *prometheus.Registry

	ResolveTotal   *prometheus.CounterVec
	ResolveLatency *prometheus.HistogramVec

	VerifyTotal   *prometheus.CounterVec
	VerifyLatency *prometheus.HistogramVec

	IssueTotal *prometheus.CounterVec
}

// New builds a Metrics instance registered against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ResolveTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "vey",
			Subsystem: "resolver",
			Name:      "resolve_total",
			Help:      "Total PID resolution attempts by result.",
		}, []string{"result"}),
		ResolveLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vey",
			Subsystem: "resolver",
			Name:      "resolve_duration_seconds",
			Help:      "Resolve call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		VerifyTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "vey",
			Subsystem: "zkp",
			Name:      "verify_total",
			Help:      "Total proof verifications by pattern and outcome.",
		}, []string{"pattern", "outcome"}),
		VerifyLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vey",
			Subsystem: "zkp",
			Name:      "verify_duration_seconds",
			Help:      "Proof verification latency in seconds, by pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pattern"}),
		IssueTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "vey",
			Subsystem: "vc",
			Name:      "issue_total",
			Help:      "Total credentials issued by type.",
		}, []string{"type"}),
	}
	return m
}

// Handler returns an http.Handler serving this Metrics' registry in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolve records one resolve call's outcome and latency.
func (m *Metrics) ObserveResolve(result string, seconds float64) {
	m.ResolveTotal.WithLabelValues(result).Inc()
	m.ResolveLatency.WithLabelValues(result).Observe(seconds)
}

// ObserveVerify records one proof verification's outcome and latency.
func (m *Metrics) ObserveVerify(pattern, outcome string, seconds float64) {
	m.VerifyTotal.WithLabelValues(pattern, outcome).Inc()
	m.VerifyLatency.WithLabelValues(pattern).Observe(seconds)
}

// ObserveIssue records one credential issuance.
func (m *Metrics) ObserveIssue(credType string) {
	m.IssueTotal.WithLabelValues(credType).Inc()
}
