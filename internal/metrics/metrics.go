// Package metrics exposes the Prometheus instruments used by the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the registry and instruments so tests can run with an
// isolated registry instead of the global default.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FaultsInjected  *prometheus.CounterVec
}

// New creates a Metrics bundle backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talentflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, labeled by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "talentflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, including injected delay.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		FaultsInjected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talentflow",
			Subsystem: "http",
			Name:      "faults_injected_total",
			Help:      "Simulated failures injected before reaching a handler.",
		}, []string{"route"}),
	}
}
