package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the orchestrator's prometheus collectors.
type Metrics struct {
	Runs      *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Latency   prometheus.Histogram
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "readiness_analyses_total",
			Help: "Completed analyses by variant and mode.",
		}, []string{"variant", "mode"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "readiness_fallbacks_total",
			Help: "Analyses answered locally, by reason.",
		}, []string{"reason"}),
		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "readiness_narrative_request_seconds",
			Help:    "Latency of narrative service calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
}
