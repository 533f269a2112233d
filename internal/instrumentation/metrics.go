package instrumentation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the feed service.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	FallbackHits     *prometheus.CounterVec
	AggregateLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketfeed_upstream_requests_total",
			Help: "Upstream fetches by adapter and outcome",
		}, []string{"adapter", "outcome"}),

		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketfeed_upstream_latency_ms",
			Help:    "Upstream fetch latency in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"adapter"}),

		FallbackHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketfeed_fallback_hits_total",
			Help: "Responses served from the fallback store by data kind",
		}, []string{"kind"}),

		AggregateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketfeed_aggregate_latency_ms",
			Help:    "End-to-end aggregation latency in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"kind"}),
	}
}

// RecordUpstream records one upstream fetch outcome with its latency.
func (m *Metrics) RecordUpstream(adapter string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.UpstreamRequests.WithLabelValues(adapter, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(adapter).Observe(float64(elapsed.Milliseconds()))
}

// RecordFallback counts a slice served from the fallback store.
func (m *Metrics) RecordFallback(kind string) {
	if m == nil {
		return
	}
	m.FallbackHits.WithLabelValues(kind).Inc()
}

// RecordAggregate records one full aggregation.
func (m *Metrics) RecordAggregate(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AggregateLatency.WithLabelValues(kind).Observe(float64(elapsed.Milliseconds()))
}
