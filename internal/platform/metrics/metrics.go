package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	Lookups            *prometheus.CounterVec
	LookupLatency      *prometheus.HistogramVec
	StrategyOutcomes   *prometheus.CounterVec
	EnrichmentFailures *prometheus.CounterVec
	CacheEvents        *prometheus.CounterVec
	UpstreamCalls      *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lookupbot_lookups_total",
			Help: "Total lookups by domain and outcome",
		}, []string{"domain", "outcome"}), // outcome: "resolved", "not_found", "cache_hit"

		LookupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lookupbot_lookup_duration_seconds",
			Help:    "Duration of a full resolve and enrich lookup",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"domain"}),

		StrategyOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lookupbot_strategy_outcomes_total",
			Help: "Identity resolver strategy outcomes",
		}, []string{"domain", "strategy", "outcome"}),

		EnrichmentFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lookupbot_enrichment_failures_total",
			Help: "Attribute groups degraded to sentinel values",
		}, []string{"domain", "group"}),

		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lookupbot_cache_events_total",
			Help: "Lookup result cache hits and misses",
		}, []string{"result"}),

		UpstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lookupbot_upstream_calls_total",
			Help: "Outbound API calls by host and outcome category",
		}, []string{"host", "category"}),
	}
}

// ObserveLookup records a finished lookup.
func (m *Metrics) ObserveLookup(domain, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(domain, outcome).Inc()
	m.LookupLatency.WithLabelValues(domain).Observe(d.Seconds())
}

// IncrementStrategy records one strategy outcome ("resolved", "failed", "skipped").
func (m *Metrics) IncrementStrategy(domain, strategy, outcome string) {
	if m != nil {
		m.StrategyOutcomes.WithLabelValues(domain, strategy, outcome).Inc()
	}
}

// IncrementEnrichmentFailure records a group that fell back to its sentinel.
func (m *Metrics) IncrementEnrichmentFailure(domain, group string) {
	if m != nil {
		m.EnrichmentFailures.WithLabelValues(domain, group).Inc()
	}
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheEvents.WithLabelValues("hit").Inc()
	}
}

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheEvents.WithLabelValues("miss").Inc()
	}
}

// IncrementUpstreamCall records an outbound call outcome.
func (m *Metrics) IncrementUpstreamCall(host, category string) {
	if m != nil {
		m.UpstreamCalls.WithLabelValues(host, category).Inc()
	}
}
