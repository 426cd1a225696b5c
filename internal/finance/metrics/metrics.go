package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the finance module. It satisfies the
// observer interfaces of the upstream clients, the cache, the resolver and
// the aggregator. A nil *Metrics records nothing.
type Metrics struct {
	// Upstream call latency by provider, endpoint and outcome category
	UpstreamLatency *prometheus.HistogramVec

	// Cache lookups by call site and outcome
	CacheLookups *prometheus.CounterVec

	// Resolution strategy outcomes
	StrategyOutcome *prometheus.CounterVec
	ResolveLatency  prometheus.Histogram

	// Aggregator fetch latency by kind and outcome
	FetchLatency *prometheus.HistogramVec

	// Report outcomes and overall data confidence
	ReportOutcome     *prometheus.CounterVec
	ConfidenceOutcome *prometheus.CounterVec
	ReportLatency     prometheus.Histogram
}

// New registers the finance metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the finance metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civicfin_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls by provider, endpoint and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider", "endpoint", "outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfin_cache_lookups_total",
			Help: "Cache lookups by call site and outcome",
		}, []string{"site", "outcome"}), // outcome: "hit", "miss", "error"

		StrategyOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfin_resolver_strategy_outcomes_total",
			Help: "Candidate resolution strategy outcomes",
		}, []string{"strategy", "outcome"}),

		ResolveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicfin_resolver_duration_seconds",
			Help:    "Duration of candidate resolution across all strategies",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civicfin_aggregator_fetch_duration_seconds",
			Help:    "Duration of aggregator data fetches by kind and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"kind", "outcome"}),

		ReportOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfin_finance_reports_total",
			Help: "Finance report requests by outcome",
		}, []string{"outcome"}), // outcome: "ok", "partial", or an error code

		ConfidenceOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfin_finance_confidence_total",
			Help: "Overall data confidence of served finance reports",
		}, []string{"confidence"}),

		ReportLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicfin_finance_report_duration_seconds",
			Help:    "Duration of finance report generation including resolution and aggregation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(provider, endpoint, outcome string, d time.Duration) {
	if m != nil {
		m.UpstreamLatency.WithLabelValues(provider, endpoint, outcome).Observe(d.Seconds())
	}
}

// ObserveCache records one cache lookup.
func (m *Metrics) ObserveCache(site, outcome string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(site, outcome).Inc()
	}
}

// ObserveStrategy records one strategy attempt.
func (m *Metrics) ObserveStrategy(strategy, outcome string) {
	if m != nil {
		m.StrategyOutcome.WithLabelValues(strategy, outcome).Inc()
	}
}

// ObserveResolveLatency records a full resolution.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}

// ObserveFetch records one aggregator fetch.
func (m *Metrics) ObserveFetch(kind, outcome string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(kind, outcome).Observe(d.Seconds())
	}
}

// IncrementReport records a report outcome.
func (m *Metrics) IncrementReport(outcome string) {
	if m != nil {
		m.ReportOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementConfidence records the confidence of a served report.
func (m *Metrics) IncrementConfidence(confidence string) {
	if m != nil {
		m.ConfidenceOutcome.WithLabelValues(confidence).Inc()
	}
}

// ObserveReportLatency records the total report duration.
func (m *Metrics) ObserveReportLatency(d time.Duration) {
	if m != nil {
		m.ReportLatency.Observe(d.Seconds())
	}
}
