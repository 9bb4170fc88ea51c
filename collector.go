package retriever

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes reported to a Collector.
const (
	OutcomeHit        = "hit"
	OutcomeZeroResult = "zero_result"
	OutcomeError      = "error"
)

// Collector receives operational measurements from an Engine.
// Implement it to integrate with a monitoring system; PrometheusCollector is
// the bundled implementation.
type Collector interface {
	// RecordQuery is called after each search with its outcome (one of the
	// Outcome constants), the size of the matched candidate set, and the time
	// taken.
	RecordQuery(outcome string, candidates int, duration time.Duration)

	// RecordCache is called on each cache lookup.
	RecordCache(hit bool)

	// RecordIndexed is called after each successful Fit or PartialFit with
	// the number of documents added.
	RecordIndexed(documents int)

	// RecordEvaluation is called after each Evaluate or Score run.
	RecordEvaluation(queries int, duration time.Duration, err error)
}

// NoopCollector discards every measurement.
type NoopCollector struct{}

func (NoopCollector) RecordQuery(string, int, time.Duration)     {}
func (NoopCollector) RecordCache(bool)                           {}
func (NoopCollector) RecordIndexed(int)                          {}
func (NoopCollector) RecordEvaluation(int, time.Duration, error) {}

// Compile-time checks to ensure PrometheusCollector implements Collector
var _ Collector = (*PrometheusCollector)(nil)

// PrometheusCollector exports engine measurements as Prometheus metrics.
type PrometheusCollector struct {
	QueriesTotal       *prometheus.CounterVec
	QueryLatency       prometheus.Histogram
	QueryCandidates    prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	DocsIndexedTotal   prometheus.Counter
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
}

// NewPrometheusCollector creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retriever_queries_total",
				Help: "Total queries by outcome (hit, zero_result, error).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retriever_query_latency_seconds",
				Help:    "Query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		QueryCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retriever_query_candidates",
				Help:    "Number of documents matched by the boolean stage per query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retriever_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retriever_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retriever_documents_indexed_total",
				Help: "Total number of documents indexed by fit and partial fit.",
			},
		),
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retriever_evaluations_total",
				Help: "Total evaluation runs by status (ok, error).",
			},
			[]string{"status"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retriever_evaluation_duration_seconds",
				Help:    "Evaluation run duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, col := range []prometheus.Collector{
		c.QueriesTotal,
		c.QueryLatency,
		c.QueryCandidates,
		c.CacheHitsTotal,
		c.CacheMissesTotal,
		c.DocsIndexedTotal,
		c.EvaluationsTotal,
		c.EvaluationDuration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordQuery implements Collector.
func (c *PrometheusCollector) RecordQuery(outcome string, candidates int, duration time.Duration) {
	c.QueriesTotal.WithLabelValues(outcome).Inc()
	c.QueryLatency.Observe(duration.Seconds())
	c.QueryCandidates.Observe(float64(candidates))
}

// RecordCache implements Collector.
func (c *PrometheusCollector) RecordCache(hit bool) {
	if hit {
		c.CacheHitsTotal.Inc()
		return
	}
	c.CacheMissesTotal.Inc()
}

// RecordIndexed implements Collector.
func (c *PrometheusCollector) RecordIndexed(documents int) {
	c.DocsIndexedTotal.Add(float64(documents))
}

// RecordEvaluation implements Collector.
func (c *PrometheusCollector) RecordEvaluation(queries int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.EvaluationsTotal.WithLabelValues(status).Inc()
	c.EvaluationDuration.Observe(duration.Seconds())
}
