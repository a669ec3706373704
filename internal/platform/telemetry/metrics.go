package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const metricsNamespace = "quotekeeper"

// Sync cycle outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomePushFailed = "push_failed"
)

// Tracer returns the tracer used for spans outside the HTTP middleware.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// SyncMetrics exposes reconcile and collection metrics on /-/metrics.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	cycles   *prometheus.CounterVec
	added    prometheus.Counter
	quotes   prometheus.Gauge
	duration prometheus.Histogram
}

// NewSyncMetrics registers the sync metrics with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)

	return &SyncMetrics{
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sync_cycles_total",
			Help:      "Completed reconcile cycles by outcome.",
		}, []string{"outcome"}),
		added: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sync_added_total",
			Help:      "Quotes added to the local collection by reconcile.",
		}),
		quotes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "quotes",
			Help:      "Number of quotes in the local collection.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sync_duration_seconds",
			Help:      "Reconcile cycle duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveCycle records one finished reconcile cycle.
func (m *SyncMetrics) ObserveCycle(added, total int, pushFailed bool, d time.Duration) {
	if m == nil {
		return
	}

	outcome := OutcomeOK
	if pushFailed {
		outcome = OutcomePushFailed
	}

	m.cycles.WithLabelValues(outcome).Inc()
	m.added.Add(float64(added))
	m.quotes.Set(float64(total))
	m.duration.Observe(d.Seconds())
}

// SetQuotes records the current collection size.
func (m *SyncMetrics) SetQuotes(n int) {
	if m == nil {
		return
	}

	m.quotes.Set(float64(n))
}
