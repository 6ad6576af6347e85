// Package metrics exports Prometheus metrics for the insights engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "insights"

// Query outcome labels.
const (
	StatusOK          = "ok"
	StatusConfigError = "config_error"
	StatusStoreError  = "store_error"
	StatusCanceled    = "canceled"
)

// Metrics holds the engine's collectors. A nil *Metrics records nothing.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	RecordsScanned  *prometheus.CounterVec
	RecordsImported prometheus.Counter
	RecordsRejected prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Aggregation queries by shape and outcome.",
			},
			[]string{"shape", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Aggregation query latency.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"shape"},
		),
		RecordsScanned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_scanned_total",
				Help:      "Records read from the store by aggregation queries.",
			},
			[]string{"shape"},
		),
		RecordsImported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_imported_total",
			Help:      "Records written to the store by imports.",
		}),
		RecordsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Records dropped by import validation.",
		}),
	}
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(shape, status string, elapsed time.Duration, scanned int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(shape, status).Inc()
	m.QueryDuration.WithLabelValues(shape).Observe(elapsed.Seconds())
	if scanned > 0 {
		m.RecordsScanned.WithLabelValues(shape).Add(float64(scanned))
	}
}

// ObserveImport records the outcome of one import.
func (m *Metrics) ObserveImport(imported, rejected int) {
	if m == nil {
		return
	}
	m.RecordsImported.Add(float64(imported))
	m.RecordsRejected.Add(float64(rejected))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
