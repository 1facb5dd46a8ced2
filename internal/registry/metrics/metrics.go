package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpListAll  = "list_all"
	OpCount    = "count"
	OpListPage = "list_page"
)

// Metrics provides observability for the registry query path.
// Tracks query volume, latency, result sizes and indices skipped on read.
type Metrics struct {
	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	ItemsReturned  *prometheus.HistogramVec
	SkippedIndices prometheus.Counter
	FeedAppended   prometheus.Counter
	FeedRejected   prometheus.Counter
}

// New creates a new Metrics instance with all registry metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketfactory_registry_queries_total",
			Help: "Total registry queries by operation and outcome",
		}, []string{"operation", "outcome"}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketfactory_registry_query_duration_seconds",
			Help:    "Duration of registry queries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		ItemsReturned: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketfactory_registry_items_returned",
			Help:    "Number of market IDs returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"operation"}),
		SkippedIndices: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketfactory_registry_skipped_indices_total",
			Help: "Indices inside the computed range that the store could not return",
		}),
		FeedAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketfactory_feed_appended_total",
			Help: "Market IDs appended to the replica by the replication feed",
		}),
		FeedRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketfactory_feed_rejected_total",
			Help: "Feed records that could not be decoded",
		}),
	}
}

// ObserveQuery records the outcome, latency and result size of one query.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveQuery(operation, outcome string, start time.Time, items int) {
	m.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	m.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if outcome == "ok" && operation != OpCount {
		m.ItemsReturned.WithLabelValues(operation).Observe(float64(items))
	}
}

// AddSkipped records indices dropped by skip-on-miss iteration.
func (m *Metrics) AddSkipped(n int) {
	if n > 0 {
		m.SkippedIndices.Add(float64(n))
	}
}
