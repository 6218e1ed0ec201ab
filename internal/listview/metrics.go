package listview

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch results recorded by Metrics.
const (
	ResultPopulated = "populated"
	ResultEmpty     = "empty"
	ResultFailed    = "failed"
	ResultStale     = "stale"
)

// Metrics records list fetch outcomes. A nil *Metrics records nothing.
type Metrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the list view collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listview",
			Name:      "fetches_total",
			Help:      "List fetches by list and result.",
		}, []string{"list", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listview",
			Name:      "fetch_duration_seconds",
			Help:      "List fetch latency by list and result.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"list", "result"}),
	}
}

// Observe records one fetch.
func (m *Metrics) Observe(list, result string, d time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"list": list, "result": result}
	m.fetches.With(labels).Inc()
	m.duration.With(labels).Observe(d.Seconds())
}
