package searchengine

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors of a Searcher.
type Metrics struct {
	SearchesTotal *prometheus.CounterVec
	SearchLatency *prometheus.HistogramVec
	SearchResults *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bileto",
				Name:      "searches_total",
				Help:      "Total searches and counts by entity, operation and outcome (ok, invalid, error).",
			},
			[]string{"entity", "op", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bileto",
				Name:      "search_latency_seconds",
				Help:      "Search latency in seconds, query building included.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"entity", "op"},
		),
		SearchResults: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bileto",
				Name:      "search_results_total_count",
				Help:      "Total number of matching rows per search.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
			},
			[]string{"entity"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.SearchesTotal, m.SearchLatency, m.SearchResults)
	}
	return m
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case IsKind(err, ErrQuerySyntax), IsKind(err, ErrQueryValue):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
