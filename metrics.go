package urlmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeMatched          = "matched"
	outcomeNotFound         = "not_found"
	outcomeMethodNotAllowed = "method_not_allowed"
	outcomeRedirect         = "redirect"
	outcomeOptions          = "options"
)

// matchMetrics counts Router dispatch outcomes. A nil *matchMetrics is a
// no-op.
type matchMetrics struct {
	total *prometheus.CounterVec
}

func newMatchMetrics(reg prometheus.Registerer) *matchMetrics {
	if reg == nil {
		return nil
	}

	m := &matchMetrics{
		total: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "urlmap",
				Name:      "match_total",
				Help:      "Total number of dispatched requests by match outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, outcome := range []string{
		outcomeMatched,
		outcomeNotFound,
		outcomeMethodNotAllowed,
		outcomeRedirect,
		outcomeOptions,
	} {
		m.total.WithLabelValues(outcome)
	}

	return m
}

func (m *matchMetrics) observe(outcome string) {
	if m == nil {
		return
	}

	m.total.WithLabelValues(outcome).Inc()
}
