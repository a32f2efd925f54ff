package guard

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes guard decision counters and the risk score distribution.
// Construct with NewMetrics and attach via WithMetrics; a nil Metrics
// disables instrumentation.
type Metrics struct {
	decisions *prometheus.CounterVec
	riskScore prometheus.Histogram
}

// NewMetrics creates and registers the guard metrics on reg. Pass
// prometheus.DefaultRegisterer for the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "decisions_total",
			Help:      "Total guard decisions by action and denial code.",
		}, []string{"action", "code"}), // action: "allow", "deny"

		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "risk_score",
			Help:      "Distribution of aggregated risk scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 75, 90, 100},
		}),
	}

	reg.MustRegister(m.decisions, m.riskScore)
	return m
}

func (m *Metrics) observe(d Decision) {
	if m == nil {
		return
	}

	action, code := "deny", d.Code
	if d.Allowed {
		action, code = "allow", "OK"
	}
	m.decisions.WithLabelValues(action, code).Inc()

	if d.Assessment != nil {
		m.riskScore.Observe(float64(d.Assessment.Score))
	}
}
