package advisory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes recorded by Metrics.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeFailure = "failure"
)

// Metrics counts advisory calls per call site and outcome.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics registers the advisory collectors with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "patrimonio",
				Subsystem: "advisory",
				Name:      "calls_total",
				Help:      "Advisory calls by call site and outcome (ok, empty, failure)",
			},
			[]string{"call", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "patrimonio",
				Subsystem: "advisory",
				Name:      "call_duration_seconds",
				Help:      "Advisory call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"call"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.latency)
	}
	return m
}

func (m *Metrics) observe(call, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(call, outcome).Inc()
	m.latency.WithLabelValues(call).Observe(elapsed.Seconds())
}
