// Package metrics exposes Prometheus instruments for the core service.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hospitalcore/pkg/domain"
)

// Metrics implements core.MetricsRecorder.
type Metrics struct {
	// Transactions counts units of work by operation and outcome (success|error).
	Transactions *prometheus.CounterVec
	// Latency observes unit-of-work duration by operation.
	Latency *prometheus.HistogramVec
	// Violations counts rule violations by rule and severity.
	Violations *prometheus.CounterVec
}

// New registers the instruments on reg under namespace. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Units of work run against the hospital graph by operation and outcome",
		}, []string{"operation", "outcome"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Duration of units of work including rule evaluation and persistence",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_violations_total",
			Help:      "Rule violations reported at commit by rule and severity",
		}, []string{"rule", "severity"}),
	}
}

// Observe records one unit of work.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if m == nil || operation == "" {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.Transactions.WithLabelValues(operation, outcome).Inc()
	m.Latency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveViolations counts each violation in res.
func (m *Metrics) ObserveViolations(_ context.Context, res domain.Result) {
	if m == nil {
		return
	}
	for _, v := range res.Violations {
		m.Violations.WithLabelValues(v.Rule, string(v.Severity)).Inc()
	}
}
