package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "algebra"

// Metrics holds the calculator's Prometheus collectors.
type Metrics struct {
	// Labels: operation, status (ok or the error kind)
	Requests *prometheus.CounterVec
	// Labels: operation
	Duration *prometheus.HistogramVec
	// Labels: what (rewrite passes, deadline, graph samples, ...)
	BudgetExceeded *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Calculate requests by operation and outcome.",
		}, []string{"operation", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent computing a result.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2},
		}, []string{"operation"}),
		BudgetExceeded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "budget_exceeded_total",
			Help:      "Requests stopped by a work limit.",
		}, []string{"what"}),
	}
}

// RecordRequest counts one request and observes its duration.
func (m *Metrics) RecordRequest(operation, status string, d time.Duration) {
	m.Requests.WithLabelValues(operation, status).Inc()
	m.Duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) RecordBudget(what string) {
	m.BudgetExceeded.WithLabelValues(what).Inc()
}
