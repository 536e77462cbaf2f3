package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// #region metrics-struct

// Metrics holds the pipeline's counters. Each instance owns its registry,
// so several pipelines in one process do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	evaluations   *prometheus.CounterVec
	errors        *prometheus.CounterVec
	notifyFailure prometheus.Counter
	scores        *prometheus.HistogramVec
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradepipe",
			Name:      "evaluations_total",
			Help:      "Evaluations completed, by scale and label.",
		}, []string{"scale", "label"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradepipe",
			Name:      "evaluation_errors_total",
			Help:      "Evaluations that failed, by error kind.",
		}, []string{"kind"}),
		notifyFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gradepipe",
			Name:      "notification_failures_total",
			Help:      "Result notifications that could not be delivered.",
		}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gradepipe",
			Name:      "score",
			Help:      "Distribution of computed scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"scale"}),
	}
	m.Registry.MustRegister(m.evaluations, m.errors, m.notifyFailure, m.scores)
	return m
}

// #endregion

// #region observers

// ObserveEvaluation records a successful evaluation.
func (m *Metrics) ObserveEvaluation(scale, label string, score float64) {
	m.evaluations.WithLabelValues(scale, label).Inc()
	m.scores.WithLabelValues(scale).Observe(score)
}

// ObserveError records a failed evaluation.
func (m *Metrics) ObserveError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// ObserveNotifyFailure records an undeliverable notification.
func (m *Metrics) ObserveNotifyFailure() {
	m.notifyFailure.Inc()
}

// #endregion
