package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InferenceAttempts *prometheus.CounterVec
	RateLimited       *prometheus.CounterVec
	QuestionsStored   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers all instruments on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		InferenceAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_attempts_total",
			Help:      "Inference attempts by outcome.",
		}, []string{"outcome"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
		QuestionsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_stored_total",
			Help:      "Question/answer records persisted.",
		}),
		gatherer: reg,
	}
}

// ObserveInferenceAttempt counts one call to the inference endpoint.
func (m *Metrics) ObserveInferenceAttempt(outcome string) {
	if m == nil {
		return
	}
	m.InferenceAttempts.WithLabelValues(outcome).Inc()
}

// ObserveRateLimited counts one request rejected on route.
func (m *Metrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

// ObserveQuestionStored counts one persisted record.
func (m *Metrics) ObserveQuestionStored() {
	if m == nil {
		return
	}
	m.QuestionsStored.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
