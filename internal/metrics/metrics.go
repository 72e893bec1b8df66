// Package metrics exposes Prometheus counters for the cheque lifecycle and HTTP layer.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikh-saqib/echeque-service/internal/models"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	transitions     *prometheus.CounterVec
	publishFailures prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "echeque",
			Name:      "transitions_total",
			Help:      "Committed cheque status transitions.",
		}, []string{"from", "to"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "echeque",
			Name:      "event_publish_failures_total",
			Help:      "Lifecycle events that could not be published.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "echeque",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(m.transitions, m.publishFailures, m.httpRequests)
	return m
}

// ObserveTransition counts a committed status change. from is empty for issue.
func (m *Metrics) ObserveTransition(from, to models.Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// PublishFailed counts an event that could not be delivered.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// ObserveRequest counts a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
