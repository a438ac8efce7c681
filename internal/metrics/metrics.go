// Package metrics exposes Prometheus collectors for recipe creation, model calls
// and HTTP traffic. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Model call outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	recipesCreated  *prometheus.CounterVec
	modelRequests   *prometheus.CounterVec
	modelDuration   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recipesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipes_created_total",
				Help: "Total number of recipes persisted, by recipe type",
			},
			[]string{"recipe_type"},
		),
		modelRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "model_requests_total",
				Help: "Total number of language model calls",
			},
			[]string{"operation", "outcome"},
		),
		modelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "model_request_duration_seconds",
				Help:    "Language model call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecipeCreated counts a persisted recipe.
func (m *Metrics) RecipeCreated(recipeType string) {
	if m == nil {
		return
	}
	m.recipesCreated.WithLabelValues(recipeType).Inc()
}

// ModelRequest records one model call.
func (m *Metrics) ModelRequest(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.modelRequests.WithLabelValues(operation, outcome).Inc()
	m.modelDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// HTTPRequest records one served request. path should be the route template.
func (m *Metrics) HTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestTime.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
