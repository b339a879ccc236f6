package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the API's Prometheus collectors. Each Server owns a
// registry, so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	ClausesTotal    prometheus.Counter
	DatesTotal      prometheus.Counter
	EntitiesTotal   prometheus.Counter
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clausescope_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clausescope_http_request_duration_seconds",
			Help:    "Time to serve an HTTP request",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausescope_rate_limited_total",
			Help: "Requests rejected by the per-client rate limit",
		}),
		ClausesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausescope_clauses_extracted_total",
			Help: "Clauses extracted across all analyses",
		}),
		DatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausescope_dates_found_total",
			Help: "Date expressions found across all analyses and highlights",
		}),
		EntitiesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "clausescope_entities_highlighted_total",
			Help: "Entity spans rendered across all highlights",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
