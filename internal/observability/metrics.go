package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for Entrybase
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Entry query metrics
	entryQueriesTotal   *prometheus.CounterVec
	entryQueryDuration  *prometheus.HistogramVec

	// Handle resolution metrics
	handleLookupsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entrybase_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entrybase_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "entrybase_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		entryQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entrybase_entry_queries_total",
				Help: "Total number of entry queries by outcome (ok, empty, error)",
			},
			[]string{"outcome"},
		),
		entryQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entrybase_entry_query_duration_seconds",
				Help:    "Entry query latency in seconds, preparation included",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"outcome"},
		),
		handleLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entrybase_handle_lookups_total",
				Help: "Total number of handle resolution lookups",
			},
			[]string{"table"},
		),
	}
}

// MetricsMiddleware returns a Fiber middleware that collects HTTP metrics
func (m *Metrics) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		method := c.Method()
		err := c.Next()

		duration := time.Since(start).Seconds()
		status := statusClass(c.Response().StatusCode())
		path := c.Route().Path

		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

		return err
	}
}

// RecordEntryQuery records the outcome and latency of one entry query
func (m *Metrics) RecordEntryQuery(outcome string, duration time.Duration) {
	m.entryQueriesTotal.WithLabelValues(outcome).Inc()
	m.entryQueryDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordHandleLookup records one handle resolution round-trip
func (m *Metrics) RecordHandleLookup(table string) {
	m.handleLookupsTotal.WithLabelValues(table).Inc()
}

// Handler returns a Fiber handler that exposes Prometheus metrics
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// statusClass buckets HTTP status codes to keep label cardinality low
func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
