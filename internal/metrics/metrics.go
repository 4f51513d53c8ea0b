// Package metrics provides Prometheus metrics for the chat backend
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors of one server instance. Each instance owns
// its registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chat metrics
	ResolutionsTotal         *prometheus.CounterVec
	AssistantRequestsTotal   *prometheus.CounterVec
	AssistantRequestDuration prometheus.Histogram
	ActiveSessions           prometheus.Gauge

	// Back office metrics
	DecisionsTotal *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sathi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sathi_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sathi_chat_resolutions_total",
				Help: "Chat turns by resolution source (local rule or remote assistant) and intent",
			},
			[]string{"source", "intent"},
		),
		AssistantRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sathi_assistant_requests_total",
				Help: "Remote assistant calls by outcome",
			},
			[]string{"status"},
		),
		AssistantRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sathi_assistant_request_duration_seconds",
				Help:    "Duration of remote assistant calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sathi_chat_sessions_active",
				Help: "Number of live chat sessions",
			},
		),
		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sathi_backoffice_decisions_total",
				Help: "Back office document decisions by action",
			},
			[]string{"action"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordResolution counts one answered chat turn.
func (m *Metrics) RecordResolution(source, intent string) {
	m.ResolutionsTotal.WithLabelValues(source, intent).Inc()
}

// RecordAssistantRequest records the outcome and latency of a remote call.
func (m *Metrics) RecordAssistantRequest(status string, duration time.Duration) {
	m.AssistantRequestsTotal.WithLabelValues(status).Inc()
	m.AssistantRequestDuration.Observe(duration.Seconds())
}

// Middleware records request count and latency labelled by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
