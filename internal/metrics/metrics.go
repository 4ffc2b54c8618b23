// Package metrics exposes the Prometheus collectors shared by the
// dashboard features.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors registered against a single registry.
type Metrics struct {
	registry *prometheus.Registry

	requestCount  *prometheus.CounterVec
	uploadsTotal  *prometheus.CounterVec
	backendStatus prometheus.Gauge
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matdash_http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matdash_file_uploads_total",
				Help: "Files forwarded to the file service, by outcome.",
			},
			[]string{"outcome"},
		),
		backendStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "matdash_backend_status",
				Help: "Latest classified backend state: 2 online, 1 degraded, 0 offline.",
			},
		),
	}

	m.registry.MustRegister(m.requestCount, m.uploadsTotal, m.backendStatus)
	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by method, route pattern and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chiRouteContext(r); rctx != "" {
			path = rctx
		}
		m.requestCount.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
	})
}

// chiRouteContext returns the matched route pattern, if any, so that
// /api/files/browse?path=x and friends collapse into one series.
func chiRouteContext(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// RecordUpload counts one forwarded file by outcome ("success" or
// "failure").
func (m *Metrics) RecordUpload(outcome string) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

// SetBackendStatus records the classified backend state as a gauge value.
func (m *Metrics) SetBackendStatus(v float64) {
	m.backendStatus.Set(v)
}
