// Package metrics exposes Prometheus metrics for imports, registrations and
// HTTP traffic.
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

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// Metrics implements core.Recorder and instruments HTTP handlers.
type Metrics struct {
	registry *prometheus.Registry

	AthletesRegistered *prometheus.CounterVec
	RowsRejected       *prometheus.CounterVec
	ImportDuration     *prometheus.HistogramVec
	ImportRows         prometheus.Histogram
	WritesRejected     *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		AthletesRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "entrydesk_athletes_registered_total",
			Help: "Athletes registered by source",
		}, []string{"source"}), // source: "manual", "upload"

		RowsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "entrydesk_rows_rejected_total",
			Help: "Rejected athlete rows by reason",
		}, []string{"reason"}), // reason: "validation", "duplicate", "persistence"

		ImportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "entrydesk_import_duration_seconds",
			Help:    "Spreadsheet import duration by outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),

		ImportRows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "entrydesk_import_rows",
			Help:    "Data rows per imported spreadsheet",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		WritesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "entrydesk_writes_rejected_total",
			Help: "Mutations refused while registrations are closed",
		}, []string{"operation"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "entrydesk_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "entrydesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// TrackLimiter exports the import limiter's occupancy.
func (m *Metrics) TrackLimiter(l *core.UploadLimiter) {
	f := promauto.With(m.registry)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "entrydesk_imports_active",
		Help: "Imports currently holding a limiter slot",
	}, func() float64 { return float64(l.ActiveCount()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "entrydesk_imports_slots_available",
		Help: "Free import limiter slots",
	}, func() float64 { return float64(l.Available()) })
}

// TrackWrites exports whether registrations are open.
func (m *Metrics) TrackWrites(enabled func() bool) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "entrydesk_writes_enabled",
		Help: "1 while registrations are open",
	}, func() float64 {
		if enabled() {
			return 1
		}
		return 0
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// AthleteRegistered implements core.Recorder.
func (m *Metrics) AthleteRegistered(source string) {
	m.AthletesRegistered.WithLabelValues(source).Inc()
}

// RowRejected implements core.Recorder.
func (m *Metrics) RowRejected(reason string) {
	m.RowsRejected.WithLabelValues(reason).Inc()
}

// ImportCompleted implements core.Recorder.
func (m *Metrics) ImportCompleted(outcome string, rows int, d time.Duration) {
	m.ImportDuration.WithLabelValues(outcome).Observe(d.Seconds())
	m.ImportRows.Observe(float64(rows))
}

// WriteRejected implements core.Recorder.
func (m *Metrics) WriteRejected(op string) {
	m.WritesRejected.WithLabelValues(op).Inc()
}

// Middleware records request counts and latency labelled by chi route
// pattern, so path parameters do not multiply series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
