// Package metrics provides Prometheus instrumentation for the short position service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal counts calls to the regulator, by kind (landing, csv, probe) and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortpos_upstream_requests_total",
		Help: "Requests made to the regulator's site",
	}, []string{"kind", "outcome"})

	// UpstreamLatency tracks regulator response time by kind.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shortpos_upstream_latency_seconds",
		Help:    "Regulator request latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	// ParsedRecords observes how many records each parsed CSV produced, by layout.
	ParsedRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shortpos_parsed_records",
		Help:    "Records produced per parsed CSV",
		Buckets: []float64{0, 10, 100, 250, 500, 1000, 2000, 5000},
	}, []string{"format"})

	// ReportCacheLookups counts report cache hits and misses.
	ReportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortpos_report_cache_lookups_total",
		Help: "Report cache lookups by result",
	}, []string{"result"})

	// ActiveSessions tracks sessions currently holding a window.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shortpos_active_sessions",
		Help: "Number of sessions with a report window",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortpos_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shortpos_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// ObserveUpstream records one regulator call.
func ObserveUpstream(kind, outcome string, start time.Time) {
	UpstreamRequestsTotal.WithLabelValues(kind, outcome).Inc()
	UpstreamLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
