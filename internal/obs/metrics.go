package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	resyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_resyncs_total",
			Help: "Full cache resynchronizations against the record store.",
		},
		[]string{"outcome"},
	)

	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_mutations_total",
			Help: "Record store mutations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	loginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_login_failures_total",
		Help: "Rejected login attempts.",
	})

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_report_exports_total",
			Help: "Report exports by format.",
		},
		[]string{"format"},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		resyncsTotal, mutationsTotal, loginFailuresTotal, exportsTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveResync records the outcome ("ok"/"error") of a cache resync.
func ObserveResync(outcome string) {
	resyncsTotal.WithLabelValues(outcome).Inc()
}

// ObserveMutation records a store mutation attempt.
func ObserveMutation(op, outcome string) {
	mutationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveLoginFailure counts a rejected credential pair.
func ObserveLoginFailure() {
	loginFailuresTotal.Inc()
}

// ObserveExport counts a report export ("csv"/"pdf").
func ObserveExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

// CanonicalPath collapses resource ids out of the path so metric labels stay
// bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/permits/"); ok && rest != "" {
		if strings.HasSuffix(rest, "/disc") && !strings.Contains(strings.TrimSuffix(rest, "/disc"), "/") {
			return "/v1/permits/:id/disc"
		}
		if !strings.Contains(rest, "/") {
			return "/v1/permits/:id"
		}
	}
	if rest, ok := strings.CutPrefix(path, "/v1/users/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/v1/users/:id"
	}
	return path
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metrics labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
