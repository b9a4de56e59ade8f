// Package metrics provides Prometheus instrumentation for the Perch
// playback subsystem.
//
// The player service registers its metrics here and exposes them at
// GET /metrics (Prometheus scrape endpoint) via Handler().
//
// Standard metrics exposed automatically by prometheus/client_golang:
//   - go_goroutines, go_gc_duration_seconds, etc. (Go runtime)
//   - process_cpu_seconds_total, process_open_fds, etc. (process)
//
// Perch-specific metrics registered here:
//   perch_http_requests_total            — counter: HTTP requests by method/path/status
//   perch_http_request_duration_seconds  — histogram: HTTP latency by method/path
//   perch_checkpoint_writes_total        — counter: watch-progress writes by result
//   perch_subtitle_operations_total      — counter: subtitle ops by kind/result
//   perch_playback_errors_total          — counter: terminal media load failures
//   perch_track_uploads_total            — counter: subtitle track uploads by result
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ── Counters ──────────────────────────────────────────────────────────────────

// HTTPRequests counts HTTP requests by method, path, and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "perch_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// CheckpointWrites counts watch-progress checkpoint writes.
// result is "ok" or "error". Failed writes are retried implicitly by the
// next qualifying position update, so errors here are expected noise.
var CheckpointWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "perch_checkpoint_writes_total",
	Help: "Watch-progress checkpoint writes by result.",
}, []string{"result"})

// SubtitleOperations counts subtitle pipeline operations.
// kind is one of: convert, shift, replace, strip, upload.
var SubtitleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "perch_subtitle_operations_total",
	Help: "Subtitle pipeline operations by kind and result.",
}, []string{"kind", "result"})

// PlaybackErrors counts terminal media load failures surfaced to viewers.
var PlaybackErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "perch_playback_errors_total",
	Help: "Terminal media load failures.",
})

// TrackUploads counts subtitle track uploads by result (ok, rejected, error).
var TrackUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "perch_track_uploads_total",
	Help: "Subtitle track uploads by result.",
}, []string{"result"})

// ── Histograms ────────────────────────────────────────────────────────────────

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "perch_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
}, []string{"method", "path"})

// ── Handler ───────────────────────────────────────────────────────────────────

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ── Middleware ────────────────────────────────────────────────────────────────

// Middleware wraps an HTTP handler to record request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		dur := time.Since(start).Seconds()
		path := sanitizePath(r.URL.Path)
		status := strconv.Itoa(rw.status)
		HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		HTTPDuration.WithLabelValues(r.Method, path).Observe(dur)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// sanitizePath keeps label cardinality bounded for paths carrying IDs.
func sanitizePath(path string) string {
	if len(path) > 64 {
		return path[:64] + "..."
	}
	return path
}

// ── Init (registry-scoped) ────────────────────────────────────────────────────

// Init registers the Perch metric set with the given prometheus.Registerer.
// Provided for testing — pass prometheus.NewRegistry() to get an isolated
// registry. In production all metrics are registered via promauto to
// prometheus.DefaultRegisterer at package init time.
func Init(reg prometheus.Registerer) {
	httpReqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perch_http_requests_total",
		Help: "Total HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "perch_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	checkpointWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perch_checkpoint_writes_total",
		Help: "Watch-progress checkpoint writes by result.",
	}, []string{"result"})

	subtitleOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perch_subtitle_operations_total",
		Help: "Subtitle pipeline operations by kind and result.",
	}, []string{"kind", "result"})

	playbackErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perch_playback_errors_total",
		Help: "Terminal media load failures.",
	})

	trackUploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perch_track_uploads_total",
		Help: "Subtitle track uploads by result.",
	}, []string{"result"})

	reg.MustRegister(httpReqs, httpDur, checkpointWrites, subtitleOps, playbackErrors, trackUploads)
}
