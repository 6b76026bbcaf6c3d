// Package metrics registers the service's Prometheus collectors: HTTP
// middleware counters/histograms, plus the pipeline's own domain metrics
// (ephemeris generation, territory labeling, POI selection, export writes).
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satplanner_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satplanner_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	ephemerisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satplanner_ephemeris_generation_duration_seconds",
			Help:    "Wall-clock duration of a single ephemeris generation run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	runsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satplanner_runs_cancelled_total",
			Help: "Total number of runs cancelled by a superseding run for the same consumer.",
		},
	)

	propagationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satplanner_propagation_errors_total",
			Help: "Total number of SGP4 propagation failures (decayed orbit, sanity-check rejection).",
		},
	)

	territoryRowsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satplanner_territory_rows_emitted_total",
			Help: "Total number of TerritoryRow records emitted by the labeler.",
		},
	)

	poiPicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satplanner_poi_picks_total",
			Help: "Total number of PoiPick records produced by the POI selector.",
		},
	)

	exportDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satplanner_export_write_duration_seconds",
			Help:    "Wall-clock duration of writing an export file.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		ephemerisDurationSeconds,
		runsCancelledTotal,
		propagationErrorsTotal,
		territoryRowsEmittedTotal,
		poiPicksTotal,
		exportDurationSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEphemerisGeneration observes how long one ephemeris run took.
func RecordEphemerisGeneration(d time.Duration) {
	ephemerisDurationSeconds.Observe(d.Seconds())
}

// RecordRunCancelled increments the single-flight cancellation counter.
func RecordRunCancelled() {
	runsCancelledTotal.Inc()
}

// RecordPropagationError increments the propagation failure counter.
func RecordPropagationError() {
	propagationErrorsTotal.Inc()
}

// RecordTerritoryRows adds n to the total territory rows emitted.
func RecordTerritoryRows(n int) {
	territoryRowsEmittedTotal.Add(float64(n))
}

// RecordPoiPicks adds n to the total POI picks produced.
func RecordPoiPicks(n int) {
	poiPicksTotal.Add(float64(n))
}

// RecordExportWrite observes how long writing an export of the given kind
// ("poi_csv", "poi_txt", "territory_csv") took.
func RecordExportWrite(kind string, d time.Duration) {
	exportDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request, labeling
// by normalizeRoute(path) so a run ID in the URL never produces a new
// metric series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}

// normalizeRoute collapses a request path to a fixed label set, so that a
// path segment carrying a run ID (or any other per-request value) never
// grows a new label value.
func normalizeRoute(path string) string {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/":
		return path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 3 && segments[0] == "api" && segments[1] == "v1" {
		switch segments[2] {
		case "datasets":
			if len(segments) == 4 {
				return "/api/v1/datasets/{kind}"
			}
		case "runs":
			switch {
			case len(segments) == 3:
				return "/api/v1/runs"
			case len(segments) == 4:
				return "/api/v1/runs/{id}"
			case len(segments) == 5 && segments[4] == "territory.csv":
				return "/api/v1/runs/{id}/territory.csv"
			case len(segments) == 5 && strings.HasPrefix(segments[4], "poi."):
				return "/api/v1/runs/{id}/" + segments[4]
			}
		}
	}

	return "other"
}
