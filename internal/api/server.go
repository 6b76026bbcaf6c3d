package api

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/star/satplanner/internal/auth"
	"github.com/star/satplanner/internal/health"
	"github.com/star/satplanner/internal/httputil"
	"github.com/star/satplanner/internal/metrics"
	"github.com/star/satplanner/internal/runs"
	"github.com/star/satplanner/internal/tiles"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer     *http.Server
	logger         *slog.Logger
	registry       *runs.Registry
	poiDatasetPath string
	streamChunk    int
}

// NewServer creates a configured HTTP server wired to registry for run
// orchestration/export, and poiDatasetPath for the dataset append endpoint
// (with an empty path, POST /api/v1/datasets/poi fails to append and
// answers with an error). streamChunk is the export streaming chunk size
// (PLANNER_STREAM_CHUNK); 0 uses sink.DefaultChunkSize. trustProxy controls whether access logs trust
// X-Forwarded-For/X-Real-IP over the raw connection address.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, registry *runs.Registry, poiDatasetPath string, streamChunk int, trustProxy bool) *Server {
	s := &Server{logger: logger, registry: registry, poiDatasetPath: poiDatasetPath, streamChunk: streamChunk}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/runs", s.handleStartRun)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleRunStatus)
	mux.HandleFunc("GET /api/v1/runs/{id}/territory.csv", s.handleTerritoryExport)
	mux.HandleFunc("GET /api/v1/runs/{id}/poi.csv", s.handlePoiExport)
	mux.HandleFunc("POST /api/v1/datasets/poi", s.handleAppendPOI)

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger, trustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// reloadPoiDataset re-reads poiDatasetPath from disk and swaps it into the
// registry's spatial index. A no-op when no on-disk path is configured.
func (s *Server) reloadPoiDataset() error {
	if s.poiDatasetPath == "" {
		return nil
	}
	f, err := os.Open(s.poiDatasetPath)
	if err != nil {
		return err
	}
	defer f.Close()

	pois, err := tiles.LoadPoiTiles(f, s.poiDatasetPath, s.logger)
	if err != nil {
		return err
	}
	s.registry.ReplacePois(pois)
	return nil
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
