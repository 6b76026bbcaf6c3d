package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/star/satplanner/internal/api"
	"github.com/star/satplanner/internal/assets"
	"github.com/star/satplanner/internal/auth"
	"github.com/star/satplanner/internal/ephem"
	"github.com/star/satplanner/internal/poiselect"
	"github.com/star/satplanner/internal/runs"
	"github.com/star/satplanner/internal/sink"
	"github.com/star/satplanner/internal/tiles"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("PLANNER_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	datasetCfg := loadDatasetConfig(logger)
	countries := loadCountryDataset(logger, datasetCfg.CountryCSV)
	pois := loadPoiDataset(logger, datasetCfg.PoiCSV)

	workers := loadWorkerConfig(logger)
	gridCellDeg := loadGridCellConfig(logger)
	engine := ephem.NewEngine(logger)
	registry := runs.NewRegistryWithGrid(logger, engine, workers, gridCellDeg, countries, pois)

	streamChunk := loadStreamChunkConfig(logger)
	trustProxy := loadTrustProxyConfig(logger)
	srv := api.NewServer(addr, logger, authCfg, registry, datasetCfg.PoiCSV, streamChunk, trustProxy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "poi_workers", workers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("PLANNER_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("PLANNER_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("PLANNER_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("PLANNER_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// datasetConfig holds the on-disk paths for the territory and POI CSV
// datasets; an empty path means "use the embedded default".
type datasetConfig struct {
	CountryCSV string
	PoiCSV     string
}

func loadDatasetConfig(logger *slog.Logger) datasetConfig {
	cfg := datasetConfig{
		CountryCSV: os.Getenv("PLANNER_COUNTRY_CSV"),
		PoiCSV:     os.Getenv("PLANNER_POI_CSV"),
	}
	logger.Info("dataset config", "country_csv", cfg.CountryCSV, "poi_csv", cfg.PoiCSV)
	return cfg
}

func loadCountryDataset(logger *slog.Logger, path string) []tiles.CountryTile {
	if path == "" {
		countries, err := assets.DefaultCountryTiles(logger)
		if err != nil {
			logger.Error("failed to load embedded default country dataset", "error", err)
			return nil
		}
		return countries
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open country dataset, starting with an empty territory filter", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	countries, err := tiles.LoadCountryTiles(f, path, logger)
	if err != nil {
		logger.Error("failed to load country dataset, starting with an empty territory filter", "path", path, "error", err)
		return nil
	}
	logger.Info("loaded country dataset", "path", path, "count", len(countries))
	return countries
}

func loadPoiDataset(logger *slog.Logger, path string) []tiles.PoiTile {
	if path == "" {
		pois, err := assets.DefaultPoiTiles(logger)
		if err != nil {
			logger.Error("failed to load embedded default POI dataset", "error", err)
			return nil
		}
		return pois
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open POI dataset, starting with an empty POI selector", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	pois, err := tiles.LoadPoiTiles(f, path, logger)
	if err != nil {
		logger.Error("failed to load POI dataset, starting with an empty POI selector", "path", path, "error", err)
		return nil
	}
	logger.Info("loaded POI dataset", "path", path, "count", len(pois))
	return pois
}

func loadWorkerConfig(logger *slog.Logger) int {
	workers := poiselect.ClampWorkers(runtime.NumCPU())

	if v := os.Getenv("PLANNER_POI_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid PLANNER_POI_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = poiselect.ClampWorkers(n)
		}
	}

	logger.Info("poi selector config", "workers", workers)
	return workers
}

func loadGridCellConfig(logger *slog.Logger) float64 {
	cellDeg := 1.0

	if v := os.Getenv("PLANNER_GRID_CELL_DEG"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n <= 0 {
			logger.Warn("invalid PLANNER_GRID_CELL_DEG value, using default", "value", v, "default", cellDeg)
		} else {
			cellDeg = n
		}
	}

	logger.Info("spatial grid config", "cell_deg", cellDeg)
	return cellDeg
}

func loadStreamChunkConfig(logger *slog.Logger) int {
	chunk := sink.DefaultChunkSize

	if v := os.Getenv("PLANNER_STREAM_CHUNK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid PLANNER_STREAM_CHUNK value, using default", "value", v, "default", chunk)
		} else {
			chunk = n
		}
	}

	logger.Info("export stream config", "chunk_size", chunk)
	return chunk
}

// loadTrustProxyConfig controls whether access-log client IPs trust
// X-Forwarded-For/X-Real-IP. Only enable this behind a trusted reverse
// proxy that sets those headers itself.
func loadTrustProxyConfig(logger *slog.Logger) bool {
	v := os.Getenv("PLANNER_TRUST_PROXY")
	if v == "" {
		return false
	}
	trust, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid PLANNER_TRUST_PROXY value, defaulting to false", "value", v)
		return false
	}
	return trust
}
