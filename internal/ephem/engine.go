package ephem

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/star/satplanner/internal/metrics"
	"github.com/star/satplanner/internal/propagation"
	"github.com/star/satplanner/internal/timeutil"
	"github.com/star/satplanner/internal/transform"
)

// Engine generates ground-track buffers from an orbital state.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an ephemeris engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Generate advances state from jdNow over horizonSec at stepSec intervals,
// producing exactly floor(horizonSec/stepSec)+1 samples in chronological
// order. obs may be nil; when present, every sample also carries
// observer-relative look angles. Polls ctx at every sample; on
// cancellation returns (nil, ctx.Err()) and discards the in-flight buffer
// entirely — no partial publication to consumers.
func (e *Engine) Generate(ctx context.Context, state propagation.SatState, obs *transform.ObserverPosition, jdNow, horizonSec, stepSec float64) (*Buffer, error) {
	start := time.Now()
	n := int(math.Floor(horizonSec/stepSec)) + 1
	samples := make([]Sample, 0, n)

	for k := 0; k < n; k++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		jd := jdNow + float64(k)*stepSec/86400.0

		var s Sample
		s.JD = jd
		s.TimeStr = timeutil.FormatUTC(timeutil.JDToUTC(jd))

		if obs != nil {
			lat, lon, look, err := propagation.AdvanceWithLookAngles(state, jd, *obs)
			if err != nil {
				metrics.RecordPropagationError()
				return nil, err
			}
			s.LatDeg, s.LonDeg, s.LookAngles, s.HasLook = lat, lon, look, true
		} else {
			lat, lon, err := propagation.Advance(state, jd)
			if err != nil {
				metrics.RecordPropagationError()
				return nil, err
			}
			s.LatDeg, s.LonDeg = lat, lon
		}

		samples = append(samples, s)
	}

	metrics.RecordEphemerisGeneration(time.Since(start))
	e.logger.Debug("ephemeris generated", "samples", len(samples), "duration_ms", time.Since(start).Milliseconds())

	return &Buffer{Samples: samples}, nil
}
