package poiselect

import (
	"context"
	"sync"

	"github.com/star/satplanner/internal/ephem"
	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/spatial"
	"github.com/star/satplanner/internal/tiles"
)

// hit is one (sample, POI) match recorded by a worker, before the
// per-POI reduction.
type hit struct {
	sampleIdx  int
	poiIdx     int
	distanceKm float64
	bearingDeg float64
}

// Select partitions buf's samples into ClampWorkers(workers) contiguous
// slices, probes the POI spatial index per sample, and reduces to one Pick
// per POI name with at least one hit (minimum range, earliest sample on a
// tie). filterName restricts matching to a single POI name; empty matches
// all. Polls ctx per sample; on cancellation returns (nil, ctx.Err()) and
// discards all partial results.
func Select(ctx context.Context, buf *ephem.Buffer, pois []tiles.PoiTile, grid *spatial.Grid, filterName string, workers int) ([]Pick, error) {
	if buf.Len() == 0 || len(pois) == 0 {
		return nil, nil
	}

	n := buf.Len()
	t := ClampWorkers(workers)
	if t > n {
		t = n
	}
	if t < 1 {
		t = 1
	}

	chunk := (n + t - 1) / t
	hitsByWorker := make([][]hit, t)
	errsByWorker := make([]error, t)

	var wg sync.WaitGroup
	for w := 0; w < t; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(workerIdx, lo, hi int) {
			defer wg.Done()
			local, err := scanRange(ctx, buf, pois, grid, filterName, lo, hi)
			hitsByWorker[workerIdx] = local
			errsByWorker[workerIdx] = err
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errsByWorker {
		if err != nil {
			return nil, err
		}
	}

	// Reduce by POI name, not tile index: an extended target can be
	// represented by more than one tile sharing a name, and the contract is
	// one Pick per matched name, not per tile.
	best := make(map[string]hit)
	var order []string
	for _, local := range hitsByWorker {
		for _, h := range local {
			name := pois[h.poiIdx].Name
			cur, ok := best[name]
			if !ok {
				order = append(order, name)
				best[name] = h
				continue
			}
			if h.distanceKm < cur.distanceKm ||
				(h.distanceKm == cur.distanceKm && h.sampleIdx < cur.sampleIdx) {
				best[name] = h
			}
		}
	}

	picks := make([]Pick, 0, len(order))
	for _, name := range order {
		h := best[name]
		s := buf.Samples[h.sampleIdx]
		p := pois[h.poiIdx]
		picks = append(picks, Pick{
			TimeStr:    s.TimeStr,
			LatDeg:     s.LatDeg,
			LonDeg:     s.LonDeg,
			RangeKm:    h.distanceKm,
			AzimuthDeg: h.bearingDeg,
			Name:       p.Name,
			Type:       p.Type,
		})
	}
	return picks, nil
}

func scanRange(ctx context.Context, buf *ephem.Buffer, pois []tiles.PoiTile, grid *spatial.Grid, filterName string, lo, hi int) ([]hit, error) {
	var local []hit
	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s := buf.Samples[i]
		for _, poiIdx := range grid.Candidates(s.LatDeg, s.LonDeg) {
			if poiIdx < 0 || poiIdx >= len(pois) {
				continue
			}
			p := pois[poiIdx]
			if filterName != "" && p.Name != filterName {
				continue
			}
			if !geo.Contains(p.Rect, s.LatDeg, s.LonDeg) {
				continue
			}
			centerLat, centerLon := p.Rect.Center()
			d := geo.HaversineKM(centerLat, centerLon, s.LatDeg, s.LonDeg)
			b := geo.BearingDeg(centerLat, centerLon, s.LatDeg, s.LonDeg)
			local = append(local, hit{sampleIdx: i, poiIdx: poiIdx, distanceKm: d, bearingDeg: b})
		}
	}
	return local, nil
}

// BuildGrid indexes a POI dataset into a fresh spatial grid.
func BuildGrid(pois []tiles.PoiTile, cellDeg float64) *spatial.Grid {
	g := spatial.NewGrid(cellDeg)
	for i, p := range pois {
		g.Insert(i, p.Rect)
	}
	return g
}
