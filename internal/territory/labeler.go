package territory

import (
	"github.com/star/satplanner/internal/ephem"
	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/spatial"
	"github.com/star/satplanner/internal/tiles"
)

// Label resolves the overflown country for every sample in buf and emits a
// Row for samples matching selector (WildcardSelector for "all land", or an
// exact country label). Output preserves input sample order. Non-land
// samples (no matching tile) are always dropped, independent of selector.
//
// When insertGapMarkers is true, a blank Row is inserted whenever
// consecutive emitted rows are more than 30 seconds apart.
func Label(buf *ephem.Buffer, countries []tiles.CountryTile, grid *spatial.Grid, selector string, insertGapMarkers bool) []Row {
	if buf == nil {
		return nil
	}

	var out []Row
	haveLast := false
	var lastJDSeconds float64

	for _, s := range buf.Samples {
		label, ok := resolveLabel(countries, grid, s.LatDeg, s.LonDeg)
		if !ok {
			continue
		}
		if selector != WildcardSelector && label != selector {
			continue
		}

		if insertGapMarkers {
			curSeconds := s.JD * 86400.0
			if haveLast && curSeconds-lastJDSeconds > gapThresholdSeconds {
				out = append(out, Row{})
			}
			lastJDSeconds = curSeconds
			haveLast = true
		}

		out = append(out, Row{
			TimeStr:      s.TimeStr,
			LatDeg:       s.LatDeg,
			LonDeg:       s.LonDeg,
			CountryLabel: label,
		})
	}
	return out
}

// resolveLabel probes the 3x3 grid neighborhood and returns the first tile
// whose rectangle contains (lat, lon).
func resolveLabel(countries []tiles.CountryTile, grid *spatial.Grid, lat, lon float64) (string, bool) {
	for _, idx := range grid.Candidates(lat, lon) {
		if idx < 0 || idx >= len(countries) {
			continue
		}
		if geo.Contains(countries[idx].Rect, lat, lon) {
			return countries[idx].Label, true
		}
	}
	return "", false
}

// BuildGrid indexes a territory dataset into a fresh spatial grid, for
// callers that load datasets separately from labeling.
func BuildGrid(countries []tiles.CountryTile, cellDeg float64) *spatial.Grid {
	g := spatial.NewGrid(cellDeg)
	for i, c := range countries {
		g.Insert(i, c.Rect)
	}
	return g
}
