// Package spatial implements the 1°×1° (configurable) equirectangular grid
// used to answer "which tile contains this point" without scanning every
// tile in a dataset. Buckets hold integer handles into the owning dataset
// slice; the grid itself never owns geometry.
//
// The grid is rebuilt wholesale on every dataset load rather than patched
// incrementally; datasets are small enough that a full rebuild is cheap and
// avoids stale-bucket bugs.
package spatial

import (
	"math"

	"github.com/star/satplanner/internal/geo"
)

// DefaultCellDeg is the default grid cell size in degrees. It is
// configurable, but changing it invalidates the 3×3 neighborhood probe
// unless the cell size still exceeds every tile's extent.
const DefaultCellDeg = 1.0

// antimeridianSplitEpsilon is the δ used when splitting a wrapping
// rectangle's longitude span into two monotone spans for indexing.
const antimeridianSplitEpsilon = 1e-9

// CellKey identifies one grid cell.
type CellKey struct {
	Row, Col int
}

// Grid maps a CellKey to the handles of every rectangle whose (possibly
// wrap-split) bounding box overlaps that cell.
type Grid struct {
	cellDeg float64
	rows    int
	cols    int
	buckets map[CellKey][]int
}

// NewGrid creates an empty grid with the given cell size in degrees.
// cellDeg <= 0 falls back to DefaultCellDeg.
func NewGrid(cellDeg float64) *Grid {
	if cellDeg <= 0 {
		cellDeg = DefaultCellDeg
	}
	return &Grid{
		cellDeg: cellDeg,
		rows:    int(math.Ceil(180.0 / cellDeg)),
		cols:    int(math.Ceil(360.0 / cellDeg)),
		buckets: make(map[CellKey][]int),
	}
}

// KeyFor computes the CellKey for a point, clamping rows/cols to the grid's
// valid range.
func (g *Grid) KeyFor(lat, lon float64) CellKey {
	row := int(math.Floor((lat + 90) / g.cellDeg))
	col := int(math.Floor((geo.NormLon(lon) + 180) / g.cellDeg))
	return g.clamp(row, col)
}

func (g *Grid) clamp(row, col int) CellKey {
	if row < 0 {
		row = 0
	} else if row > g.rows-1 {
		row = g.rows - 1
	}
	if col < 0 {
		col = 0
	} else if col > g.cols-1 {
		col = g.cols - 1
	}
	return CellKey{Row: row, Col: col}
}

// Insert indexes rectangle handle idx into every cell its bounding box
// overlaps, splitting at the antimeridian when the rectangle wraps.
func (g *Grid) Insert(idx int, r geo.Rect) {
	if r.Wraps() {
		g.insertSpan(idx, r.LatMin, r.LatMax, r.LonMin, 180-antimeridianSplitEpsilon)
		g.insertSpan(idx, r.LatMin, r.LatMax, -180, r.LonMax)
		return
	}
	g.insertSpan(idx, r.LatMin, r.LatMax, r.LonMin, r.LonMax)
}

func (g *Grid) insertSpan(idx int, latMin, latMax, lonMin, lonMax float64) {
	rowMin := g.clampRow(int(math.Floor((latMin + 90) / g.cellDeg)))
	rowMax := g.clampRow(int(math.Floor((latMax + 90) / g.cellDeg)))
	colMin := g.clampCol(int(math.Floor((lonMin + 180) / g.cellDeg)))
	colMax := g.clampCol(int(math.Floor((lonMax + 180) / g.cellDeg)))

	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			key := CellKey{Row: row, Col: col}
			g.buckets[key] = append(g.buckets[key], idx)
		}
	}
}

func (g *Grid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row > g.rows-1 {
		return g.rows - 1
	}
	return row
}

func (g *Grid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col > g.cols-1 {
		return g.cols - 1
	}
	return col
}

// Candidates returns the deduplicated handles found in the 3×3 neighborhood
// around (lat, lon). Order is stable (first-seen) but otherwise
// unspecified; callers test each candidate with geo.Contains and may
// short-circuit on the first hit.
func (g *Grid) Candidates(lat, lon float64) []int {
	center := g.KeyFor(lat, lon)

	seen := make(map[int]struct{})
	var out []int
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			key := g.clamp(center.Row+dr, center.Col+dc)
			for _, idx := range g.buckets[key] {
				if _, ok := seen[idx]; ok {
					continue
				}
				seen[idx] = struct{}{}
				out = append(out, idx)
			}
		}
	}
	return out
}
