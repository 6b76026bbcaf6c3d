package territory

import (
	"testing"

	"github.com/star/satplanner/internal/ephem"
	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/tiles"
)

func ukFranceTiles() []tiles.CountryTile {
	return []tiles.CountryTile{
		{Rect: geo.NewRect(49, 61, -8, 2), Label: "United Kingdom"},
		{Rect: geo.NewRect(41, 51, -5, 9), Label: "France"},
	}
}

// TestTerritoryLabelingWildcard verifies a London sample yields
// "United Kingdom" under the wildcard selector.
func TestTerritoryLabelingWildcard(t *testing.T) {
	countries := ukFranceTiles()
	grid := BuildGrid(countries, 1.0)
	buf := &ephem.Buffer{Samples: []ephem.Sample{
		{TimeStr: "2025/01/01 00:00:00", LatDeg: 51.5074, LonDeg: -0.1278, JD: 2460676.5},
	}}

	rows := Label(buf, countries, grid, WildcardSelector, false)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].CountryLabel != "United Kingdom" {
		t.Errorf("label = %q, want %q", rows[0].CountryLabel, "United Kingdom")
	}
}

func TestTerritoryLabelingExactSelectorFiltersOut(t *testing.T) {
	countries := ukFranceTiles()
	grid := BuildGrid(countries, 1.0)
	buf := &ephem.Buffer{Samples: []ephem.Sample{
		{TimeStr: "t1", LatDeg: 51.5074, LonDeg: -0.1278, JD: 2460676.5},
		{TimeStr: "t2", LatDeg: 48.8566, LonDeg: 2.3522, JD: 2460676.50001},
	}}

	rows := Label(buf, countries, grid, "France", false)
	if len(rows) != 1 || rows[0].CountryLabel != "France" {
		t.Fatalf("got %+v, want exactly one France row", rows)
	}
}

func TestTerritoryLabelingDropsNonLandSamples(t *testing.T) {
	countries := ukFranceTiles()
	grid := BuildGrid(countries, 1.0)
	buf := &ephem.Buffer{Samples: []ephem.Sample{
		{TimeStr: "ocean", LatDeg: 0, LonDeg: -140, JD: 2460676.5}, // mid-Pacific
	}}

	rows := Label(buf, countries, grid, WildcardSelector, false)
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0 for an ocean sample", len(rows))
	}
}

func TestTerritoryLabelingPreservesOrder(t *testing.T) {
	countries := ukFranceTiles()
	grid := BuildGrid(countries, 1.0)
	buf := &ephem.Buffer{Samples: []ephem.Sample{
		{TimeStr: "t1", LatDeg: 48.8566, LonDeg: 2.3522, JD: 1},  // France
		{TimeStr: "t2", LatDeg: 51.5074, LonDeg: -0.1278, JD: 2}, // UK
		{TimeStr: "t3", LatDeg: 45.0, LonDeg: 2.0, JD: 3},        // France again
	}}

	rows := Label(buf, countries, grid, WildcardSelector, false)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []string{"France", "United Kingdom", "France"}
	for i, w := range want {
		if rows[i].CountryLabel != w {
			t.Errorf("row %d label = %q, want %q", i, rows[i].CountryLabel, w)
		}
	}
}

func TestTerritoryLabelingInsertsGapMarker(t *testing.T) {
	countries := ukFranceTiles()
	grid := BuildGrid(countries, 1.0)
	buf := &ephem.Buffer{Samples: []ephem.Sample{
		{TimeStr: "t1", LatDeg: 51.5074, LonDeg: -0.1278, JD: 2460676.500000},
		{TimeStr: "t2", LatDeg: 51.5074, LonDeg: -0.1278, JD: 2460676.500000 + 60.0/86400.0},
	}}

	rows := Label(buf, countries, grid, WildcardSelector, true)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (row, gap marker, row)", len(rows))
	}
	if !rows[1].IsGapMarker() {
		t.Errorf("row 1 = %+v, want a gap marker", rows[1])
	}
}
