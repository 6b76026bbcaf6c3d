package tiles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/star/satplanner/internal/geo"
)

func TestLoadPoiTilesPreferred(t *testing.T) {
	csv := "Lat_min,Lat_max,Lon_min,Lon_max,Name,Type\n" +
		"48.85,48.87,2.28,2.36,Eiffel Tower,landmark\n"
	tiles, err := LoadPoiTiles(strings.NewReader(csv), "poi.csv", discardLogger())
	if err != nil {
		t.Fatalf("LoadPoiTiles: %v", err)
	}
	if len(tiles) != 1 || tiles[0].Name != "Eiffel Tower" {
		t.Fatalf("got %+v", tiles)
	}
	if !geo.Contains(tiles[0].Rect, 48.8584, 2.2945) {
		t.Error("expected Eiffel Tower coordinates inside its own tile")
	}
}

func TestLoadPoiTilesLegacyKM(t *testing.T) {
	csv := "Center_Lat,Center_Lon,Tile_km,Name,Type\n" +
		"48.8584,2.2945,2,Eiffel Tower,landmark\n"
	tiles, err := LoadPoiTiles(strings.NewReader(csv), "poi.csv", discardLogger())
	if err != nil {
		t.Fatalf("LoadPoiTiles: %v", err)
	}
	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	if !geo.Contains(tiles[0].Rect, 48.8584, 2.2945) {
		t.Error("expected the tile center itself to be contained")
	}
}

func TestLoadPoiTilesRejectsUnknownLayout(t *testing.T) {
	csv := "Foo,Bar\n1,2\n"
	if _, err := LoadPoiTiles(strings.NewReader(csv), "poi.csv", discardLogger()); err == nil {
		t.Error("expected DatasetLoadError for unrecognized column layout")
	}
}

func TestAppendPOIRowCreatesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poi.csv")

	tile := PoiTile{
		Name: "Eiffel Tower",
		Type: "landmark",
		Rect: geo.NewRect(48.85, 48.87, 2.34, 2.36),
	}
	if err := AppendPOIRow(path, tile); err != nil {
		t.Fatalf("AppendPOIRow (create): %v", err)
	}
	if err := AppendPOIRow(path, tile); err != nil {
		t.Fatalf("AppendPOIRow (append): %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (1 header + 2 rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Name,Type,Tile_km") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Eiffel Tower,landmark,") {
		t.Errorf("unexpected row: %q", lines[1])
	}
}
