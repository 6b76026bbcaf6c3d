package assets

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultCountryTilesLoad(t *testing.T) {
	tiles, err := DefaultCountryTiles(discardLogger())
	if err != nil {
		t.Fatalf("DefaultCountryTiles: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected at least one default country tile")
	}
}

func TestDefaultPoiTilesLoadsEmpty(t *testing.T) {
	tiles, err := DefaultPoiTiles(discardLogger())
	if err != nil {
		t.Fatalf("DefaultPoiTiles: %v", err)
	}
	if len(tiles) != 0 {
		t.Errorf("got %d default POI tiles, want 0", len(tiles))
	}
}
