// Package assets embeds the default territory and POI datasets so the
// service has a usable configuration with zero external fixtures.
package assets

import (
	"embed"
	"log/slog"

	"github.com/star/satplanner/internal/tiles"
)

//go:embed default_countries.csv
var defaultCountriesCSV embed.FS

//go:embed default_poi.csv
var defaultPoiCSV embed.FS

// DefaultCountryTiles parses the bundled default territory dataset.
func DefaultCountryTiles(logger *slog.Logger) ([]tiles.CountryTile, error) {
	f, err := defaultCountriesCSV.Open("default_countries.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tiles.LoadCountryTiles(f, "embedded:default_countries.csv", logger)
}

// DefaultPoiTiles parses the bundled default POI dataset (header only, no
// tiles, until the operator appends to the persistent POI CSV).
func DefaultPoiTiles(logger *slog.Logger) ([]tiles.PoiTile, error) {
	f, err := defaultPoiCSV.Open("default_poi.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tiles.LoadPoiTiles(f, "embedded:default_poi.csv", logger)
}
