package tiles

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/planererr"
)

// LoadPoiTiles reads a POI dataset CSV. Preferred columns are Lat_min,
// Lat_max, Lon_min, Lon_max, Name, Type. Fallback columns are Center_Lat,
// Center_Lon, Tile_km, Name, Type, with the rectangle derived from the km
// hint using kmPerDegLat / kmPerDegLonAtEquator·cos(lat_c).
func LoadPoiTiles(r io.Reader, path string, logger *slog.Logger) ([]PoiTile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &planererr.DatasetLoadError{Path: path, Reason: "missing header: " + err.Error()}
	}
	cols := indexHeader(header)
	preferred := hasAll(cols, "lat_min", "lat_max", "lon_min", "lon_max")
	legacy := hasAll(cols, "center_lat", "center_lon", "tile_km")
	if !preferred && !legacy {
		return nil, &planererr.DatasetLoadError{Path: path, Reason: "recognized no known column layout"}
	}

	var out []PoiTile
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &planererr.DatasetLoadError{Path: path, Reason: err.Error()}
		}
		rowNum++

		var tile PoiTile
		var ok bool
		if preferred {
			tile, ok = parsePreferredPoiRow(row, cols)
		} else {
			tile, ok = parseLegacyPoiRow(row, cols)
		}
		if !ok {
			logger.Warn("skipping malformed POI row", "path", path, "row", rowNum)
			continue
		}
		out = append(out, tile)
	}
	return out, nil
}

func parsePreferredPoiRow(row []string, cols map[string]int) (PoiTile, bool) {
	latMin, ok1 := parseField(row, cols["lat_min"])
	latMax, ok2 := parseField(row, cols["lat_max"])
	lonMin, ok3 := parseField(row, cols["lon_min"])
	lonMax, ok4 := parseField(row, cols["lon_max"])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return PoiTile{}, false
	}
	name := columnOrEmpty(row, cols, "name")
	if strings.TrimSpace(name) == "" {
		return PoiTile{}, false
	}
	typ := columnOrEmpty(row, cols, "type")
	return PoiTile{
		Rect: geo.NewRect(latMin, latMax, lonMin, lonMax),
		Name: strings.TrimSpace(name),
		Type: strings.TrimSpace(typ),
	}, true
}

func parseLegacyPoiRow(row []string, cols map[string]int) (PoiTile, bool) {
	centerLat, ok1 := parseField(row, cols["center_lat"])
	centerLon, ok2 := parseField(row, cols["center_lon"])
	tileKM, ok3 := parseField(row, cols["tile_km"])
	if !ok1 || !ok2 || !ok3 || tileKM <= 0 {
		return PoiTile{}, false
	}
	name := columnOrEmpty(row, cols, "name")
	if strings.TrimSpace(name) == "" {
		return PoiTile{}, false
	}
	typ := columnOrEmpty(row, cols, "type")

	halfLat := (tileKM / kmPerDegLat) / 2
	lonDegKM := kmPerDegLonAtEquator * math.Cos(centerLat*math.Pi/180.0)
	var halfLon float64
	if lonDegKM > 1e-9 {
		halfLon = (tileKM / lonDegKM) / 2
	} else {
		halfLon = 180 // pole-adjacent tile: longitude span is degenerate
	}
	r := geo.NewRect(centerLat-halfLat, centerLat+halfLat, centerLon-halfLon, centerLon+halfLon)
	return PoiTile{Rect: r, Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ), TileKM: tileKM}, true
}

func columnOrEmpty(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// AppendPOIRow appends a user-added POI tile to the persistent dataset CSV
// in the 9-column append format, creating the file with a header if it does
// not yet exist.
func AppendPOIRow(path string, t PoiTile) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &planererr.ExportWriteError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if needsHeader {
		fmt.Fprint(w, "Name,Type,Tile_km,Center_Lat,Center_Lon,Lat_min,Lat_max,Lon_min,Lon_max\n")
	}

	centerLat := (t.Rect.LatMin + t.Rect.LatMax) / 2
	centerLon := (t.Rect.LonMin + t.Rect.LonMax) / 2
	fmt.Fprintf(w, "%s,%s,%.10f,%.10f,%.10f,%.10f,%.10f,%.10f,%.10f\n",
		t.Name, t.Type, t.TileKM, centerLat, centerLon,
		t.Rect.LatMin, t.Rect.LatMax, t.Rect.LonMin, t.Rect.LonMax)

	if err := w.Flush(); err != nil {
		return &planererr.ExportWriteError{Path: path, Reason: err.Error()}
	}
	return nil
}
