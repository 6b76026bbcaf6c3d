package tiles

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/star/satplanner/internal/geo"
	"github.com/star/satplanner/internal/planererr"
)

// LoadCountryTiles reads a territory dataset CSV. It recognizes the
// preferred column layout (Lat_min, Lat_max, Lon_min, Lon_max, label) by
// header name, and falls back to the legacy center/width/height layout
// (center lon in column 1, center lat in column 2, width, height and label
// in columns 5-7, counting from 0) when those
// headers are absent. Rows missing required fields are skipped.
func LoadCountryTiles(r io.Reader, path string, logger *slog.Logger) ([]CountryTile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &planererr.DatasetLoadError{Path: path, Reason: "missing header: " + err.Error()}
	}

	cols := indexHeader(header)
	preferred := hasAll(cols, "lat_min", "lat_max", "lon_min", "lon_max")

	var out []CountryTile
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

		var tile CountryTile
		var ok bool
		if preferred {
			tile, ok = parsePreferredCountryRow(row, cols)
		} else {
			tile, ok = parseLegacyCountryRow(row)
		}
		if !ok {
			logger.Warn("skipping malformed territory row", "path", path, "row", rowNum)
			continue
		}
		out = append(out, tile)
	}
	return out, nil
}

func parsePreferredCountryRow(row []string, cols map[string]int) (CountryTile, bool) {
	latMin, ok1 := parseField(row, cols["lat_min"])
	latMax, ok2 := parseField(row, cols["lat_max"])
	lonMin, ok3 := parseField(row, cols["lon_min"])
	lonMax, ok4 := parseField(row, cols["lon_max"])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return CountryTile{}, false
	}
	label := ""
	if idx, ok := cols["label"]; ok && idx < len(row) {
		label = strings.TrimSpace(row[idx])
	} else if len(row) > 0 {
		label = strings.TrimSpace(row[len(row)-1])
	}
	return CountryTile{Rect: geo.NewRect(latMin, latMax, lonMin, lonMax), Label: label}, true
}

// parseLegacyCountryRow parses the legacy 7-column layout: center lon,
// center lat, width deg (col 5), height deg (col 6), label (col 7).
func parseLegacyCountryRow(row []string) (CountryTile, bool) {
	if len(row) < 7 {
		return CountryTile{}, false
	}
	centerLon, ok1 := parseFloat(row[0])
	centerLat, ok2 := parseFloat(row[1])
	width, ok3 := parseFloat(row[4])
	height, ok4 := parseFloat(row[5])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return CountryTile{}, false
	}
	label := strings.TrimSpace(row[6])
	r := geo.NewRect(centerLat-height/2, centerLat+height/2, centerLon-width/2, centerLon+width/2)
	return CountryTile{Rect: r, Label: label}, true
}

// indexHeader maps lowercased, trimmed header names to their column index.
func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func hasAll(cols map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}
	return true
}

func parseField(row []string, idx int) (float64, bool) {
	if idx < 0 || idx >= len(row) {
		return 0, false
	}
	return parseFloat(row[idx])
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
