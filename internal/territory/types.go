// Package territory labels an ephemeris buffer with the country overflown
// at each sample, using the spatial index over the territory dataset.
// Membership is first-hit-wins against the spatial grid's axis-aligned
// rectangle Contains test.
package territory

// Row is one labeled ground-track sample. A blank gap-marker row has an
// empty TimeStr and zero Lat/Lon; gap markers are never part of the export
// format, only a visual separator for consumers that render them directly.
type Row struct {
	TimeStr      string
	LatDeg       float64
	LonDeg       float64
	CountryLabel string
}

// IsGapMarker reports whether r is a blank separator row.
func (r Row) IsGapMarker() bool {
	return r.TimeStr == ""
}

// WildcardSelector matches every land territory tile, including tiles whose
// label is empty.
const WildcardSelector = "*"

// gapThresholdSeconds is the minimum time difference between consecutive
// emitted rows that triggers a gap-marker row.
const gapThresholdSeconds = 30.0
