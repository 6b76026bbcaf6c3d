// Package tiles loads and indexes the territory (country) and POI tile
// datasets: CSV readers for both the preferred bounds layout and the legacy
// center/width/height layout, plus a POI append writer for user-added tiles.
package tiles

import "github.com/star/satplanner/internal/geo"

// CountryTile is a labeled territory rectangle.
type CountryTile struct {
	Rect  geo.Rect
	Label string
}

// PoiTile is a point of interest's tile rectangle plus identifying metadata.
type PoiTile struct {
	Rect   geo.Rect
	Name   string
	Type   string
	TileKM float64 // hint; 0 when not supplied
}

// kmPerDegLat is the fixed latitude-degree length used to convert a POI's
// km tile hint into a rectangle.
const kmPerDegLat = 110.574

// kmPerDegLonAtEquator is the equatorial longitude-degree length; actual
// longitude-degree length scales by cos(lat) at the tile center.
const kmPerDegLonAtEquator = 111.320
