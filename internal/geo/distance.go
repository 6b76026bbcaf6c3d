package geo

import "math"

// HaversineKM computes the great-circle distance in kilometers between two
// lat/lon points in degrees, using EarthRadiusKM.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	la1 := lat1 * rad
	la2 := lat2 * rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(la1)*math.Cos(la2)
	return 2 * EarthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDeg computes the forward azimuth in degrees, normalized to
// [0, 360), from (lat1, lon1) to (lat2, lon2).
func BearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0
	phi1 := lat1 * rad
	phi2 := lat2 * rad
	dLon := (lon2 - lon1) * rad

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180.0 / math.Pi

	return math.Mod(theta+360.0, 360.0)
}
