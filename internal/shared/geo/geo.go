package geo

import "math"

// EarthRadiusM is the mean Earth radius used for spherical distance.
const EarthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two points in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusM * math.Asin(math.Sqrt(a))
}

// HaversineKm returns the great-circle distance in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Haversine(lat1, lon1, lat2, lon2) / 1000
}

// Bearing returns the initial bearing (forward azimuth) from point 1 to
// point 2 in degrees, normalized to [0,360). 0 is North, 90 is East.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lonDiff := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(lonDiff) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(lonDiff)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

var glyphs = [8]string{"⬆️", "↗️", "➡️", "↘️", "⬇️", "↙️", "⬅️", "↖️"}

// Glyph maps the initial bearing from point 1 to point 2 onto the nearest of
// eight compass arrows.
func Glyph(lat1, lon1, lat2, lon2 float64) string {
	return glyphForBearing(Bearing(lat1, lon1, lat2, lon2))
}

// glyphForBearing picks the octant via round(bearing/45) mod 8. math.Round
// rounds half away from zero, so an exact 22.5° boundary lands on the
// higher-index octant.
func glyphForBearing(bearing float64) string {
	return glyphs[int(math.Round(bearing/45))%8]
}
