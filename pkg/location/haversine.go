package location

import "math"

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371000.0

// metersPerDegreeLat is the length of one degree of latitude on the sphere above.
const metersPerDegreeLat = EarthRadiusMeters * math.Pi / 180

// DistanceMeters returns the great-circle distance in meters between two
// points given in degrees (Haversine). Invalid input is not checked; NaN propagates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δφ := rad(lat2 - lat1)
	Δλ := rad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// HaversineKm returns distance in km between two points (lat/lng in degrees).
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceMeters(lat1, lng1, lat2, lng2) / 1000
}

// Within reports whether a point at distanceMeters from a circle's center is
// inside a circle of radiusMeters. The boundary counts as inside.
func Within(distanceMeters, radiusMeters float64) bool {
	return distanceMeters <= radiusMeters
}

// Box is a lat/lng bounding rectangle in degrees.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a rectangle that fully contains the circle of
// radiusMeters around (lat, lng). It is padded by 10% so rows just on the
// boundary are never lost to rounding; callers still apply DistanceMeters.
func BoundingBox(lat, lng, radiusMeters float64) Box {
	dLat := radiusMeters / metersPerDegreeLat * 1.1
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	dLng := dLat / cos
	if dLng > 180 {
		dLng = 180
	}
	return Box{
		MinLat: math.Max(lat-dLat, -90),
		MaxLat: math.Min(lat+dLat, 90),
		MinLng: lng - dLng,
		MaxLng: lng + dLng,
	}
}

// WrapsLongitude reports whether the box crosses the antimeridian, in which
// case a plain MinLng/MaxLng range filter would drop valid points.
func (b Box) WrapsLongitude() bool {
	return b.MinLng < -180 || b.MaxLng > 180
}

// RoundTo rounds v to the given number of decimal places, half away from zero.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
