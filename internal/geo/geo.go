package geo

import (
	"math"

	"github.com/geoclaim/geoclaim/internal/domain"
)

const earthRadiusM = 6371000.0

// Distancer computes the geodesic distance between two coordinates.
// Injected so tests can substitute fixed distances.
type Distancer interface {
	DistanceMeters(a, b domain.Coordinate) float64
}

// Haversine is the default great-circle Distancer
type Haversine struct{}

// DistanceMeters returns the great-circle distance between a and b in meters
func (Haversine) DistanceMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// Offset returns the coordinate reached by moving distanceM meters from
// origin at the given bearing (radians, 0 = north). The longitude step is
// stretched by 1/cos(lat) to account for meridian convergence.
func Offset(origin domain.Coordinate, bearingRad, distanceM float64) domain.Coordinate {
	dLat := (distanceM * math.Cos(bearingRad)) / earthRadiusM * 180 / math.Pi

	latRad := origin.Latitude * math.Pi / 180
	dLon := (distanceM * math.Sin(bearingRad)) / (earthRadiusM * math.Cos(latRad)) * 180 / math.Pi

	return domain.Coordinate{
		Latitude:  origin.Latitude + dLat,
		Longitude: origin.Longitude + dLon,
	}
}
