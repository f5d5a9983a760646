package geocode

import "math"

// EarthRadiusMiles радиус Земли в милях
const EarthRadiusMiles = 3959.0

// Point координаты в градусах
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineDistance returns the great-circle distance in miles
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// DistanceTo returns the distance from p to other in miles
func (p Point) DistanceTo(other Point) float64 {
	return HaversineDistance(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

// WithinRadius reports whether point lies within radius miles of home
func WithinRadius(home, point Point, radius float64) bool {
	return home.DistanceTo(point) <= radius
}
