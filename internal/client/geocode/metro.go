package geocode

import (
	"fmt"
	"strings"
)

// DefaultMetroThreshold расстояние от центра метро-региона, после которого выдается предупреждение
const DefaultMetroThreshold = 50.0

// MetroCenters центры известных метро-регионов
var MetroCenters = map[string]Point{
	"atlanta":       {Latitude: 33.7490, Longitude: -84.3880},
	"austin":        {Latitude: 30.2672, Longitude: -97.7431},
	"boston":        {Latitude: 42.3601, Longitude: -71.0589},
	"chicago":       {Latitude: 41.8781, Longitude: -87.6298},
	"dallas":        {Latitude: 32.7767, Longitude: -96.7970},
	"denver":        {Latitude: 39.7392, Longitude: -104.9903},
	"houston":       {Latitude: 29.7604, Longitude: -95.3698},
	"los angeles":   {Latitude: 34.0522, Longitude: -118.2437},
	"miami":         {Latitude: 25.7617, Longitude: -80.1918},
	"new york":      {Latitude: 40.7128, Longitude: -74.0060},
	"philadelphia":  {Latitude: 39.9526, Longitude: -75.1652},
	"phoenix":       {Latitude: 33.4484, Longitude: -112.0740},
	"portland":      {Latitude: 45.5152, Longitude: -122.6784},
	"san francisco": {Latitude: 37.7749, Longitude: -122.4194},
	"seattle":       {Latitude: 47.6062, Longitude: -122.3321},
	"washington":    {Latitude: 38.9072, Longitude: -77.0369},
}

// MetroCheck результат проверки удаленности от центра метро-региона
type MetroCheck struct {
	Metro     string
	Distance  float64
	Threshold float64
	Known     bool // Known метро-регион есть в MetroCenters
}

// Far reports whether the point lies beyond the threshold
func (m MetroCheck) Far() bool {
	return m.Known && m.Distance > m.Threshold
}

// Warning returns a human readable warning, empty if the point is close enough
func (m MetroCheck) Warning() string {
	if !m.Far() {
		return ""
	}
	return fmt.Sprintf("location is %.1f miles from the %s metro center (threshold %.0f miles)", m.Distance, m.Metro, m.Threshold)
}

// CheckMetroCenter measures how far point is from the center of metro.
// A non-positive threshold uses DefaultMetroThreshold.
func CheckMetroCenter(point Point, metro string, threshold float64) MetroCheck {
	if threshold <= 0 {
		threshold = DefaultMetroThreshold
	}

	key := strings.ToLower(strings.TrimSpace(metro))
	check := MetroCheck{Metro: metro, Threshold: threshold}

	center, ok := MetroCenters[key]
	if !ok {
		return check
	}
	check.Known = true
	check.Distance = point.DistanceTo(center)
	return check
}
