package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistance(40.7128, -74.0060, 40.7128, -74.0060))
	assert.InDelta(t, 69.17, HaversineDistance(0, 0, 0, 1), 0.1)

	// Нью-Йорк - Лос-Анджелес около 2445 миль
	assert.InDelta(t, 2445, HaversineDistance(40.7128, -74.0060, 34.0522, -118.2437), 10)
}

func TestWithinRadius(t *testing.T) {
	home := Point{Latitude: 40.7128, Longitude: -74.0060}
	newark := Point{Latitude: 40.7357, Longitude: -74.1724}
	philly := Point{Latitude: 39.9526, Longitude: -75.1652}

	assert.True(t, WithinRadius(home, newark, 25))
	assert.False(t, WithinRadius(home, philly, 25))
}

func TestCheckMetroCenter(t *testing.T) {
	near := CheckMetroCenter(Point{Latitude: 40.7357, Longitude: -74.1724}, "New York", 0)
	assert.True(t, near.Known)
	assert.Equal(t, DefaultMetroThreshold, near.Threshold)
	assert.False(t, near.Far())
	assert.Empty(t, near.Warning())

	far := CheckMetroCenter(Point{Latitude: 39.9526, Longitude: -75.1652}, "new york", 50)
	assert.True(t, far.Far())
	assert.Contains(t, far.Warning(), "miles from the new york metro center")

	unknown := CheckMetroCenter(Point{Latitude: 0, Longitude: 0}, "Atlantis", 50)
	assert.False(t, unknown.Known)
	assert.False(t, unknown.Far())
}
