package validation

import (
	"math"
	"net/url"
	"strings"
)

const (
	// MinPriority минимальный приоритет записи
	MinPriority = 1
	// MaxPriority максимальный приоритет записи
	MaxPriority = 5

	// MaxNameLen максимальная длина названий (компания, позиция)
	MaxNameLen = 200
	// MaxNotesLen максимальная длина свободных заметок
	MaxNotesLen = 10000
)

// Required checks that value is not blank
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Errorf(field, "is required")
	}
	return nil
}

// MaxLength checks that value does not exceed limit characters
func MaxLength(field, value string, limit int) error {
	if len([]rune(value)) > limit {
		return Errorf(field, "must not exceed %d characters", limit)
	}
	return nil
}

// Latitude checks that lat lies within [-90, 90]
func Latitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Errorf("latitude", "must be between -90 and 90, got %v", lat)
	}
	return nil
}

// Longitude checks that lon lies within [-180, 180]
func Longitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Errorf("longitude", "must be between -180 and 180, got %v", lon)
	}
	return nil
}

// Coordinates validates a latitude/longitude pair
func Coordinates(lat, lon float64) error {
	if err := Latitude(lat); err != nil {
		return err
	}
	return Longitude(lon)
}

// Priority checks the 1-5 priority range. Zero means "not set" and is accepted,
// services replace it with a default before persisting.
func Priority(p int) error {
	if p == 0 {
		return nil
	}
	if p < MinPriority || p > MaxPriority {
		return Errorf("priority", "must be between %d and %d, got %d", MinPriority, MaxPriority, p)
	}
	return nil
}

// OptionalURL checks that a non-empty value is an absolute http(s) URL
func OptionalURL(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(field, "must be an absolute http(s) URL")
	}
	return nil
}

// OneOf checks that value is one of allowed. Empty value is accepted.
func OneOf[T ~string](field string, value T, allowed ...T) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return Errorf(field, "unsupported value %q", string(value))
}

// First returns the first non-nil error
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
