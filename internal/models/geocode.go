package models

import "time"

// GeocodeStatus tags the outcome of a geocoding lookup
type GeocodeStatus string

const (
	GeocodeOK             GeocodeStatus = "ok"
	GeocodeNoResults      GeocodeStatus = "no_results"
	GeocodeRateLimited    GeocodeStatus = "rate_limited"
	GeocodeFailed         GeocodeStatus = "failed"
	GeocodeNetworkError   GeocodeStatus = "network_error"
	GeocodeInvalidAddress GeocodeStatus = "invalid_address"
)

// GeocodeResult is a discriminated result: geocoding failures are expected
// outcomes and are returned, not thrown.
type GeocodeResult struct {
	Status      GeocodeStatus `json:"status"`
	DisplayName string        `json:"display_name,omitempty"`
	Message     string        `json:"message,omitempty"`
	Latitude    float64       `json:"latitude,omitempty"`
	Longitude   float64       `json:"longitude,omitempty"`
	HTTPStatus  int           `json:"http_status,omitempty"`
}

// OK reports whether coordinates were resolved
func (r GeocodeResult) OK() bool {
	return r.Status == GeocodeOK
}

// Cacheable reports whether the result may be stored in the geocode cache.
// Successful and "no results" outcomes are cached (negative caching),
// transient failures are not.
func (r GeocodeResult) Cacheable() bool {
	return r.Status == GeocodeOK || r.Status == GeocodeNoResults
}

// GeocodeCacheEntry is a persisted geocode lookup
type GeocodeCacheEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Key       string        `json:"key"` // Key нормализованный адрес
	Result    GeocodeResult `json:"result"`
}
