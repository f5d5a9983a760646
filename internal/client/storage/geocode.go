package storage

import (
	"context"

	"github.com/iudanet/jobtrail/internal/models"
)

// GeocodeCacheStorage persists geocode lookups keyed by normalized address.
// Expiry and capacity are enforced by the geocode cache, not here.
type GeocodeCacheStorage interface {
	SaveGeocode(ctx context.Context, entry *models.GeocodeCacheEntry) error
	LoadGeocodes(ctx context.Context) ([]*models.GeocodeCacheEntry, error)
	DeleteGeocode(ctx context.Context, key string) error
}
