package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/jobtrail/internal/models"
)

// SaveGeocode stores a geocode lookup under its normalized key
func (s *Storage) SaveGeocode(ctx context.Context, entry *models.GeocodeCacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geocode entry: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketGeocode)
		if err != nil {
			return err
		}
		return b.Put([]byte(entry.Key), data)
	})
}

// LoadGeocodes returns every persisted lookup, expired ones included
func (s *Storage) LoadGeocodes(ctx context.Context) ([]*models.GeocodeCacheEntry, error) {
	var entries []*models.GeocodeCacheEntry

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketGeocode)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var e models.GeocodeCacheEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to unmarshal geocode entry: %w", err)
			}
			entries = append(entries, &e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load geocode cache: %w", err)
	}

	return entries, nil
}

// DeleteGeocode removes a lookup
func (s *Storage) DeleteGeocode(ctx context.Context, key string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketGeocode)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
}
