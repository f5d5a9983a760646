package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	keyLastSyncTimestamp = "last_sync_timestamp"
)

// SaveLastSyncTimestamp saves the timestamp of the last replay pass
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		// Конвертируем int64 в bytes
		timestampBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(timestampBytes, uint64(timestamp))

		if err := b.Put([]byte(keyLastSyncTimestamp), timestampBytes); err != nil {
			return fmt.Errorf("failed to save last sync timestamp: %w", err)
		}

		return nil
	})
}

// GetLastSyncTimestamp retrieves the timestamp of the last replay pass
// Returns 0 if no replay has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	var timestamp int64

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		timestampBytes := b.Get([]byte(keyLastSyncTimestamp))
		if timestampBytes == nil {
			// Синхронизации еще не было
			timestamp = 0
			return nil
		}

		// Конвертируем bytes в int64
		timestamp = int64(binary.BigEndian.Uint64(timestampBytes))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return timestamp, nil
}
