package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/jobtrail/internal/client/storage"
)

// Put creates or replaces the document stored under id
func (s *Storage) Put(ctx context.Context, collection, id string, value []byte) error {
	if id == "" {
		return fmt.Errorf("empty id for collection %s", collection)
	}

	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, []byte(collection))
		if err != nil {
			return err
		}

		if err := b.Put([]byte(id), value); err != nil {
			return fmt.Errorf("failed to save %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Get returns a copy of the document stored under id
// Returns storage.ErrNotFound if the document doesn't exist
func (s *Storage) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var value []byte

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, []byte(collection))
		if err != nil {
			return err
		}

		data := b.Get([]byte(id))
		if data == nil {
			return storage.ErrNotFound
		}
		value = copyBytes(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// GetAll returns documents accepted by match in key order
func (s *Storage) GetAll(ctx context.Context, collection string, match func(id string, value []byte) bool) ([][]byte, error) {
	var values [][]byte

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, []byte(collection))
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			if match != nil && !match(string(k), v) {
				return nil
			}
			values = append(values, copyBytes(v))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	return values, nil
}

// Delete removes the document, missing ids are ignored
func (s *Storage) Delete(ctx context.Context, collection, id string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, []byte(collection))
		if err != nil {
			return err
		}

		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Clear removes every document of a collection
// Used for testing and full re-sync
func (s *Storage) Clear(ctx context.Context, collection string) error {
	return s.update(func(tx *bbolt.Tx) error {
		if _, err := bucket(tx, []byte(collection)); err != nil {
			return err
		}

		// Удаляем bucket полностью и создаем заново пустой
		if err := tx.DeleteBucket([]byte(collection)); err != nil {
			return fmt.Errorf("failed to delete bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(collection)); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
}
