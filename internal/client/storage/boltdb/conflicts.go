package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
)

// SaveConflict stores or replaces the conflict of an entity
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.Conflict) error {
	data, err := json.Marshal(conflict)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}
		return b.Put([]byte(conflict.EntityID), data)
	})
}

// GetConflict returns storage.ErrNotFound if the entity has no open conflict
func (s *Storage) GetConflict(ctx context.Context, entityID string) (*models.Conflict, error) {
	var conflict *models.Conflict

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}

		data := b.Get([]byte(entityID))
		if data == nil {
			return storage.ErrNotFound
		}

		conflict = &models.Conflict{}
		if err := json.Unmarshal(data, conflict); err != nil {
			return fmt.Errorf("failed to unmarshal conflict: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conflict, nil
}

// ListConflicts returns every open conflict
func (s *Storage) ListConflicts(ctx context.Context) ([]*models.Conflict, error) {
	var conflicts []*models.Conflict

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var c models.Conflict
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal conflict: %w", err)
			}
			conflicts = append(conflicts, &c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	return conflicts, nil
}

// DeleteConflict discards a conflict
func (s *Storage) DeleteConflict(ctx context.Context, entityID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}
		return b.Delete([]byte(entityID))
	})
}
