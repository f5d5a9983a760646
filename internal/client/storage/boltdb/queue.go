package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/jobtrail/internal/models"
)

// Очередь хранится в двух buckets:
//   sync_queue           seq(8 байт big-endian) -> QueueItem JSON
//   sync_queue_by_entity entityID + 0x00 + seq  -> seq
// Big-endian ключи дают порядок создания при обходе курсором.

// seqKey кодирует номер элемента очереди
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// entityPrefix префикс вторичного индекса для сущности
func entityPrefix(entityID string) []byte {
	prefix := make([]byte, 0, len(entityID)+1)
	prefix = append(prefix, entityID...)
	return append(prefix, 0)
}

func entityKey(entityID string, seq uint64) []byte {
	return append(entityPrefix(entityID), seqKey(seq)...)
}

// Enqueue appends a mutation to the sync queue
func (s *Storage) Enqueue(ctx context.Context, action models.SyncAction, collection models.Collection, entityID string, payload json.RawMessage) (*models.QueueItem, error) {
	if entityID == "" {
		return nil, fmt.Errorf("enqueue %s: empty entity id", action)
	}

	item := &models.QueueItem{
		EntityID:   entityID,
		Collection: collection,
		Action:     action,
		Payload:    payload,
		CreatedAt:  s.now(),
		Attempts:   0,
	}

	err := s.update(func(tx *bbolt.Tx) error {
		queue, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		index, err := bucket(tx, bucketQueueEntity)
		if err != nil {
			return err
		}

		seq, err := queue.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate queue sequence: %w", err)
		}
		item.ID = seq

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}

		if err := queue.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save queue item: %w", err)
		}
		if err := index.Put(entityKey(entityID, seq), seqKey(seq)); err != nil {
			return fmt.Errorf("failed to index queue item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s %s/%s: %w", action, collection, entityID, err)
	}

	return item, nil
}

// Drain returns every queued item in creation order
func (s *Storage) Drain(ctx context.Context) ([]*models.QueueItem, error) {
	var items []*models.QueueItem

	err := s.view(func(tx *bbolt.Tx) error {
		queue, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}

		return queue.ForEach(func(k, v []byte) error {
			var item models.QueueItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal queue item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain sync queue: %w", err)
	}

	return items, nil
}

// Acknowledge removes a replayed item
func (s *Storage) Acknowledge(ctx context.Context, itemID uint64) error {
	return s.update(func(tx *bbolt.Tx) error {
		item, err := getQueueItem(tx, itemID)
		if err != nil || item == nil {
			return err
		}
		return removeQueueItem(tx, item)
	})
}

// RecordFailure increments attempts and stores the last error
func (s *Storage) RecordFailure(ctx context.Context, itemID uint64, cause error) error {
	return s.update(func(tx *bbolt.Tx) error {
		item, err := getQueueItem(tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}

		item.Attempts++
		if cause != nil {
			item.LastError = cause.Error()
		}

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}

		queue, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		return queue.Put(seqKey(itemID), data)
	})
}

// PendingForEntity returns queued items of one entity in creation order
func (s *Storage) PendingForEntity(ctx context.Context, entityID string) ([]*models.QueueItem, error) {
	var items []*models.QueueItem

	err := s.view(func(tx *bbolt.Tx) error {
		seqs, err := entitySequences(tx, entityID)
		if err != nil {
			return err
		}

		for _, seq := range seqs {
			item, err := getQueueItem(tx, seq)
			if err != nil {
				return err
			}
			if item != nil {
				items = append(items, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read queue for %s: %w", entityID, err)
	}

	return items, nil
}

// PurgeForEntity discards every queued item of an entity
func (s *Storage) PurgeForEntity(ctx context.Context, entityID string) (int, error) {
	removed := 0

	err := s.update(func(tx *bbolt.Tx) error {
		seqs, err := entitySequences(tx, entityID)
		if err != nil {
			return err
		}

		queue, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		index, err := bucket(tx, bucketQueueEntity)
		if err != nil {
			return err
		}

		for _, seq := range seqs {
			if err := queue.Delete(seqKey(seq)); err != nil {
				return fmt.Errorf("failed to delete queue item %d: %w", seq, err)
			}
			if err := index.Delete(entityKey(entityID, seq)); err != nil {
				return fmt.Errorf("failed to delete queue index %d: %w", seq, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge queue for %s: %w", entityID, err)
	}

	return removed, nil
}

// CountPending returns the number of queued items
func (s *Storage) CountPending(ctx context.Context) (int, error) {
	count := 0

	err := s.view(func(tx *bbolt.Tx) error {
		queue, err := bucket(tx, bucketQueue)
		if err != nil {
			return err
		}
		count = queue.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}

	return count, nil
}

// getQueueItem returns (nil, nil) for an unknown item
func getQueueItem(tx *bbolt.Tx, seq uint64) (*models.QueueItem, error) {
	queue, err := bucket(tx, bucketQueue)
	if err != nil {
		return nil, err
	}

	data := queue.Get(seqKey(seq))
	if data == nil {
		return nil, nil
	}

	var item models.QueueItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue item %d: %w", seq, err)
	}
	return &item, nil
}

func removeQueueItem(tx *bbolt.Tx, item *models.QueueItem) error {
	queue, err := bucket(tx, bucketQueue)
	if err != nil {
		return err
	}
	index, err := bucket(tx, bucketQueueEntity)
	if err != nil {
		return err
	}

	if err := queue.Delete(seqKey(item.ID)); err != nil {
		return fmt.Errorf("failed to delete queue item %d: %w", item.ID, err)
	}
	if err := index.Delete(entityKey(item.EntityID, item.ID)); err != nil {
		return fmt.Errorf("failed to delete queue index %d: %w", item.ID, err)
	}
	return nil
}

// entitySequences собирает номера элементов очереди сущности через вторичный индекс
func entitySequences(tx *bbolt.Tx, entityID string) ([]uint64, error) {
	index, err := bucket(tx, bucketQueueEntity)
	if err != nil {
		return nil, err
	}

	prefix := entityPrefix(entityID)
	var seqs []uint64

	c := index.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if len(v) != 8 {
			return nil, fmt.Errorf("corrupted queue index entry for %s", entityID)
		}
		seqs = append(seqs, binary.BigEndian.Uint64(v))
	}
	return seqs, nil
}
