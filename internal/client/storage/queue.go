package storage

import (
	"context"
	"encoding/json"

	"github.com/iudanet/jobtrail/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage is the Sync Queue: an ordered, durable log of mutations that
// have not been confirmed by the backend.
type QueueStorage interface {
	// Enqueue appends a mutation with created_at = now and attempts = 0
	Enqueue(ctx context.Context, action models.SyncAction, collection models.Collection, entityID string, payload json.RawMessage) (*models.QueueItem, error)

	// Drain returns every queued item in creation order without removing it
	Drain(ctx context.Context) ([]*models.QueueItem, error)

	// Acknowledge removes an item after successful replay.
	// Acknowledging an unknown item is a no-op.
	Acknowledge(ctx context.Context, itemID uint64) error

	// RecordFailure increments attempts and stores the error message
	RecordFailure(ctx context.Context, itemID uint64, cause error) error

	// PendingForEntity returns the queued items of one entity in creation order
	PendingForEntity(ctx context.Context, entityID string) ([]*models.QueueItem, error)

	// PurgeForEntity discards every queued item of an entity
	// and returns how many were removed
	PurgeForEntity(ctx context.Context, entityID string) (int, error)

	// CountPending returns the number of queued items
	CountPending(ctx context.Context) (int, error)
}
