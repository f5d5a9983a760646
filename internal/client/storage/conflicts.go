package storage

import (
	"context"

	"github.com/iudanet/jobtrail/internal/models"
)

// ConflictStorage is the conflict log, keyed by entity id
type ConflictStorage interface {
	// SaveConflict stores or replaces the conflict of an entity
	SaveConflict(ctx context.Context, conflict *models.Conflict) error

	// GetConflict returns ErrNotFound if the entity has no open conflict
	GetConflict(ctx context.Context, entityID string) (*models.Conflict, error)

	// ListConflicts returns every open conflict
	ListConflicts(ctx context.Context) ([]*models.Conflict, error)

	// DeleteConflict discards a conflict. Missing conflicts are ignored.
	DeleteConflict(ctx context.Context, entityID string) error
}
