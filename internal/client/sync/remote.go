package sync

import (
	"context"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/models"
)

//go:generate moq -out remote_mock.go . Remote

// Remote is the per-table slice of the Remote Gateway used by a Synchronizer.
// *api.Table satisfies it.
type Remote[T models.Entity] interface {
	Select(ctx context.Context, q *api.Query) ([]T, error)
	// Get reports a missing row as found=false
	Get(ctx context.Context, id string) (T, bool, error)
	Insert(ctx context.Context, value T) (T, error)
	Update(ctx context.Context, id string, patch any) (T, error)
	// Delete succeeds for a missing row
	Delete(ctx context.Context, id string) error
}

var _ Remote[*models.Company] = (*api.Table[*models.Company])(nil)
