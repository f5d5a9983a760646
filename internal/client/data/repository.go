// Package data содержит клиентские доменные сервисы поверх offline-first
// синхронизации.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/client/sync"
	"github.com/iudanet/jobtrail/internal/models"
)

// ErrNotFound запись не найдена
var ErrNotFound = storage.ErrNotFound

// Repository persists one entity type offline-first
type Repository[T models.Entity] interface {
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context, match func(T) bool) ([]T, error)
}

var _ Repository[*models.Company] = (*sync.Synchronizer[*models.Company])(nil)

// Option настраивает сервисы пакета
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет часы
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
