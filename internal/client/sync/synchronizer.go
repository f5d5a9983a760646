package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// errFallback сигнализирует, что запись нужно сохранить офлайн и поставить в очередь
var errFallback = errors.New("fall back to offline commit")

// Synchronizer persists one entity type offline-first: every mutation is
// tried against the backend first and, when the backend is unreachable,
// committed locally and queued for replay.
type Synchronizer[T models.Entity] struct {
	remote Remote[T]
	local  storage.LocalStore
	conn   Connectivity
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option настраивает Synchronizer
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock подменяет часы
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator подменяет генератор ID новых записей
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// NewSynchronizer creates a synchronizer for the collection of T
func NewSynchronizer[T models.Entity](remote Remote[T], local storage.LocalStore, conn Connectivity, logger *slog.Logger, opts ...Option) *Synchronizer[T] {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	return &Synchronizer[T]{
		remote: remote,
		local:  local,
		conn:   conn,
		logger: logger.With(slog.String("collection", string(zero.Collection()))),
		now:    o.now,
		newID:  o.newID,
	}
}

// Collection returns the collection handled by this synchronizer
func (s *Synchronizer[T]) Collection() models.Collection {
	var zero T
	return zero.Collection()
}

func (s *Synchronizer[T]) bucket() string {
	return string(s.Collection())
}

// Create persists a new entity. An empty id is replaced with a fresh UUID.
func (s *Synchronizer[T]) Create(ctx context.Context, entity T) (T, error) {
	if entity.EntityID() == "" {
		entity.SetEntityID(s.newID())
	}
	entity.Touch(s.now())

	// Фаза 1: валидация
	if err := entity.Validate(); err != nil {
		return entity, err
	}

	prev, err := s.record(ctx, entity.EntityID())
	if err != nil {
		return entity, err
	}

	// Фаза 2: попытка записи на сервер
	stored, err := s.attemptRemote(ctx, entity.EntityID(), func() (T, error) {
		return s.remote.Insert(ctx, entity)
	})
	switch {
	case err == nil:
		// Фаза 3а: подтверждено сервером
		return stored, s.commitSynced(ctx, stored, prev)
	case errors.Is(err, errFallback):
		// Фаза 3в: офлайн
		return entity, s.commitOffline(ctx, models.ActionCreate, entity, prev)
	default:
		// Фаза 3б: доменная ошибка
		return entity, err
	}
}

// Update replaces an existing entity
func (s *Synchronizer[T]) Update(ctx context.Context, entity T) (T, error) {
	id := entity.EntityID()
	if id == "" {
		return entity, validation.Errorf("id", "is required")
	}
	entity.Touch(s.now())

	if err := entity.Validate(); err != nil {
		return entity, err
	}

	prev, err := s.record(ctx, id)
	if err != nil {
		return entity, err
	}

	stored, err := s.attemptRemote(ctx, id, func() (T, error) {
		return s.remote.Update(ctx, id, entity)
	})
	switch {
	case err == nil:
		return stored, s.commitSynced(ctx, stored, prev)
	case errors.Is(err, errFallback):
		if prev == nil {
			return entity, fmt.Errorf("%s %s: %w", s.Collection(), id, ErrNotFound)
		}
		return entity, s.commitOffline(ctx, models.ActionUpdate, entity, prev)
	default:
		return entity, err
	}
}

// Delete hard-deletes an entity. Queued mutations of the entity are dropped.
func (s *Synchronizer[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validation.Errorf("id", "is required")
	}

	prev, err := s.record(ctx, id)
	if err != nil {
		return err
	}

	online := s.conn.Online(ctx)
	if prev == nil {
		if !online {
			return fmt.Errorf("%s %s: %w", s.Collection(), id, ErrNotFound)
		}
		// Удаление на сервере идемпотентно, поэтому существование проверяется отдельно
		_, found, err := s.remote.Get(ctx, id)
		switch {
		case err == nil && !found:
			return fmt.Errorf("%s %s: %w", s.Collection(), id, ErrNotFound)
		case err != nil:
			s.logger.WarnContext(ctx, "Remote lookup before delete failed",
				slog.String("entity_id", id),
				slog.Any("error", err),
			)
		}
	}

	// Неподтверждённые мутации теряют смысл после удаления
	purged, err := s.local.PurgeForEntity(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to purge queue for %s: %w", id, err)
	}
	if purged > 0 {
		s.logger.DebugContext(ctx, "Purged queued mutations", slog.String("entity_id", id), slog.Int("count", purged))
	}

	if err := s.local.DeleteConflict(ctx, id); err != nil {
		return fmt.Errorf("failed to drop conflict for %s: %w", id, err)
	}

	// Запись ни разу не попадала на сервер: достаточно удалить локально
	if prev != nil && prev.Baseline() == nil && prev.ServerVersion == 0 {
		return s.local.Delete(ctx, s.bucket(), id)
	}

	if online {
		err := s.remote.Delete(ctx, id)
		if err == nil {
			return s.local.Delete(ctx, s.bucket(), id)
		}
		s.logger.WarnContext(ctx, "Remote delete failed, committing offline",
			slog.String("entity_id", id),
			slog.Any("error", err),
		)
	}

	if _, err := s.local.Enqueue(ctx, models.ActionDelete, s.Collection(), id, nil); err != nil {
		return fmt.Errorf("failed to enqueue delete: %w", err)
	}
	return s.local.Delete(ctx, s.bucket(), id)
}

// Get returns the local copy of an entity
func (s *Synchronizer[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return rec.Entity, nil
}

// Record returns the local envelope of an entity, including sync state
func (s *Synchronizer[T]) Record(ctx context.Context, id string) (*models.Record[T], error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%s %s: %w", s.Collection(), id, ErrNotFound)
	}
	return rec, nil
}

// List returns local entities accepted by match (all when match is nil)
func (s *Synchronizer[T]) List(ctx context.Context, match func(T) bool) ([]T, error) {
	records, err := s.Records(ctx, match)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(records))
	for _, rec := range records {
		result = append(result, rec.Entity)
	}
	return result, nil
}

// Records returns local envelopes whose entity is accepted by match
func (s *Synchronizer[T]) Records(ctx context.Context, match func(T) bool) ([]*models.Record[T], error) {
	return storage.ListJSON[models.Record[T]](ctx, s.local, s.bucket(), func(rec *models.Record[T]) bool {
		return match == nil || match(rec.Entity)
	})
}

// Refresh pulls remote rows matching q into the Local Store. Records with
// unconfirmed local changes and rows not newer than the local copy are left
// untouched. Returns the number of rows stored.
func (s *Synchronizer[T]) Refresh(ctx context.Context, q *api.Query) (int, error) {
	if !s.conn.Online(ctx) {
		return 0, ErrOffline
	}

	rows, err := s.remote.Select(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("refresh %s: %w", s.Collection(), err)
	}

	stored := 0
	for _, row := range rows {
		prev, err := s.record(ctx, row.EntityID())
		if err != nil {
			return stored, err
		}
		if prev != nil && !prev.IsSynced() {
			continue
		}
		if prev != nil && prev.Baseline() != nil && !row.LastModified().After(*prev.Baseline()) {
			continue
		}
		if err := s.putSynced(ctx, row, prev, false); err != nil {
			return stored, err
		}
		stored++
	}

	s.logger.DebugContext(ctx, "Refreshed from backend", slog.Int("rows", len(rows)), slog.Int("stored", stored))
	return stored, nil
}

// attemptRemote выполняет call, если сервер доступен и у сущности нет
// мутаций в очереди. Возвращает errFallback, если запись нужно отложить.
func (s *Synchronizer[T]) attemptRemote(ctx context.Context, id string, call func() (T, error)) (T, error) {
	var zero T

	if !s.conn.Online(ctx) {
		return zero, errFallback
	}

	// Порядок мутаций одной сущности сохраняется: пока очередь не пуста,
	// новые мутации встают за ней
	pending, err := s.local.PendingForEntity(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("failed to read queue: %w", err)
	}
	if len(pending) > 0 {
		return zero, errFallback
	}

	stored, err := call()
	switch {
	case err == nil:
		return stored, nil
	case api.IsUniqueViolation(err):
		return zero, &DuplicateEntityError{Collection: s.Collection(), ID: id, Err: err}
	case api.IsNotFound(err):
		return zero, fmt.Errorf("%s %s: %w", s.Collection(), id, ErrNotFound)
	case api.IsValidation(err):
		return zero, remoteValidationError(err)
	default:
		s.logger.WarnContext(ctx, "Remote write failed, committing offline",
			slog.String("entity_id", id),
			slog.Any("error", err),
		)
		return zero, errFallback
	}
}

// commitSynced сохраняет подтверждённую сервером версию
func (s *Synchronizer[T]) commitSynced(ctx context.Context, stored T, prev *models.Record[T]) error {
	if err := s.putSynced(ctx, stored, prev, true); err != nil {
		return fmt.Errorf("failed to store synced %s: %w", s.Collection(), err)
	}
	return nil
}

// commitOffline ставит мутацию в очередь, затем сохраняет локальную версию
func (s *Synchronizer[T]) commitOffline(ctx context.Context, action models.SyncAction, entity T, prev *models.Record[T]) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.Collection(), err)
	}

	if _, err := s.local.Enqueue(ctx, action, s.Collection(), entity.EntityID(), payload); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", action, err)
	}

	rec := &models.Record[T]{Entity: entity, LocalVersion: 1}
	if prev != nil {
		rec.LastSyncedAt = prev.Baseline()
		rec.LocalVersion = prev.LocalVersion + 1
		rec.ServerVersion = prev.ServerVersion
	}

	if err := s.put(ctx, rec); err != nil {
		return fmt.Errorf("failed to store offline %s: %w", s.Collection(), err)
	}

	s.logger.InfoContext(ctx, "Committed offline",
		slog.String("entity_id", entity.EntityID()),
		slog.String("action", string(action)),
	)
	return nil
}

// putSynced записывает серверную версию как подтверждённую
func (s *Synchronizer[T]) putSynced(ctx context.Context, row T, prev *models.Record[T], localMutation bool) error {
	now := s.now()
	baseline := row.LastModified()
	if baseline.IsZero() {
		baseline = now
	}

	rec := &models.Record[T]{
		Entity:        row,
		SyncedAt:      &now,
		LastSyncedAt:  &baseline,
		ServerVersion: 1,
	}
	if localMutation {
		rec.LocalVersion = 1
	}
	if prev != nil {
		rec.ServerVersion = prev.ServerVersion + 1
		rec.LocalVersion = prev.LocalVersion
		if localMutation {
			rec.LocalVersion++
		}
	}
	return s.put(ctx, rec)
}

func (s *Synchronizer[T]) put(ctx context.Context, rec *models.Record[T]) error {
	return storage.PutJSON(ctx, s.local, s.bucket(), rec.Entity.EntityID(), rec)
}

// record возвращает nil, nil если записи нет
func (s *Synchronizer[T]) record(ctx context.Context, id string) (*models.Record[T], error) {
	rec, _, err := storage.FindJSON[models.Record[T]](ctx, s.local, s.bucket(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", s.Collection(), id, err)
	}
	return rec, nil
}
