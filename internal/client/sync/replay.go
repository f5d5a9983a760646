package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// Outcome результат воспроизведения одного элемента очереди
type Outcome int

const (
	OutcomeSynced Outcome = iota
	OutcomeConflict
	OutcomeFailed
)

// SyncResult contains replay results
type SyncResult struct {
	Synced    int `json:"synced"`    // Synced подтверждено сервером и удалено из очереди
	Conflicts int `json:"conflicts"` // Conflicts обнаружено конфликтов, элементы остались в очереди
	Failed    int `json:"failed"`    // Failed ошибки воспроизведения, включая пропущенные элементы
	Skipped   int `json:"skipped"`   // Skipped пропущено, потому что раньше в этом проходе сущность застряла
}

// Replayer replays queued mutations of one collection
type Replayer interface {
	Collection() models.Collection
	// ReplayItem applies one queued mutation to the backend. Failures are
	// recorded on the item and reported through Outcome, never returned.
	ReplayItem(ctx context.Context, item *models.QueueItem) Outcome
	// Resolve applies the user's choice to an open conflict
	Resolve(ctx context.Context, conflict *models.Conflict, choice models.ConflictChoice) error
}

var _ Replayer = (*Synchronizer[*models.Company])(nil)

// replayQueue воспроизводит очередь по порядку. dispatch возвращает nil для
// элементов, которые этот проход не обрабатывает.
func replayQueue(ctx context.Context, queue storage.QueueStorage, logger *slog.Logger, dispatch func(*models.QueueItem) (Replayer, error)) (*SyncResult, error) {
	items, err := queue.Drain(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync queue: %w", err)
	}

	result := &SyncResult{}
	// blocked сущности, у которых элемент остался в очереди в этом проходе
	blocked := make(map[string]bool)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		r, err := dispatch(item)
		if err != nil {
			logger.WarnContext(ctx, "Cannot replay queue item",
				slog.Uint64("queue_item_id", item.ID),
				slog.String("collection", string(item.Collection)),
				slog.Any("error", err),
			)
			if rerr := queue.RecordFailure(ctx, item.ID, err); rerr != nil {
				logger.ErrorContext(ctx, "Failed to record replay failure", slog.Any("error", rerr))
			}
			blocked[item.EntityID] = true
			result.Failed++
			continue
		}
		if r == nil {
			continue
		}

		if blocked[item.EntityID] {
			result.Skipped++
			result.Failed++
			continue
		}

		switch r.ReplayItem(ctx, item) {
		case OutcomeSynced:
			result.Synced++
		case OutcomeConflict:
			blocked[item.EntityID] = true
			result.Conflicts++
		default:
			blocked[item.EntityID] = true
			result.Failed++
		}
	}

	return result, nil
}

// SyncOfflineChanges replays queued mutations of this collection.
// When offline it returns an empty result without touching the queue.
func (s *Synchronizer[T]) SyncOfflineChanges(ctx context.Context) (*SyncResult, error) {
	if !s.conn.Online(ctx) {
		return &SyncResult{}, nil
	}

	return replayQueue(ctx, s.local, s.logger, func(item *models.QueueItem) (Replayer, error) {
		if item.Collection != s.Collection() {
			return nil, nil
		}
		return s, nil
	})
}

// ReplayItem implements Replayer
func (s *Synchronizer[T]) ReplayItem(ctx context.Context, item *models.QueueItem) Outcome {
	log := s.logger.With(
		slog.Uint64("queue_item_id", item.ID),
		slog.String("entity_id", item.EntityID),
		slog.String("action", string(item.Action)),
	)

	var (
		outcome Outcome
		err     error
	)
	switch item.Action {
	case models.ActionCreate:
		outcome, err = s.replayCreate(ctx, item)
	case models.ActionUpdate:
		outcome, err = s.replayUpdate(ctx, item)
	case models.ActionDelete:
		outcome, err = s.replayDelete(ctx, item)
	default:
		outcome, err = OutcomeFailed, fmt.Errorf("unknown sync action %q", item.Action)
	}

	switch {
	case err != nil:
		log.WarnContext(ctx, "Replay failed", slog.Int("attempts", item.Attempts+1), slog.Any("error", err))
		if rerr := s.local.RecordFailure(ctx, item.ID, err); rerr != nil {
			log.ErrorContext(ctx, "Failed to record replay failure", slog.Any("error", rerr))
		}
		return OutcomeFailed
	case outcome == OutcomeConflict:
		log.WarnContext(ctx, "Conflict detected, item left in queue")
	default:
		log.DebugContext(ctx, "Replayed")
	}
	return outcome
}

func (s *Synchronizer[T]) decode(payload json.RawMessage) (T, error) {
	var entity T
	if err := json.Unmarshal(payload, &entity); err != nil {
		return entity, fmt.Errorf("failed to decode %s payload: %w", s.Collection(), err)
	}
	return entity, nil
}

func (s *Synchronizer[T]) replayCreate(ctx context.Context, item *models.QueueItem) (Outcome, error) {
	entity, err := s.decode(item.Payload)
	if err != nil {
		return OutcomeFailed, err
	}

	stored, err := s.remote.Insert(ctx, entity)
	if api.IsUniqueViolation(err) {
		// Создание могло дойти до сервера в прошлый раз, а ответ потеряться
		existing, found, gerr := s.remote.Get(ctx, item.EntityID)
		if gerr != nil {
			return OutcomeFailed, gerr
		}
		if !found {
			return OutcomeFailed, &DuplicateEntityError{Collection: s.Collection(), ID: item.EntityID, Err: err}
		}
		stored, err = existing, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	return OutcomeSynced, s.markSynced(ctx, item, stored)
}

func (s *Synchronizer[T]) replayUpdate(ctx context.Context, item *models.QueueItem) (Outcome, error) {
	entity, err := s.decode(item.Payload)
	if err != nil {
		return OutcomeFailed, err
	}

	rec, err := s.record(ctx, item.EntityID)
	if err != nil {
		return OutcomeFailed, err
	}

	remote, found, err := s.remote.Get(ctx, item.EntityID)
	if err != nil {
		return OutcomeFailed, err
	}
	if !found {
		return OutcomeFailed, fmt.Errorf("%s %s no longer exists on the backend: %w", s.Collection(), item.EntityID, ErrNotFound)
	}

	if rec != nil && rec.Baseline() != nil && remote.LastModified().After(*rec.Baseline()) {
		return OutcomeConflict, s.saveConflict(ctx, item, rec.Entity, remote)
	}

	stored, err := s.remote.Update(ctx, item.EntityID, entity)
	if err != nil {
		return OutcomeFailed, err
	}

	return OutcomeSynced, s.markSynced(ctx, item, stored)
}

func (s *Synchronizer[T]) replayDelete(ctx context.Context, item *models.QueueItem) (Outcome, error) {
	if err := s.remote.Delete(ctx, item.EntityID); err != nil && !api.IsNotFound(err) {
		return OutcomeFailed, err
	}
	if err := s.local.Acknowledge(ctx, item.ID); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSynced, nil
}

// markSynced подтверждает элемент и обновляет локальную запись. Если за
// элементом в очереди стоят другие мутации сущности, локальная версия
// остаётся неподтверждённой, сдвигается только базовая точка.
func (s *Synchronizer[T]) markSynced(ctx context.Context, item *models.QueueItem, stored T) error {
	if err := s.local.Acknowledge(ctx, item.ID); err != nil {
		return err
	}

	pending, err := s.local.PendingForEntity(ctx, item.EntityID)
	if err != nil {
		return err
	}

	prev, err := s.record(ctx, item.EntityID)
	if err != nil {
		return err
	}

	if len(pending) == 0 || prev == nil {
		return s.putSynced(ctx, stored, prev, false)
	}

	baseline := stored.LastModified()
	prev.LastSyncedAt = &baseline
	prev.ServerVersion++
	return s.put(ctx, prev)
}

func (s *Synchronizer[T]) saveConflict(ctx context.Context, item *models.QueueItem, local, remote T) error {
	localJSON, err := json.Marshal(local)
	if err != nil {
		return err
	}
	remoteJSON, err := json.Marshal(remote)
	if err != nil {
		return err
	}

	return s.local.SaveConflict(ctx, &models.Conflict{
		EntityID:      item.EntityID,
		Collection:    s.Collection(),
		LocalVersion:  localJSON,
		ServerVersion: remoteJSON,
		DetectedAt:    s.now(),
		QueueItemID:   item.ID,
	})
}

// Conflicts returns open conflicts of this collection
func (s *Synchronizer[T]) Conflicts(ctx context.Context) ([]*models.Conflict, error) {
	all, err := s.local.ListConflicts(ctx)
	if err != nil {
		return nil, err
	}

	var result []*models.Conflict
	for _, c := range all {
		if c.Collection == s.Collection() {
			result = append(result, c)
		}
	}
	return result, nil
}

// ResolveConflict applies the user's choice to the open conflict of an entity
func (s *Synchronizer[T]) ResolveConflict(ctx context.Context, entityID string, choice models.ConflictChoice) error {
	conflict, err := s.local.GetConflict(ctx, entityID)
	if err != nil {
		return fmt.Errorf("conflict for %s: %w", entityID, err)
	}
	if conflict.Collection != s.Collection() {
		return fmt.Errorf("conflict for %s belongs to %s: %w", entityID, conflict.Collection, ErrNotFound)
	}
	return s.Resolve(ctx, conflict, choice)
}

// Resolve implements Replayer.
//
// ResolveServer replaces the local record with the server snapshot and drops
// the queued mutations. ResolveLocal keeps the local record, moves its
// baseline to the server snapshot so the next replay pushes it.
func (s *Synchronizer[T]) Resolve(ctx context.Context, conflict *models.Conflict, choice models.ConflictChoice) error {
	server, err := s.decode(conflict.ServerVersion)
	if err != nil {
		return err
	}

	prev, err := s.record(ctx, conflict.EntityID)
	if err != nil {
		return err
	}

	switch choice {
	case models.ResolveServer:
		if _, err := s.local.PurgeForEntity(ctx, conflict.EntityID); err != nil {
			return fmt.Errorf("failed to purge queue for %s: %w", conflict.EntityID, err)
		}
		if err := s.putSynced(ctx, server, prev, true); err != nil {
			return err
		}

	case models.ResolveLocal:
		if prev == nil {
			local, err := s.decode(conflict.LocalVersion)
			if err != nil {
				return err
			}
			prev = &models.Record[T]{Entity: local}
		}

		baseline := server.LastModified()
		prev.LastSyncedAt = &baseline
		prev.SyncedAt = nil
		prev.LocalVersion++

		pending, err := s.local.PendingForEntity(ctx, conflict.EntityID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			payload, err := json.Marshal(prev.Entity)
			if err != nil {
				return err
			}
			if _, err := s.local.Enqueue(ctx, models.ActionUpdate, s.Collection(), conflict.EntityID, payload); err != nil {
				return err
			}
		}
		if err := s.put(ctx, prev); err != nil {
			return err
		}

	default:
		return validation.Errorf("choice", "must be %q or %q", models.ResolveLocal, models.ResolveServer)
	}

	if err := s.local.DeleteConflict(ctx, conflict.EntityID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Conflict resolved",
		slog.String("entity_id", conflict.EntityID),
		slog.String("choice", string(choice)),
	)
	return nil
}

