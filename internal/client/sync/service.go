package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс синхронизации для CLI
type Service interface {
	// SyncOfflineChanges воспроизводит очередь офлайн-мутаций
	SyncOfflineChanges(ctx context.Context) (*SyncResult, error)

	// GetPendingSyncCount возвращает количество мутаций, ожидающих синхронизации
	GetPendingSyncCount(ctx context.Context) (int, error)

	// Conflicts возвращает открытые конфликты
	Conflicts(ctx context.Context) ([]*models.Conflict, error)

	// ResolveConflict применяет выбор пользователя к конфликту сущности
	ResolveConflict(ctx context.Context, entityID string, choice models.ConflictChoice) error

	// IsOnline сообщает, доступен ли сервер
	IsOnline(ctx context.Context) bool

	// LastSync возвращает время последнего прохода синхронизации (нулевое, если не было)
	LastSync(ctx context.Context) (time.Time, error)
}

// ManagerStorage is the local storage used by Manager
type ManagerStorage interface {
	storage.QueueStorage
	storage.ConflictStorage
	storage.MetadataStorage
}

// Manager replays the shared sync queue across all registered collections
// in a single pass, in global creation order.
type Manager struct {
	local     ManagerStorage
	conn      Connectivity
	logger    *slog.Logger
	now       func() time.Time
	replayers map[models.Collection]Replayer
}

var _ Service = (*Manager)(nil)

// NewManager creates a Manager
func NewManager(local ManagerStorage, conn Connectivity, logger *slog.Logger, replayers ...Replayer) *Manager {
	m := &Manager{
		local:     local,
		conn:      conn,
		logger:    logger,
		now:       time.Now,
		replayers: make(map[models.Collection]Replayer),
	}
	for _, r := range replayers {
		m.Register(r)
	}
	return m
}

// Register adds the replayer of a collection, replacing a previous one
func (m *Manager) Register(r Replayer) {
	m.replayers[r.Collection()] = r
}

// SyncOfflineChanges implements Service
func (m *Manager) SyncOfflineChanges(ctx context.Context) (*SyncResult, error) {
	if !m.conn.Online(ctx) {
		m.logger.InfoContext(ctx, "Offline, sync skipped")
		return &SyncResult{}, nil
	}

	m.logger.InfoContext(ctx, "Starting synchronization")

	result, err := replayQueue(ctx, m.local, m.logger, func(item *models.QueueItem) (Replayer, error) {
		r, ok := m.replayers[item.Collection]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, item.Collection)
		}
		return r, nil
	})
	if err != nil {
		return result, err
	}

	if err := m.local.SaveLastSyncTimestamp(ctx, m.now().Unix()); err != nil {
		m.logger.WarnContext(ctx, "Failed to save last sync timestamp", slog.Any("error", err))
	}

	m.logger.InfoContext(ctx, "Synchronization completed",
		slog.Int("synced", result.Synced),
		slog.Int("conflicts", result.Conflicts),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// GetPendingSyncCount implements Service
func (m *Manager) GetPendingSyncCount(ctx context.Context) (int, error) {
	count, err := m.local.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}
	return count, nil
}

// Conflicts implements Service
func (m *Manager) Conflicts(ctx context.Context) ([]*models.Conflict, error) {
	return m.local.ListConflicts(ctx)
}

// ResolveConflict implements Service
func (m *Manager) ResolveConflict(ctx context.Context, entityID string, choice models.ConflictChoice) error {
	conflict, err := m.local.GetConflict(ctx, entityID)
	if err != nil {
		return fmt.Errorf("conflict for %s: %w", entityID, err)
	}

	r, ok := m.replayers[conflict.Collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, conflict.Collection)
	}
	return r.Resolve(ctx, conflict, choice)
}

// IsOnline implements Service
func (m *Manager) IsOnline(ctx context.Context) bool {
	return m.conn.Online(ctx)
}

// LastSync implements Service
func (m *Manager) LastSync(ctx context.Context) (time.Time, error) {
	ts, err := m.local.GetLastSyncTimestamp(ctx)
	if err != nil || ts == 0 {
		return time.Time{}, err
	}
	return time.Unix(ts, 0), nil
}
