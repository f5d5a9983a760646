package models

import "time"

// Collection names a group of entities of one type. It doubles as the
// remote table name and the local bucket name.
type Collection string

const (
	CollectionCompanies        Collection = "companies"
	CollectionJobApplications  Collection = "job_applications"
	CollectionPrivateCompanies Collection = "private_companies"
	CollectionTracking         Collection = "user_company_tracking"
)

// EntityCollections returns every collection that is persisted offline-first
func EntityCollections() []Collection {
	return []Collection{
		CollectionCompanies,
		CollectionJobApplications,
		CollectionPrivateCompanies,
		CollectionTracking,
	}
}

// Entity is a domain record subject to offline-first persistence.
//
// Collection must not dereference the receiver: it is called on the zero
// value of the entity type.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
	Collection() Collection
	Validate() error
	// LastModified возвращает updated_at записи (для удалённой записи это время сервера)
	LastModified() time.Time
	// Touch проставляет created_at (если пусто) и updated_at
	Touch(now time.Time)
}

// Record is the local envelope around an entity. The sync bookkeeping lives
// here so that the payload sent to the backend never carries it.
type Record[T Entity] struct {
	Entity T `json:"entity"`

	// SyncedAt время последней подтверждённой записи на сервер.
	// nil пока у записи есть локальные изменения, не подтверждённые сервером.
	SyncedAt *time.Time `json:"synced_at,omitempty"`

	// LastSyncedAt базовая точка для обнаружения конфликтов: updated_at
	// серверной версии, которую клиент видел последней. Переживает офлайн-правки.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	LocalVersion  int64 `json:"local_version"`  // LocalVersion растёт на каждую локальную мутацию
	ServerVersion int64 `json:"server_version"` // ServerVersion последняя известная версия на сервере
}

// IsSynced reports whether the local state has been confirmed remotely
func (r *Record[T]) IsSynced() bool {
	return r.SyncedAt != nil
}

// Baseline returns the timestamp used for conflict detection
func (r *Record[T]) Baseline() *time.Time {
	if r.LastSyncedAt != nil {
		return r.LastSyncedAt
	}
	return r.SyncedAt
}

// touch is shared by the entity types
func touch(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
