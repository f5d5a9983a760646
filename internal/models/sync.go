package models

import (
	"encoding/json"
	"time"
)

// SyncAction тип мутации в очереди синхронизации
type SyncAction string

const (
	ActionCreate SyncAction = "create"
	ActionUpdate SyncAction = "update"
	ActionDelete SyncAction = "delete"
)

// QueueItem is a mutation that has not been confirmed by the backend yet.
// Items are replayed in ID order, which is creation order.
type QueueItem struct {
	CreatedAt  time.Time       `json:"created_at"`
	EntityID   string          `json:"entity_id"`
	Collection Collection      `json:"collection"`
	Action     SyncAction      `json:"action"`
	LastError  string          `json:"last_error,omitempty"`
	Payload    json.RawMessage `json:"payload"` // Payload JSON сущности, null только для delete
	ID         uint64          `json:"id"`      // ID последовательный номер в очереди
	Attempts   int             `json:"attempts"`
}

// ConflictChoice выбор пользователя при разрешении конфликта
type ConflictChoice string

const (
	// ResolveLocal keeps the local record; it is pushed on the next replay
	ResolveLocal ConflictChoice = "local"
	// ResolveServer replaces the local record with the server snapshot
	ResolveServer ConflictChoice = "server"
)

// Conflict records a divergence between a queued local change and the remote
// state. It is never resolved automatically.
type Conflict struct {
	DetectedAt    time.Time       `json:"detected_at"`
	EntityID      string          `json:"entity_id"`
	Collection    Collection      `json:"collection"`
	LocalVersion  json.RawMessage `json:"local_version"`  // LocalVersion полный снимок локальной сущности
	ServerVersion json.RawMessage `json:"server_version"` // ServerVersion полный снимок серверной сущности
	QueueItemID   uint64          `json:"queue_item_id"`  // QueueItemID мутация, которая не была отправлена
}
