package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate moq -out store_mock.go . Store

// Store is the Local Store: durable collections of JSON documents keyed by id.
// All methods return ErrStorageUnavailable (wrapped) when the database cannot
// be used, and Get returns ErrNotFound for a missing id.
type Store interface {
	// Put creates or replaces the document stored under id
	Put(ctx context.Context, collection, id string, value []byte) error

	// Get returns a copy of the document stored under id
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// GetAll returns documents accepted by match (all documents when match is nil)
	// in key order
	GetAll(ctx context.Context, collection string, match func(id string, value []byte) bool) ([][]byte, error)

	// Delete removes the document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error
}

// PutJSON marshals value and stores it under id
func PutJSON(ctx context.Context, s Store, collection, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}
	return s.Put(ctx, collection, id, data)
}

// GetJSON loads the document stored under id into a new T
func GetJSON[T any](ctx context.Context, s Store, collection, id string) (*T, error) {
	data, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

// FindJSON is GetJSON that reports absence as (nil, false, nil)
func FindJSON[T any](ctx context.Context, s Store, collection, id string) (*T, bool, error) {
	v, err := GetJSON[T](ctx, s, collection, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ListJSON decodes every document of collection accepted by match
func ListJSON[T any](ctx context.Context, s Store, collection string, match func(*T) bool) ([]*T, error) {
	raw, err := s.GetAll(ctx, collection, nil)
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(raw))
	for _, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s document: %w", collection, err)
		}
		if match == nil || match(&v) {
			result = append(result, &v)
		}
	}
	return result, nil
}

// LocalStore is everything an offline-first synchronizer persists locally
type LocalStore interface {
	Store
	QueueStorage
	ConflictStorage
}
