package storage

import (
	"errors"
	"fmt"
)

// Common client storage errors
var (
	// ErrNotFound indicates that the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable indicates that the local store cannot serve the
	// request: the database is closed or locked by another process, or the
	// collection was never initialized. Callers must not treat it as "not found".
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = fmt.Errorf("%w: storage is closed", ErrStorageUnavailable)
)
