package sync

import (
	"errors"
	"fmt"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

var (
	// ErrNotFound запись не найдена ни локально, ни на сервере
	ErrNotFound = storage.ErrNotFound
	// ErrOffline операция требует соединения с сервером
	ErrOffline = errors.New("backend is offline")
	// ErrDuplicate is matched by every *DuplicateEntityError
	ErrDuplicate = errors.New("duplicate entity")
	// ErrUnknownCollection очередь содержит коллекцию без зарегистрированного synchronizer
	ErrUnknownCollection = errors.New("no synchronizer registered for collection")
)

// DuplicateEntityError is returned when the backend rejects a write because
// a unique constraint is violated. It is surfaced to the caller, never queued.
type DuplicateEntityError struct {
	Err        error
	Collection models.Collection
	ID         string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s %s already exists: %v", e.Collection, e.ID, e.Err)
}

func (e *DuplicateEntityError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDuplicate
func (e *DuplicateEntityError) Is(target error) bool {
	return target == ErrDuplicate
}

// IsDuplicate reports whether err is a DuplicateEntityError
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// remoteValidationError превращает отказ сервера в ValidationError
func remoteValidationError(err error) error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return validation.Errorf("", "%v", err)
	}
	msg := apiErr.Message
	if apiErr.Details != "" {
		msg += " (" + apiErr.Details + ")"
	}
	return validation.Errorf("", "%s", msg)
}
