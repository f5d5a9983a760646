package storage

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrUnknownTable таблица не входит в схему
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn колонка не входит в схему таблицы
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidValue значение не приводится к типу колонки
	ErrInvalidValue = errors.New("invalid value")
)

// ConstraintError is a rejected write. Code is the postgres error code the
// gateway reports for it (23505, 23502, 23514).
type ConstraintError struct {
	Code   string
	Table  string
	Detail string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint violation %s: %s", e.Table, e.Code, e.Detail)
}

// AsConstraint извлекает *ConstraintError из цепочки
func AsConstraint(err error) (*ConstraintError, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
