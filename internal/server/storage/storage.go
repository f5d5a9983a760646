// Package storage описывает табличное хранилище dev-бэкенда: схему таблиц,
// приведение значений к типам колонок и интерфейс Store.
package storage

import (
	"context"

	"github.com/iudanet/jobtrail/pkg/api"
)

// Row одна строка таблицы в виде JSON объекта
type Row map[string]any

// Query выборка из таблицы
type Query struct {
	Filters []api.Filter
	Order   []api.Order
	Limit   int // Limit 0 без ограничения
}

// Store is a schema-checked table store. Table and column names are
// validated against the schema before they reach SQL.
type Store interface {
	// Select returns rows matching q in the requested order
	Select(ctx context.Context, table string, q Query) ([]Row, error)

	// Count returns the number of rows matching filters
	Count(ctx context.Context, table string, filters []api.Filter) (int, error)

	// Insert stores row and returns it with server-side defaults applied
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update applies patch to every row matching filters and returns the
	// updated rows
	Update(ctx context.Context, table string, filters []api.Filter, patch Row) ([]Row, error)

	// Delete removes rows matching filters and returns how many were removed
	Delete(ctx context.Context, table string, filters []api.Filter) (int, error)

	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}
