package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iudanet/jobtrail/internal/server/storage"
	"github.com/iudanet/jobtrail/pkg/api"
)

// Select returns rows of table matching q
func (s *Storage) Select(ctx context.Context, table string, q storage.Query) ([]storage.Row, error) {
	t, err := storage.LookupTable(table)
	if err != nil {
		return nil, err
	}

	where, args, err := whereClause(t, q.Filters)
	if err != nil {
		return nil, err
	}
	orderBy, err := orderClause(t, q.Order)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + columnList(t) + " FROM " + quote(t.Name) + where + orderBy
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.Name, err)
	}
	return scanRows(t, rows)
}

// Count returns the number of rows of table matching filters
func (s *Storage) Count(ctx context.Context, table string, filters []api.Filter) (int, error) {
	t, err := storage.LookupTable(table)
	if err != nil {
		return 0, err
	}

	where, args, err := whereClause(t, filters)
	if err != nil {
		return 0, err
	}

	var n int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(t.Name)+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", t.Name, err)
	}
	return n, nil
}

// Insert stores row. A missing id is generated; created_at defaults to now and
// updated_at is always set to now.
func (s *Storage) Insert(ctx context.Context, table string, row storage.Row) (storage.Row, error) {
	t, err := storage.LookupTable(table)
	if err != nil {
		return nil, err
	}

	row = cloneRow(row)
	now := storage.FormatTime(s.now())
	if v, ok := row["id"]; !ok || v == nil || v == "" {
		row["id"] = uuid.NewString()
	}
	if v, ok := row["created_at"]; t.Has("created_at") && (!ok || v == nil) {
		row["created_at"] = now
	}
	if t.Has("updated_at") {
		row["updated_at"] = now
	}

	names, values, err := columnValues(t, row)
	if err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := "INSERT INTO " + quote(t.Name) + " (" + joinQuoted(names) + ") VALUES (" + placeholders +
		") RETURNING " + columnList(t)

	rows, err := s.db.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, mapError(t.Name, err)
	}
	inserted, err := scanRows(t, rows)
	if err != nil {
		return nil, mapError(t.Name, err)
	}
	if len(inserted) != 1 {
		return nil, fmt.Errorf("insert %s: expected one row, got %d", t.Name, len(inserted))
	}

	s.logger.Debug("row inserted", slog.String("table", t.Name), slog.Any("id", inserted[0]["id"]))
	return inserted[0], nil
}

// Update applies patch to rows matching filters. The id column cannot be
// patched; updated_at is set to now.
func (s *Storage) Update(ctx context.Context, table string, filters []api.Filter, patch storage.Row) ([]storage.Row, error) {
	t, err := storage.LookupTable(table)
	if err != nil {
		return nil, err
	}

	patch = cloneRow(patch)
	delete(patch, "id")
	if t.Has("updated_at") {
		patch["updated_at"] = storage.FormatTime(s.now())
	}
	if len(patch) == 0 {
		return s.Select(ctx, table, storage.Query{Filters: filters})
	}

	names, values, err := columnValues(t, patch)
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(t, filters)
	if err != nil {
		return nil, err
	}

	assignments := make([]string, len(names))
	for i, name := range names {
		assignments[i] = quote(name) + " = ?"
	}
	query := "UPDATE " + quote(t.Name) + " SET " + strings.Join(assignments, ", ") + where +
		" RETURNING " + columnList(t)

	rows, err := s.db.QueryContext(ctx, query, append(values, args...)...)
	if err != nil {
		return nil, mapError(t.Name, err)
	}
	updated, err := scanRows(t, rows)
	if err != nil {
		return nil, mapError(t.Name, err)
	}
	return updated, nil
}

// Delete removes rows matching filters
func (s *Storage) Delete(ctx context.Context, table string, filters []api.Filter) (int, error) {
	t, err := storage.LookupTable(table)
	if err != nil {
		return 0, err
	}

	where, args, err := whereClause(t, filters)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+quote(t.Name)+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", t.Name, err)
	}
	return int(n), nil
}

func quote(name string) string {
	return `"` + name + `"`
}

func joinQuoted(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

func columnList(t *storage.Table) string {
	return joinQuoted(t.ColumnNames())
}

func cloneRow(row storage.Row) storage.Row {
	out := make(storage.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// columnValues проверяет ключи строки по схеме и приводит значения.
// Колонки сортируются, чтобы текст запроса был детерминированным.
func columnValues(t *storage.Table, row storage.Row) ([]string, []any, error) {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]any, len(names))
	for i, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		v, err := col.Kind.FromJSON(row[name])
		if err != nil {
			return nil, nil, fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
		values[i] = v
	}
	return names, values, nil
}

func whereClause(t *storage.Table, filters []api.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filters))
	var args []any
	for _, f := range filters {
		col, err := t.Column(f.Column)
		if err != nil {
			return "", nil, err
		}
		cond, condArgs, err := condition(col, f)
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", t.Name, f.Column, err)
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func condition(col storage.Column, f api.Filter) (string, []any, error) {
	name := quote(col.Name)

	switch f.Op {
	case api.OpEq, api.OpNeq, api.OpGt, api.OpLt:
		v, err := col.Kind.FromQuery(f.Value())
		if err != nil {
			return "", nil, err
		}
		op := map[api.Operator]string{api.OpEq: "=", api.OpNeq: "<>", api.OpGt: ">", api.OpLt: "<"}[f.Op]
		return name + " " + op + " ?", []any{v}, nil

	case api.OpIn:
		if len(f.Values) == 0 {
			return "0", nil, nil
		}
		args := make([]any, len(f.Values))
		for i, raw := range f.Values {
			v, err := col.Kind.FromQuery(raw)
			if err != nil {
				return "", nil, err
			}
			args[i] = v
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		return name + " IN (" + placeholders + ")", args, nil

	case api.OpIs:
		switch f.Value() {
		case "null":
			return name + " IS NULL", nil, nil
		case "true", "false":
			if col.Kind != storage.KindBool {
				return "", nil, fmt.Errorf("%w: is.%s on a non-boolean column", storage.ErrInvalidValue, f.Value())
			}
			return name + " = ?", []any{f.Value() == "true"}, nil
		}
	}
	return "", nil, fmt.Errorf("%w: unsupported filter %s", storage.ErrInvalidValue, f.Encode())
}

func orderClause(t *storage.Table, orders []api.Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}

	parts := make([]string, len(orders))
	for i, o := range orders {
		if _, err := t.Column(o.Column); err != nil {
			return "", err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts[i] = quote(o.Column) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// scanRows читает строки в порядке колонок схемы и закрывает rows
func scanRows(t *storage.Table, rows *sql.Rows) ([]storage.Row, error) {
	defer rows.Close()

	out := []storage.Row{}
	for rows.Next() {
		dest := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			switch c.Kind {
			case storage.KindInt:
				dest[i] = new(sql.NullInt64)
			case storage.KindReal:
				dest[i] = new(sql.NullFloat64)
			case storage.KindBool:
				dest[i] = new(sql.NullBool)
			default:
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}

		row := make(storage.Row, len(t.Columns))
		for i, c := range t.Columns {
			row[c.Name] = nullValue(dest[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.Name, err)
	}
	return out, nil
}

func nullValue(v any) any {
	switch n := v.(type) {
	case *sql.NullString:
		if n.Valid {
			return n.String
		}
	case *sql.NullInt64:
		if n.Valid {
			return n.Int64
		}
	case *sql.NullFloat64:
		if n.Valid {
			return n.Float64
		}
	case *sql.NullBool:
		if n.Valid {
			return n.Bool
		}
	}
	return nil
}

// mapError переводит нарушения ограничений SQLite в storage.ConstraintError
func mapError(table string, err error) error {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w", table, err)
	}

	code := ""
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		code = api.CodeUniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		code = api.CodeNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		code = api.CodeCheckViolation
	default:
		// без расширенных кодов остается только текст сообщения
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := se.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				code = api.CodeUniqueViolation
			case strings.Contains(msg, "NOT NULL"):
				code = api.CodeNotNull
			case strings.Contains(msg, "CHECK"):
				code = api.CodeCheckViolation
			}
		}
	}
	if code == "" {
		return fmt.Errorf("%s: %w", table, err)
	}
	return &storage.ConstraintError{Code: code, Table: table, Detail: se.Error()}
}
