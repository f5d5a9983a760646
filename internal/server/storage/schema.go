package storage

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind тип колонки
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindReal
	KindBool
	KindTime
)

// TimeLayout формат хранения времени. Фиксированная ширина сохраняет
// порядок при сравнении строк.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Column колонка таблицы
type Column struct {
	Name string
	Kind Kind
}

// Table describes one table exposed by the gateway
type Table struct {
	Name string
	// OwnerColumn колонка с ID владельца. Строки видны и изменяемы только
	// владельцем; пусто для общих таблиц.
	OwnerColumn string
	Columns     []Column
}

// Column returns the column called name
func (t *Table) Column(name string) (Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, name)
}

// Has reports whether the table has a column called name
func (t *Table) Has(name string) bool {
	_, err := t.Column(name)
	return err == nil
}

// ColumnNames returns column names in schema order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func text(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: KindText}
	}
	return cols
}

func columns(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	timestamps = []Column{{Name: "created_at", Kind: KindTime}, {Name: "updated_at", Kind: KindTime}}
	location   = []Column{{Name: "latitude", Kind: KindReal}, {Name: "longitude", Kind: KindReal}}
	priority   = []Column{{Name: "priority", Kind: KindInt}}
	address    = text("name", "address", "city", "state", "zip_code", "website", "careers_url", "metro_area", "status", "notes")
)

var tables = map[string]*Table{
	"companies": {
		Name: "companies",
		Columns: columns(text("id"), address, text("created_by"), location, priority,
			[]Column{{Name: "is_approved", Kind: KindBool}}, timestamps),
	},
	"private_companies": {
		Name:        "private_companies",
		OwnerColumn: "user_id",
		Columns:     columns(text("id", "user_id"), address, location, priority, timestamps),
	},
	"job_applications": {
		Name:        "job_applications",
		OwnerColumn: "user_id",
		Columns: columns(
			text("id", "user_id", "company_id", "position", "status", "job_url", "salary_range", "notes"),
			priority,
			[]Column{{Name: "applied_date", Kind: KindTime}, {Name: "follow_up_date", Kind: KindTime}},
			timestamps,
		),
	},
	"user_company_tracking": {
		Name:        "user_company_tracking",
		OwnerColumn: "user_id",
		Columns: columns(text("id", "user_id", "company_id", "status", "notes"), priority,
			[]Column{{Name: "is_active", Kind: KindBool}}, timestamps),
	},
	"company_edit_suggestions": {
		Name: "company_edit_suggestions",
		Columns: columns(
			text("id", "company_id", "field", "suggested_value", "reason", "status", "submitted_by", "reviewed_by", "review_note"),
			[]Column{{Name: "created_at", Kind: KindTime}, {Name: "reviewed_at", Kind: KindTime}},
		),
	},
}

// LookupTable returns the schema of the table called name
func LookupTable(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// TableNames returns the names of all tables, sorted
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromJSON converts a decoded JSON value into the value stored for the
// column. nil stays nil (NULL).
func (k Kind) FromJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch k {
	case KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindInt:
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f), nil
		}
	case KindReal:
		if f, ok := v.(float64); ok {
			return f, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindTime:
		if s, ok := v.(string); ok {
			return normalizeTime(s)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidValue, v)
}

// FromQuery converts a filter operand from the query string
func (k Kind) FromQuery(s string) (any, error) {
	switch k {
	case KindText:
		return s, nil
	case KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
		}
		return n, nil
	case KindReal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
		}
		return b, nil
	case KindTime:
		return normalizeTime(s)
	}
	return nil, fmt.Errorf("%w: unsupported column kind %d", ErrInvalidValue, k)
}

func normalizeTime(s string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not an RFC 3339 time", ErrInvalidValue, s)
	}
	return FormatTime(t), nil
}

// FormatTime форматирует время в TimeLayout (UTC)
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
