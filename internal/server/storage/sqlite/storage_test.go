package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/server/storage"
	"github.com/iudanet/jobtrail/pkg/api"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := t0
	s.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return s
}

func company(id, name, address string) storage.Row {
	return storage.Row{
		"id":          id,
		"name":        name,
		"address":     address,
		"status":      "researching",
		"priority":    float64(4),
		"latitude":    47.61,
		"longitude":   -122.33,
		"is_approved": false,
	}
}

func eq(column, value string) api.Filter {
	return api.Filter{Column: column, Op: api.OpEq, Values: []string{value}}
}

func TestStorage_InsertSelect(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	row, err := s.Insert(ctx, "companies", company("c1", "Acme", "1 Main St"))
	require.NoError(t, err)

	assert.Equal(t, "c1", row["id"])
	assert.Equal(t, int64(4), row["priority"])
	assert.Equal(t, false, row["is_approved"])
	assert.Nil(t, row["city"])
	assert.Equal(t, "2024-03-01T12:00:01.000000Z", row["updated_at"])
	assert.Equal(t, row["updated_at"], row["created_at"])

	rows, err := s.Select(ctx, "companies", storage.Query{Filters: []api.Filter{eq("id", "c1")}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0]["name"])
}

func TestStorage_Insert_GeneratesID(t *testing.T) {
	row := company("", "Acme", "1 Main St")
	delete(row, "id")

	got, err := setupTestStorage(t).Insert(context.Background(), "companies", row)
	require.NoError(t, err)
	assert.NotEmpty(t, got["id"])
}

func TestStorage_Insert_Constraints(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	_, err := s.Insert(ctx, "companies", company("c1", "Acme", "1 Main St"))
	require.NoError(t, err)

	t.Run("duplicate name and address", func(t *testing.T) {
		_, err := s.Insert(ctx, "companies", company("c2", "Acme", "1 Main St"))
		ce, ok := storage.AsConstraint(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, api.CodeUniqueViolation, ce.Code)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := s.Insert(ctx, "companies", company("c1", "Other", "2 Main St"))
		ce, ok := storage.AsConstraint(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, api.CodeUniqueViolation, ce.Code)
	})

	t.Run("priority out of range", func(t *testing.T) {
		row := company("c3", "Bad", "3 Main St")
		row["priority"] = float64(9)
		_, err := s.Insert(ctx, "companies", row)
		ce, ok := storage.AsConstraint(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, api.CodeCheckViolation, ce.Code)
	})

	t.Run("unknown column", func(t *testing.T) {
		row := company("c4", "Extra", "4 Main St")
		row["ceo"] = "nobody"
		_, err := s.Insert(ctx, "companies", row)
		assert.ErrorIs(t, err, storage.ErrUnknownColumn)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := s.Insert(ctx, "users", storage.Row{"id": "u1"})
		assert.ErrorIs(t, err, storage.ErrUnknownTable)
	})
}

func TestStorage_TrackingUniqueWhileActive(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	track := func(id string) (storage.Row, error) {
		return s.Insert(ctx, "user_company_tracking", storage.Row{
			"id": id, "user_id": "u1", "company_id": "c1", "status": "researching",
			"priority": float64(3), "is_active": true,
		})
	}

	_, err := track("t1")
	require.NoError(t, err)

	_, err = track("t2")
	ce, ok := storage.AsConstraint(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, api.CodeUniqueViolation, ce.Code)

	_, err = s.Update(ctx, "user_company_tracking", []api.Filter{eq("id", "t1")}, storage.Row{"is_active": false})
	require.NoError(t, err)

	_, err = track("t3")
	assert.NoError(t, err, "inactive record does not block a new one")
}

func TestStorage_Update(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	inserted, err := s.Insert(ctx, "companies", company("c1", "Acme", "1 Main St"))
	require.NoError(t, err)

	rows, err := s.Update(ctx, "companies", []api.Filter{eq("id", "c1")}, storage.Row{
		"id":   "ignored",
		"city": "Seattle",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0]["id"])
	assert.Equal(t, "Seattle", rows[0]["city"])
	assert.Equal(t, inserted["created_at"], rows[0]["created_at"])
	assert.Greater(t, rows[0]["updated_at"], inserted["updated_at"])

	rows, err = s.Update(ctx, "companies", []api.Filter{eq("id", "missing")}, storage.Row{"city": "x"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStorage_FiltersOrderLimit(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	for i, name := range []string{"Bravo", "Alpha", "Charlie"} {
		row := company(name, name, "addr")
		row["priority"] = float64(i + 1)
		_, err := s.Insert(ctx, "companies", row)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query storage.Query
		want  []string
	}{
		{
			name:  "order by name",
			query: storage.Query{Order: []api.Order{{Column: "name"}}},
			want:  []string{"Alpha", "Bravo", "Charlie"},
		},
		{
			name:  "priority desc with limit",
			query: storage.Query{Order: []api.Order{{Column: "priority", Desc: true}}, Limit: 2},
			want:  []string{"Charlie", "Alpha"},
		},
		{
			name: "gt on integer",
			query: storage.Query{
				Filters: []api.Filter{{Column: "priority", Op: api.OpGt, Values: []string{"1"}}},
				Order:   []api.Order{{Column: "name"}},
			},
			want: []string{"Alpha", "Charlie"},
		},
		{
			name: "in list",
			query: storage.Query{
				Filters: []api.Filter{{Column: "name", Op: api.OpIn, Values: []string{"Alpha", "Charlie"}}},
				Order:   []api.Order{{Column: "name"}},
			},
			want: []string{"Alpha", "Charlie"},
		},
		{
			name:  "empty in list",
			query: storage.Query{Filters: []api.Filter{{Column: "name", Op: api.OpIn, Values: []string{}}}},
			want:  []string{},
		},
		{
			name: "is null and is false",
			query: storage.Query{
				Filters: []api.Filter{
					{Column: "city", Op: api.OpIs, Values: []string{"null"}},
					{Column: "is_approved", Op: api.OpIs, Values: []string{"false"}},
					{Column: "name", Op: api.OpNeq, Values: []string{"Bravo"}},
				},
				Order: []api.Order{{Column: "name", Desc: true}},
			},
			want: []string{"Charlie", "Alpha"},
		},
		{
			name: "updated after",
			query: storage.Query{
				Filters: []api.Filter{{Column: "updated_at", Op: api.OpGt, Values: []string{"2024-03-01T12:00:01Z"}}},
				Order:   []api.Order{{Column: "updated_at"}},
			},
			want: []string{"Alpha", "Charlie"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Select(ctx, "companies", tt.query)
			require.NoError(t, err)
			names := make([]string, 0, len(rows))
			for _, r := range rows {
				names = append(names, r["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}

	n, err := s.Count(ctx, "companies", []api.Filter{{Column: "priority", Op: api.OpLt, Values: []string{"3"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStorage_InvalidFilters(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	_, err := s.Select(ctx, "companies", storage.Query{Filters: []api.Filter{eq("priority", "high")}})
	assert.ErrorIs(t, err, storage.ErrInvalidValue)

	_, err = s.Select(ctx, "companies", storage.Query{Filters: []api.Filter{{Column: "name", Op: api.OpIs, Values: []string{"true"}}}})
	assert.ErrorIs(t, err, storage.ErrInvalidValue)

	_, err = s.Select(ctx, "companies", storage.Query{Order: []api.Order{{Column: "nope"}}})
	assert.ErrorIs(t, err, storage.ErrUnknownColumn)
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	_, err := s.Insert(ctx, "companies", company("c1", "Acme", "1 Main St"))
	require.NoError(t, err)

	n, err := s.Delete(ctx, "companies", []api.Filter{eq("id", "c1")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Delete(ctx, "companies", []api.Filter{eq("id", "c1")})
	require.NoError(t, err)
	assert.Zero(t, n)
}
