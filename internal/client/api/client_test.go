package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/pkg/api"
)

type row struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", WithAPIKey("anon"), WithToken("tok"), WithTimeout(5*time.Second))

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.Equal(t, "anon", client.apiKey)
	assert.Equal(t, "tok", client.token)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient("http://localhost:8080")
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestTable_Select(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/companies", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get(api.HeaderAPIKey))
		assert.Equal(t, "Bearer tok", r.Header.Get(api.HeaderAuthorization))
		assert.Equal(t, "eq.Springfield", r.URL.Query().Get("city"))
		assert.Equal(t, "in.(applied,offer)", r.URL.Query().Get("status"))
		assert.Equal(t, "name.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		writeJSON(t, w, http.StatusOK, []row{{ID: "1", Name: "Acme"}, {ID: "2", Name: "Globex"}})
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL, WithAPIKey("anon"), WithToken("tok")), "companies")
	q := NewQuery().Eq("city", "Springfield").In("status", "applied", "offer").Order("name", false).Limit(10)

	rows, err := table.Select(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Globex", rows[1].Name)
}

func TestTable_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.MediaTypeSingleObject, r.Header.Get(api.HeaderAccept))
		switch r.URL.Query().Get("id") {
		case "eq.1":
			writeJSON(t, w, http.StatusOK, row{ID: "1", Name: "Acme"})
		default:
			writeJSON(t, w, http.StatusNotAcceptable, api.ErrorResponse{
				Code:    api.CodeNoRows,
				Message: "JSON object requested, multiple (or no) rows returned",
			})
		}
	}))
	defer server.Close()

	table := NewTable[*row](NewClient(server.URL), "companies")

	got, found, err := table.Get(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Acme", got.Name)

	got, found, err = table.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestTable_Insert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, api.PreferRepresentation, r.Header.Get(api.HeaderPrefer))

		var in row
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.UpdatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		writeJSON(t, w, http.StatusCreated, in)
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL), "companies")
	out, err := table.Insert(context.Background(), row{ID: "1", Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", out.Name)
	assert.Equal(t, 2025, out.UpdatedAt.Year())
}

func TestTable_Insert_UniqueViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, api.ErrorResponse{
			Code:    api.CodeUniqueViolation,
			Message: `duplicate key value violates unique constraint "companies_name_key"`,
		})
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL), "companies")
	_, err := table.Insert(context.Background(), row{ID: "1", Name: "Acme"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsTransient(err))

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, err.Error(), "server error (409, 23505)")
}

func TestTable_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		if r.URL.Query().Get("id") != "eq.1" {
			writeJSON(t, w, http.StatusNotAcceptable, api.ErrorResponse{Code: api.CodeNoRows, Message: "no rows"})
			return
		}

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Acme Corp"}`, string(body))
		writeJSON(t, w, http.StatusOK, row{ID: "1", Name: "Acme Corp"})
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL), "companies")

	out, err := table.Update(context.Background(), "1", map[string]any{"name": "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", out.Name)

	_, err = table.Update(context.Background(), "2", map[string]any{"name": "x"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestTable_Delete(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL), "companies")
	require.NoError(t, table.Delete(context.Background(), "1"))
	assert.Equal(t, 1, calls)
}

func TestTable_Count(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, api.PreferCountExact, r.Header.Get(api.HeaderPrefer))
		assert.Equal(t, "is.true", r.URL.Query().Get("is_approved"))
		w.Header().Set(api.HeaderContentRange, "0-24/42")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	table := NewTable[row](NewClient(server.URL), "companies")
	n, err := table.Count(context.Background(), NewQuery().Is("is_approved", "true"))
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           any
		wantValidation bool
		wantTransient  bool
		wantNotFound   bool
		wantUnauth     bool
	}{
		{name: "check violation", status: http.StatusBadRequest, body: api.ErrorResponse{Code: api.CodeCheckViolation, Message: "check"}, wantValidation: true},
		{name: "bad request without code", status: http.StatusBadRequest, body: "bad", wantValidation: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", wantTransient: true},
		{name: "server error", status: http.StatusBadGateway, body: "gateway", wantTransient: true},
		{name: "no rows", status: http.StatusNotAcceptable, body: api.ErrorResponse{Code: api.CodeNoRows, Message: "0 rows"}, wantNotFound: true},
		{name: "unknown table", status: http.StatusNotFound, body: api.ErrorResponse{Code: api.CodeUndefinedTable, Message: "no table"}},
		{name: "bare 404 from proxy", status: http.StatusNotFound, body: "404 page not found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: api.ErrorResponse{Code: api.CodeUnauthorized, Message: "jwt expired"}, wantUnauth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if s, ok := tt.body.(string); ok {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(s))
					return
				}
				writeJSON(t, w, tt.status, tt.body)
			}))
			defer server.Close()

			_, err := NewTable[row](NewClient(server.URL), "companies").Select(context.Background(), nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantValidation, IsValidation(err))
			assert.Equal(t, tt.wantTransient, IsTransient(err))
			assert.Equal(t, tt.wantNotFound, IsNotFound(err))
			assert.Equal(t, tt.wantUnauth, IsUnauthorized(err))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, WithTimeout(time.Second))
	_, err := NewTable[row](client, "companies").Select(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.True(t, IsTransient(err))

	assert.Error(t, client.Ping(context.Background()))
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// Бэкенд ответил, значит доступен, даже если отказал в доступе
	assert.NoError(t, NewClient(server.URL).Ping(context.Background()))
}

func TestClient_PingServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	assert.Error(t, NewClient(server.URL).Ping(context.Background()))
}
