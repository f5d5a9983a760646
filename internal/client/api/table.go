package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/jobtrail/pkg/api"
)

// Table is a typed handle to one remote table. Rows are exchanged as JSON
// objects that decode into T.
type Table[T any] struct {
	client *Client
	name   string
}

// NewTable создает handle таблицы name
func NewTable[T any](client *Client, name string) *Table[T] {
	return &Table[T]{client: client, name: name}
}

// Name returns the remote table name
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) path() string {
	return api.RestPrefix + t.name
}

func byID(id string) url.Values {
	return NewQuery().Eq("id", id).Values()
}

func singleObject(extra ...string) http.Header {
	h := http.Header{}
	h.Set(api.HeaderAccept, api.MediaTypeSingleObject)
	for _, p := range extra {
		h.Add(api.HeaderPrefer, p)
	}
	return h
}

// Select returns rows matching q (all rows if q is nil)
func (t *Table[T]) Select(ctx context.Context, q *Query) ([]T, error) {
	resp, err := t.client.doRequest(ctx, request{
		method: http.MethodGet,
		path:   t.path(),
		query:  q.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}

	var rows []T
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("select %s: failed to decode response: %w", t.name, err)
	}
	return rows, nil
}

// Get returns the row with the given id. A missing row is reported as
// found=false without an error.
func (t *Table[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var out T

	resp, err := t.client.doRequest(ctx, request{
		method: http.MethodGet,
		path:   t.path(),
		query:  byID(id),
		header: singleObject(),
	})
	if IsNotFound(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("get %s/%s: %w", t.name, id, err)
	}

	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, false, fmt.Errorf("get %s/%s: failed to decode response: %w", t.name, id, err)
	}
	return out, true, nil
}

// Insert creates a row and returns it as stored by the backend
func (t *Table[T]) Insert(ctx context.Context, value T) (T, error) {
	var out T

	resp, err := t.client.doRequest(ctx, request{
		method: http.MethodPost,
		path:   t.path(),
		body:   value,
		header: singleObject(api.PreferRepresentation),
	})
	if err != nil {
		return out, fmt.Errorf("insert %s: %w", t.name, err)
	}

	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("insert %s: failed to decode response: %w", t.name, err)
	}
	return out, nil
}

// Update applies patch to the row with the given id and returns the updated
// row. A missing row fails with an error for which IsNotFound is true.
func (t *Table[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var out T

	resp, err := t.client.doRequest(ctx, request{
		method: http.MethodPatch,
		path:   t.path(),
		query:  byID(id),
		body:   patch,
		header: singleObject(api.PreferRepresentation),
	})
	if err != nil {
		return out, fmt.Errorf("update %s/%s: %w", t.name, id, err)
	}

	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("update %s/%s: failed to decode response: %w", t.name, id, err)
	}
	return out, nil
}

// Delete removes the row with the given id. Deleting a missing row succeeds.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	_, err := t.client.doRequest(ctx, request{
		method: http.MethodDelete,
		path:   t.path(),
		query:  byID(id),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", t.name, id, err)
	}
	return nil
}

// Count returns the number of rows matching q
func (t *Table[T]) Count(ctx context.Context, q *Query) (int, error) {
	h := http.Header{}
	h.Set(api.HeaderPrefer, api.PreferCountExact)

	resp, err := t.client.doRequest(ctx, request{
		method: http.MethodHead,
		path:   t.path(),
		query:  q.Values(),
		header: h,
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}

	cr, err := api.ParseContentRange(resp.header.Get(api.HeaderContentRange))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	if cr.Total < 0 {
		return 0, fmt.Errorf("count %s: backend did not return a total", t.name)
	}
	return cr.Total, nil
}
