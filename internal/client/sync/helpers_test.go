package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/client/storage/boltdb"
	"github.com/iudanet/jobtrail/internal/models"
	pkgapi "github.com/iudanet/jobtrail/pkg/api"
)

var t0 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

// testClock часы, которые двигаются вручную
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func createTestStorage(t *testing.T) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fakeBackend хранит строки в памяти и ведёт себя как таблица бэкенда:
// проставляет updated_at и проверяет уникальность имени.
type fakeBackend struct {
	clock   *testClock
	rows    map[string]*models.Company
	failErr error // failErr если задан, возвращается из любого вызова
}

func newFakeBackend(clock *testClock) *fakeBackend {
	return &fakeBackend{clock: clock, rows: make(map[string]*models.Company)}
}

func clone(c *models.Company) *models.Company {
	cp := *c
	return &cp
}

func uniqueViolation() error {
	return &api.Error{Status: 409, Code: pkgapi.CodeUniqueViolation, Message: "duplicate key value violates unique constraint"}
}

func (b *fakeBackend) mock() *RemoteMock[*models.Company] {
	return &RemoteMock[*models.Company]{
		SelectFunc: func(ctx context.Context, q *api.Query) ([]*models.Company, error) {
			if b.failErr != nil {
				return nil, b.failErr
			}
			var out []*models.Company
			for _, r := range b.rows {
				out = append(out, clone(r))
			}
			return out, nil
		},
		GetFunc: func(ctx context.Context, id string) (*models.Company, bool, error) {
			if b.failErr != nil {
				return nil, false, b.failErr
			}
			r, ok := b.rows[id]
			if !ok {
				return nil, false, nil
			}
			return clone(r), true, nil
		},
		InsertFunc: func(ctx context.Context, value *models.Company) (*models.Company, error) {
			if b.failErr != nil {
				return nil, b.failErr
			}
			if _, ok := b.rows[value.ID]; ok {
				return nil, uniqueViolation()
			}
			for _, r := range b.rows {
				if r.Name == value.Name {
					return nil, uniqueViolation()
				}
			}
			row := clone(value)
			row.CreatedAt = b.clock.Now()
			row.UpdatedAt = b.clock.Now()
			b.rows[row.ID] = row
			return clone(row), nil
		},
		UpdateFunc: func(ctx context.Context, id string, patch any) (*models.Company, error) {
			if b.failErr != nil {
				return nil, b.failErr
			}
			if _, ok := b.rows[id]; !ok {
				return nil, &api.Error{Status: 406, Code: pkgapi.CodeNoRows, Message: "no rows"}
			}
			data, err := json.Marshal(patch)
			if err != nil {
				return nil, err
			}
			row := clone(b.rows[id])
			if err := json.Unmarshal(data, row); err != nil {
				return nil, err
			}
			row.UpdatedAt = b.clock.Now()
			b.rows[id] = row
			return clone(row), nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			if b.failErr != nil {
				return b.failErr
			}
			delete(b.rows, id)
			return nil
		},
	}
}

type fixture struct {
	clock   *testClock
	backend *fakeBackend
	remote  *RemoteMock[*models.Company]
	store   *boltdb.Storage
	conn    *Static
	sync    *Synchronizer[*models.Company]
	manager *Manager
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()

	clock := &testClock{now: t0}
	backend := newFakeBackend(clock)
	remote := backend.mock()
	store := createTestStorage(t)
	conn := NewStatic(online)

	ids := 0
	s := NewSynchronizer[*models.Company](remote, store, conn, slog.New(slog.DiscardHandler),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("company-%d", ids)
		}),
	)
	m := NewManager(store, conn, slog.New(slog.DiscardHandler), s)
	m.now = clock.Now

	return &fixture{clock: clock, backend: backend, remote: remote, store: store, conn: conn, sync: s, manager: m}
}

func acme() *models.Company {
	return &models.Company{
		Name:      "Acme",
		Address:   "1 Main St",
		Latitude:  40.0,
		Longitude: -74.0,
		Status:    models.CompanyStatusNotContacted,
		Priority:  3,
	}
}

var errNetwork = fmt.Errorf("%w: dial tcp: connection refused", api.ErrUnreachable)

