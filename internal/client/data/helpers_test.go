package data

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/jobtrail/internal/client/sync"
	"github.com/iudanet/jobtrail/internal/models"
)

const testUser = "user-1"

var t0 = time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

var (
	seattle  = models.GeocodeResult{Status: models.GeocodeOK, Latitude: 47.6097, Longitude: -122.3331}
	bellevue = models.GeocodeResult{Status: models.GeocodeOK, Latitude: 47.6101, Longitude: -122.2015}
	portland = models.GeocodeResult{Status: models.GeocodeOK, Latitude: 45.5152, Longitude: -122.6784}
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeGeocoder отвечает по заранее заданной таблице адресов
type fakeGeocoder struct {
	results map[string]models.GeocodeResult
	calls   []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) models.GeocodeResult {
	g.calls = append(g.calls, address)
	if res, ok := g.results[address]; ok {
		return res
	}
	return models.GeocodeResult{Status: models.GeocodeNoResults, Message: "no results found"}
}

// env собирает сервисы поверх настоящего bbolt хранилища в офлайн-режиме
type env struct {
	store *boltdb.Storage
	clock *testClock
	geo   *fakeGeocoder
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "data_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &env{
		store: store,
		clock: &testClock{now: t0},
		geo:   &fakeGeocoder{results: map[string]models.GeocodeResult{}},
	}
}

func newRepo[T models.Entity](e *env) *clientsync.Synchronizer[T] {
	return clientsync.NewSynchronizer[T](
		&clientsync.RemoteMock[T]{},
		e.store,
		clientsync.NewStatic(false),
		slog.New(slog.DiscardHandler),
		clientsync.WithClock(e.clock.Now),
	)
}

func (e *env) companies() CompanyService {
	return NewCompanyService(newRepo[*models.Company](e), e.geo, nil, testUser, slog.New(slog.DiscardHandler))
}

func (e *env) applications(userID string) ApplicationService {
	return NewApplicationService(newRepo[*models.JobApplication](e), userID, slog.New(slog.DiscardHandler), WithClock(e.clock.Now))
}
