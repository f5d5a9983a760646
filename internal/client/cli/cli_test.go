package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/models"
)

// runCLI выполняет команду в офлайн-режиме с отдельной базой
func runCLI(t *testing.T, db string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"--db", db, "--offline", "--log-level", "error"}, args...)
	err := Execute(context.Background(), BuildInfo{Version: "test"}, full, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func newTestDB(t *testing.T) string {
	t.Helper()
	t.Setenv("JOBTRAIL_USER_ID", "user-1")
	t.Setenv("JOBTRAIL_GEOCODE_MIN_INTERVAL", "0s")
	return filepath.Join(t.TempDir(), "cli.db")
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	err := Execute(context.Background(), BuildInfo{Version: "1.2.3", BuildDate: "today", GitCommit: "abc"},
		[]string{"version"}, strings.NewReader(""), &stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Version:    1.2.3")
	assert.Contains(t, stdout.String(), "Git Commit: abc")
}

func TestCompanyLifecycleOffline(t *testing.T) {
	db := newTestDB(t)

	out, _, err := runCLI(t, db, "company", "add", "--name", "Acme", "--address", "1 Main St",
		"--city", "Seattle", "--lat", "47.61", "--lon", "-122.33", "--priority", "4")
	require.NoError(t, err)
	created := decode[models.Company](t, out)
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.Equal(t, 4, created.Priority)

	out, _, err = runCLI(t, db, "company", "list")
	require.NoError(t, err)
	list := decode[[]models.Company](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	out, _, err = runCLI(t, db, "company", "update", created.ID, "--notes", "hiring Go devs")
	require.NoError(t, err)
	updated := decode[models.Company](t, out)
	assert.Equal(t, "hiring Go devs", updated.Notes)
	assert.Equal(t, "Seattle", updated.City)

	out, _, err = runCLI(t, db, "status")
	require.NoError(t, err)
	status := decode[statusReport](t, out)
	assert.False(t, status.Online)
	assert.Equal(t, 2, status.Pending)
	assert.Equal(t, "user-1", status.UserID)
	assert.Nil(t, status.LastSync)

	out, _, err = runCLI(t, db, "company", "nearby", "--lat", "47.6062", "--lon", "-122.3321", "--radius", "10")
	require.NoError(t, err)
	assert.Contains(t, out, created.ID)

	_, _, err = runCLI(t, db, "company", "delete", "--yes", created.ID)
	require.NoError(t, err)

	// Запись не была синхронизирована, поэтому удаление очищает очередь
	out, _, err = runCLI(t, db, "status")
	require.NoError(t, err)
	assert.Equal(t, 0, decode[statusReport](t, out).Pending)
}

func TestCompanyAdd_ValidationError(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runCLI(t, db, "company", "add", "--name", "Acme", "--address", "1 Main St", "--lat", "95", "--lon", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestApplicationCommands(t *testing.T) {
	db := newTestDB(t)

	out, _, err := runCLI(t, db, "app", "add", "--company", "c1", "--position", "Backend engineer", "--follow-up", "2030-01-15")
	require.NoError(t, err)
	app := decode[models.JobApplication](t, out)
	assert.Equal(t, models.ApplicationStatusSaved, app.Status)
	require.NotNil(t, app.FollowUpDate)

	out, _, err = runCLI(t, db, "app", "status", app.ID, "applied")
	require.NoError(t, err)
	applied := decode[models.JobApplication](t, out)
	assert.Equal(t, models.ApplicationStatusApplied, applied.Status)
	assert.NotNil(t, applied.AppliedDate)

	out, _, err = runCLI(t, db, "app", "list", "--open")
	require.NoError(t, err)
	assert.Len(t, decode[[]models.JobApplication](t, out), 1)

	_, _, err = runCLI(t, db, "app", "add", "--company", "c1", "--position", "x", "--follow-up", "15/01/2030")
	assert.Error(t, err)

	_, _, err = runCLI(t, db, "app", "status", app.ID, "hired")
	assert.Error(t, err)
}

func TestTrackCommands(t *testing.T) {
	db := newTestDB(t)

	out, _, err := runCLI(t, db, "company", "add", "--name", "Acme", "--address", "1 Main St", "--lat", "1", "--lon", "1")
	require.NoError(t, err)
	company := decode[models.Company](t, out)

	_, _, err = runCLI(t, db, "track", "add", company.ID, "--priority", "5")
	require.NoError(t, err)

	out, _, err = runCLI(t, db, "track", "list")
	require.NoError(t, err)
	records := decode[[]models.TrackingRecord](t, out)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Priority)

	_, _, err = runCLI(t, db, "track", "remove", company.ID)
	require.NoError(t, err)

	out, _, err = runCLI(t, db, "track", "list")
	require.NoError(t, err)
	assert.Empty(t, decode[[]models.TrackingRecord](t, out))
}

func TestSyncOffline(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runCLI(t, db, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func TestConflictsCommands(t *testing.T) {
	db := newTestDB(t)

	out, _, err := runCLI(t, db, "conflicts", "list")
	require.NoError(t, err)
	assert.Empty(t, decode[[]models.Conflict](t, out))

	_, _, err = runCLI(t, db, "conflicts", "resolve", "missing", "--keep", "mine")
	assert.Error(t, err)

	_, _, err = runCLI(t, db, "conflicts", "resolve", "missing", "--keep", "server")
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	db := newTestDB(t)

	out, _, err := runCLI(t, db, "distance", "40.7128,-74.0060", "34.0522,-118.2437")
	require.NoError(t, err)
	miles := decode[map[string]float64](t, out)["miles"]
	assert.InDelta(t, 2445, miles, 10)

	_, _, err = runCLI(t, db, "distance", "91,0", "0,0")
	assert.Error(t, err)
}

func TestGeocode(t *testing.T) {
	db := newTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `[{"lat":"47.6062","lon":"-122.3321","display_name":"Seattle, WA"}]`)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("JOBTRAIL_GEOCODE_URL", srv.URL)

	out, stderr, err := runCLI(t, db, "geocode", "Seattle", "WA", "--metro", "Portland")
	require.NoError(t, err)
	res := decode[models.GeocodeResult](t, out)
	assert.Equal(t, models.GeocodeOK, res.Status)
	assert.InDelta(t, 47.6062, res.Latitude, 1e-9)
	assert.Contains(t, stderr, "Portland metro center")
}

func TestOutputTable(t *testing.T) {
	db := newTestDB(t)

	_, _, err := runCLI(t, db, "company", "add", "--name", "Acme", "--address", "1 Main St", "--lat", "1", "--lon", "1")
	require.NoError(t, err)

	out, _, err := runCLI(t, db, "-o", "table", "company", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Acme")

	_, _, err = runCLI(t, db, "-o", "yaml", "company", "list")
	assert.Error(t, err)
}
