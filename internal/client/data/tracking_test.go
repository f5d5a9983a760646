package data

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/models"
)

func newTracking(t *testing.T) (*env, TrackingService, *models.Company) {
	t.Helper()

	e := newEnv(t)
	companies := newRepo[*models.Company](e)
	company, err := companies.Create(context.Background(), &models.Company{
		Name:     "Acme",
		Address:  "1 Main St",
		Status:   models.CompanyStatusNotContacted,
		Priority: 3,
	})
	require.NoError(t, err)

	svc := NewTrackingService(newRepo[*models.TrackingRecord](e), companies, testUser, slog.New(slog.DiscardHandler))
	return e, svc, company
}

func TestTrackingService_Track(t *testing.T) {
	ctx := context.Background()
	e, svc, company := newTracking(t)

	rec, err := svc.Track(ctx, TrackRequest{CompanyID: company.ID})
	require.NoError(t, err)
	assert.True(t, rec.IsActive)
	assert.Equal(t, testUser, rec.UserID)
	assert.Equal(t, models.CompanyStatusNotContacted, rec.Status)
	assert.Equal(t, models.DefaultPriority, rec.Priority)

	// Повторное отслеживание обновляет активную запись
	e.clock.Advance(time.Minute)
	again, err := svc.Track(ctx, TrackRequest{CompanyID: company.ID, Status: models.CompanyStatusApplied, Priority: 5})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, models.CompanyStatusApplied, again.Status)
	assert.Equal(t, 5, again.Priority)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CompanyStatusApplied, list[0].Status)
}

func TestTrackingService_TrackUnknownCompany(t *testing.T) {
	_, svc, _ := newTracking(t)

	_, err := svc.Track(context.Background(), TrackRequest{CompanyID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrackingService_Untrack(t *testing.T) {
	ctx := context.Background()
	_, svc, company := newTracking(t)

	assert.ErrorIs(t, svc.Untrack(ctx, company.ID), ErrNotFound)

	first, err := svc.Track(ctx, TrackRequest{CompanyID: company.ID, Notes: "met at meetup"})
	require.NoError(t, err)
	require.NoError(t, svc.Untrack(ctx, company.ID))

	_, err = svc.Find(ctx, company.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// После отписки создается новая активная запись
	second, err := svc.Track(ctx, TrackRequest{CompanyID: company.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.IsActive)
}
