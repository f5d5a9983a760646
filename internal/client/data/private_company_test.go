package data

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/jobtrail/internal/models"
)

func (e *env) privateCompanies(userID string) PrivateCompanyService {
	return NewPrivateCompanyService(newRepo[*models.PrivateCompany](e), e.geo, userID, slog.New(slog.DiscardHandler))
}

func TestPrivateCompanyService_Add(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.geo.results["5 Pine St, Seattle"] = seattle
	svc := e.privateCompanies(testUser)

	company, warnings, err := svc.Add(ctx, &models.PrivateCompany{Name: "Stealth", Address: "5 Pine St", City: "Seattle", UserID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, testUser, company.UserID)
	assert.Equal(t, seattle.Latitude, company.Latitude)
	assert.Equal(t, models.CompanyStatusNotContacted, company.Status)

	_, warnings, err = svc.Add(ctx, &models.PrivateCompany{Name: "Ghost", Address: "nowhere"})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestPrivateCompanyService_Scoped(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	mine := e.privateCompanies(testUser)
	theirs := e.privateCompanies("user-2")

	other, _, err := theirs.Add(ctx, &models.PrivateCompany{Name: "Theirs", Address: "a", Latitude: 1, Longitude: 1})
	require.NoError(t, err)
	own, _, err := mine.Add(ctx, &models.PrivateCompany{Name: "Mine", Address: "b", Latitude: 1, Longitude: 1})
	require.NoError(t, err)

	_, err = mine.Get(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	hijack := *other
	hijack.Name = "Hijacked"
	_, _, err = mine.Update(ctx, &hijack)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, mine.Delete(ctx, other.ID), ErrNotFound)

	list, err := mine.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, own.ID, list[0].ID)

	renamed := *own
	renamed.Name = "Mine Renamed"
	updated, _, err := mine.Update(ctx, &renamed)
	require.NoError(t, err)
	assert.Equal(t, "Mine Renamed", updated.Name)
	assert.Empty(t, e.geo.calls)

	require.NoError(t, mine.Delete(ctx, own.ID))
	list, err = mine.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
