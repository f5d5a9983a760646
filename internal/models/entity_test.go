package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func TestRecord_Baseline(t *testing.T) {
	synced := t0
	seen := t1

	tests := []struct {
		name   string
		record Record[*Company]
		want   *time.Time
	}{
		{name: "never synced", record: Record[*Company]{}},
		{name: "synced only", record: Record[*Company]{SyncedAt: &synced}, want: &synced},
		{name: "last synced wins", record: Record[*Company]{SyncedAt: &synced, LastSyncedAt: &seen}, want: &seen},
		{name: "offline edit keeps baseline", record: Record[*Company]{LastSyncedAt: &seen}, want: &seen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.Baseline()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.True(t, got.Equal(*tt.want))
			}
		})
	}
}

func TestRecord_IsSynced(t *testing.T) {
	now := t0
	assert.False(t, (&Record[*Company]{}).IsSynced())
	assert.False(t, (&Record[*Company]{LastSyncedAt: &now}).IsSynced())
	assert.True(t, (&Record[*Company]{SyncedAt: &now}).IsSynced())
}

func TestTouch(t *testing.T) {
	entities := []Entity{
		&Company{},
		&JobApplication{},
		&PrivateCompany{},
		&TrackingRecord{},
	}

	for _, e := range entities {
		t.Run(string(e.Collection()), func(t *testing.T) {
			e.Touch(t0)
			assert.True(t, e.LastModified().Equal(t0))

			// created_at остается от первой записи
			e.Touch(t1)
			assert.True(t, e.LastModified().Equal(t1))
			assert.True(t, createdAt(e).Equal(t0))
		})
	}
}

func createdAt(e Entity) time.Time {
	switch v := e.(type) {
	case *Company:
		return v.CreatedAt
	case *JobApplication:
		return v.CreatedAt
	case *PrivateCompany:
		return v.CreatedAt
	case *TrackingRecord:
		return v.CreatedAt
	}
	return time.Time{}
}

func TestEntity_CollectionOnZeroValue(t *testing.T) {
	var (
		c *Company
		a *JobApplication
		p *PrivateCompany
		r *TrackingRecord
	)
	assert.Equal(t, CollectionCompanies, c.Collection())
	assert.Equal(t, CollectionJobApplications, a.Collection())
	assert.Equal(t, CollectionPrivateCompanies, p.Collection())
	assert.Equal(t, CollectionTracking, r.Collection())
	assert.Len(t, EntityCollections(), 4)
}

func TestEntity_SetEntityID(t *testing.T) {
	c := &Company{}
	c.SetEntityID("company-1")
	assert.Equal(t, "company-1", c.EntityID())
}

func TestCompany_Address(t *testing.T) {
	c := &Company{Address: " 1 Main St ", City: "Springfield", ZipCode: "12345"}
	assert.Equal(t, "1 Main St, Springfield, 12345", c.FullAddress())
	assert.False(t, c.HasCoordinates())

	c.Longitude = -74
	assert.True(t, c.HasCoordinates())
}

func TestApplicationStatus_IsClosed(t *testing.T) {
	closed := map[ApplicationStatus]bool{
		ApplicationStatusOffer:     true,
		ApplicationStatusRejected:  true,
		ApplicationStatusWithdrawn: true,
		ApplicationStatusGhosted:   true,
	}
	for _, s := range ApplicationStatuses() {
		assert.Equal(t, closed[s], s.IsClosed(), s)
	}
}

func TestGeocodeResult_Cacheable(t *testing.T) {
	tests := []struct {
		status GeocodeStatus
		want   bool
	}{
		{GeocodeOK, true},
		{GeocodeNoResults, true},
		{GeocodeRateLimited, false},
		{GeocodeFailed, false},
		{GeocodeNetworkError, false},
		{GeocodeInvalidAddress, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GeocodeResult{Status: tt.status}.Cacheable(), tt.status)
	}
}
