package models

import (
	"time"

	"github.com/iudanet/jobtrail/internal/validation"
)

// TrackingRecord links a user to a community company they are following.
// Only one active record per (user_id, company_id) pair exists remotely.
type TrackingRecord struct {
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	CompanyID string        `json:"company_id"`
	Status    CompanyStatus `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	Priority  int           `json:"priority"`
	IsActive  bool          `json:"is_active"`
}

func (r *TrackingRecord) EntityID() string       { return r.ID }
func (r *TrackingRecord) SetEntityID(id string)  { r.ID = id }
func (r *TrackingRecord) Collection() Collection { return CollectionTracking }
func (r *TrackingRecord) LastModified() time.Time {
	return r.UpdatedAt
}

func (r *TrackingRecord) Touch(now time.Time) {
	touch(&r.CreatedAt, &r.UpdatedAt, now)
}

// Validate checks required fields and ranges
func (r *TrackingRecord) Validate() error {
	return validation.First(
		validation.Required("user_id", r.UserID),
		validation.Required("company_id", r.CompanyID),
		validation.Priority(r.Priority),
		validation.OneOf("status", r.Status, CompanyStatuses()...),
		validation.MaxLength("notes", r.Notes, validation.MaxNotesLen),
	)
}
