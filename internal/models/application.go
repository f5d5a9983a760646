package models

import (
	"time"

	"github.com/iudanet/jobtrail/internal/validation"
)

// ApplicationStatus этап отклика на вакансию
type ApplicationStatus string

const (
	ApplicationStatusSaved        ApplicationStatus = "saved"
	ApplicationStatusApplied      ApplicationStatus = "applied"
	ApplicationStatusScreening    ApplicationStatus = "screening"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusOffer        ApplicationStatus = "offer"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
	ApplicationStatusGhosted      ApplicationStatus = "ghosted"
)

// ApplicationStatuses lists every valid ApplicationStatus
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusSaved,
		ApplicationStatusApplied,
		ApplicationStatusScreening,
		ApplicationStatusInterviewing,
		ApplicationStatusOffer,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
		ApplicationStatusGhosted,
	}
}

// IsClosed reports whether the application reached a final state
func (s ApplicationStatus) IsClosed() bool {
	switch s {
	case ApplicationStatusOffer, ApplicationStatusRejected, ApplicationStatusWithdrawn, ApplicationStatusGhosted:
		return true
	default:
		return false
	}
}

// JobApplication is a single application to a position at a company.
type JobApplication struct {
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	AppliedDate  *time.Time        `json:"applied_date,omitempty"`   // AppliedDate когда отклик был отправлен
	FollowUpDate *time.Time        `json:"follow_up_date,omitempty"` // FollowUpDate когда напомнить о follow-up
	ID           string            `json:"id"`
	UserID       string            `json:"user_id,omitempty"`
	CompanyID    string            `json:"company_id"` // CompanyID ссылка на companies или private_companies
	Position     string            `json:"position"`
	Status       ApplicationStatus `json:"status"`
	JobURL       string            `json:"job_url,omitempty"`
	SalaryRange  string            `json:"salary_range,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Priority     int               `json:"priority"`
}

func (a *JobApplication) EntityID() string       { return a.ID }
func (a *JobApplication) SetEntityID(id string)  { a.ID = id }
func (a *JobApplication) Collection() Collection { return CollectionJobApplications }
func (a *JobApplication) LastModified() time.Time {
	return a.UpdatedAt
}

func (a *JobApplication) Touch(now time.Time) {
	touch(&a.CreatedAt, &a.UpdatedAt, now)
}

// Validate checks required fields and ranges
func (a *JobApplication) Validate() error {
	if err := validation.First(
		validation.Required("company_id", a.CompanyID),
		validation.Required("position", a.Position),
		validation.MaxLength("position", a.Position, validation.MaxNameLen),
		validation.Priority(a.Priority),
		validation.OneOf("status", a.Status, ApplicationStatuses()...),
		validation.OptionalURL("job_url", a.JobURL),
		validation.MaxLength("notes", a.Notes, validation.MaxNotesLen),
	); err != nil {
		return err
	}

	if a.AppliedDate != nil && a.FollowUpDate != nil && a.FollowUpDate.Before(*a.AppliedDate) {
		return validation.Errorf("follow_up_date", "must not be before applied_date")
	}
	return nil
}
