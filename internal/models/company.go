package models

import (
	"time"

	"github.com/iudanet/jobtrail/internal/validation"
)

// CompanyStatus отражает, на каком этапе пользователь работает с компанией
type CompanyStatus string

const (
	CompanyStatusNotContacted  CompanyStatus = "not_contacted"
	CompanyStatusResearching   CompanyStatus = "researching"
	CompanyStatusApplied       CompanyStatus = "applied"
	CompanyStatusInterviewing  CompanyStatus = "interviewing"
	CompanyStatusOffer         CompanyStatus = "offer"
	CompanyStatusRejected      CompanyStatus = "rejected"
	CompanyStatusNotInterested CompanyStatus = "not_interested"
)

// CompanyStatuses lists every valid CompanyStatus
func CompanyStatuses() []CompanyStatus {
	return []CompanyStatus{
		CompanyStatusNotContacted,
		CompanyStatusResearching,
		CompanyStatusApplied,
		CompanyStatusInterviewing,
		CompanyStatusOffer,
		CompanyStatusRejected,
		CompanyStatusNotInterested,
	}
}

// DefaultPriority применяется, если приоритет не задан
const DefaultPriority = 3

// Company is a community-visible company a job seeker may visit.
type Company struct {
	CreatedAt  time.Time     `json:"created_at"`            // CreatedAt время создания записи
	UpdatedAt  time.Time     `json:"updated_at"`            // UpdatedAt время последнего изменения
	ID         string        `json:"id"`                    // ID UUID, генерируется клиентом
	Name       string        `json:"name"`                  // Name название компании
	Address    string        `json:"address"`               // Address улица и номер дома
	City       string        `json:"city,omitempty"`        // City город
	State      string        `json:"state,omitempty"`       // State штат/регион
	ZipCode    string        `json:"zip_code,omitempty"`    // ZipCode почтовый индекс
	Website    string        `json:"website,omitempty"`     // Website сайт компании
	CareersURL string        `json:"careers_url,omitempty"` // CareersURL страница вакансий
	MetroArea  string        `json:"metro_area,omitempty"`  // MetroArea метрополитенский регион
	Status     CompanyStatus `json:"status"`                // Status этап работы с компанией
	Notes      string        `json:"notes,omitempty"`       // Notes свободные заметки
	CreatedBy  string        `json:"created_by,omitempty"`  // CreatedBy ID пользователя, добавившего компанию
	Latitude   float64       `json:"latitude"`              // Latitude широта
	Longitude  float64       `json:"longitude"`             // Longitude долгота
	Priority   int           `json:"priority"`              // Priority 1-5
	IsApproved bool          `json:"is_approved"`           // IsApproved запись одобрена модератором
}

func (c *Company) EntityID() string       { return c.ID }
func (c *Company) SetEntityID(id string)  { c.ID = id }
func (c *Company) Collection() Collection { return CollectionCompanies }
func (c *Company) LastModified() time.Time {
	return c.UpdatedAt
}

// Touch stamps created_at/updated_at
func (c *Company) Touch(now time.Time) {
	touch(&c.CreatedAt, &c.UpdatedAt, now)
}

// HasCoordinates reports whether the company was already geocoded
func (c *Company) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// FullAddress joins the address parts for geocoding
func (c *Company) FullAddress() string {
	return joinAddress(c.Address, c.City, c.State, c.ZipCode)
}

// Validate checks required fields and ranges
func (c *Company) Validate() error {
	return validation.First(
		validation.Required("name", c.Name),
		validation.MaxLength("name", c.Name, validation.MaxNameLen),
		validation.Required("address", c.Address),
		validation.Coordinates(c.Latitude, c.Longitude),
		validation.Priority(c.Priority),
		validation.OneOf("status", c.Status, CompanyStatuses()...),
		validation.OptionalURL("website", c.Website),
		validation.OptionalURL("careers_url", c.CareersURL),
		validation.MaxLength("notes", c.Notes, validation.MaxNotesLen),
	)
}
