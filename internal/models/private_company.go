package models

import (
	"time"

	"github.com/iudanet/jobtrail/internal/validation"
)

// PrivateCompany is a company visible only to the user who added it.
type PrivateCompany struct {
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"` // UserID владелец записи
	Name       string        `json:"name"`
	Address    string        `json:"address"`
	City       string        `json:"city,omitempty"`
	State      string        `json:"state,omitempty"`
	ZipCode    string        `json:"zip_code,omitempty"`
	Website    string        `json:"website,omitempty"`
	CareersURL string        `json:"careers_url,omitempty"`
	MetroArea  string        `json:"metro_area,omitempty"`
	Status     CompanyStatus `json:"status"`
	Notes      string        `json:"notes,omitempty"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Priority   int           `json:"priority"`
}

func (c *PrivateCompany) EntityID() string       { return c.ID }
func (c *PrivateCompany) SetEntityID(id string)  { c.ID = id }
func (c *PrivateCompany) Collection() Collection { return CollectionPrivateCompanies }
func (c *PrivateCompany) LastModified() time.Time {
	return c.UpdatedAt
}

func (c *PrivateCompany) Touch(now time.Time) {
	touch(&c.CreatedAt, &c.UpdatedAt, now)
}

func (c *PrivateCompany) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

func (c *PrivateCompany) FullAddress() string {
	return joinAddress(c.Address, c.City, c.State, c.ZipCode)
}

// Validate checks required fields and ranges
func (c *PrivateCompany) Validate() error {
	return validation.First(
		validation.Required("user_id", c.UserID),
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
