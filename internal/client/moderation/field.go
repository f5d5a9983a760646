// Package moderation реализует предложения правок к общим компаниям
// и их рассмотрение администратором.
package moderation

import (
	"strings"

	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// Field поле компании, которое можно изменить через предложение правки
type Field string

const (
	FieldName       Field = "name"
	FieldAddress    Field = "address"
	FieldCity       Field = "city"
	FieldState      Field = "state"
	FieldZipCode    Field = "zip_code"
	FieldWebsite    Field = "website"
	FieldCareersURL Field = "careers_url"
	FieldMetroArea  Field = "metro_area"
	FieldNotes      Field = "notes"
)

// Fields lists every editable field
func Fields() []Field {
	return []Field{
		FieldName,
		FieldAddress,
		FieldCity,
		FieldState,
		FieldZipCode,
		FieldWebsite,
		FieldCareersURL,
		FieldMetroArea,
		FieldNotes,
	}
}

// ParseField converts a column name into a Field
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields() {
		if f == known {
			return f, nil
		}
	}
	return "", validation.Errorf("field", "unknown field %q", s)
}

// Apply sets field of company to value. The company is validated afterwards.
func Apply(company *models.Company, field Field, value string) error {
	switch field {
	case FieldName:
		company.Name = value
	case FieldAddress:
		company.Address = value
	case FieldCity:
		company.City = value
	case FieldState:
		company.State = value
	case FieldZipCode:
		company.ZipCode = value
	case FieldWebsite:
		company.Website = value
	case FieldCareersURL:
		company.CareersURL = value
	case FieldMetroArea:
		company.MetroArea = value
	case FieldNotes:
		company.Notes = value
	default:
		return validation.Errorf("field", "unknown field %q", field)
	}
	return company.Validate()
}

// Geolocated reports whether changing field invalidates the coordinates
func (f Field) Geolocated() bool {
	switch f {
	case FieldAddress, FieldCity, FieldState, FieldZipCode:
		return true
	default:
		return false
	}
}
