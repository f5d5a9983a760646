package models

import "time"

// SuggestionStatus состояние предложенной правки
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// EditSuggestion is a community-contributed correction to a company field,
// applied by an admin after review.
type EditSuggestion struct {
	CreatedAt      time.Time        `json:"created_at"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	Field          string           `json:"field"`
	SuggestedValue string           `json:"suggested_value"`
	Reason         string           `json:"reason,omitempty"`
	Status         SuggestionStatus `json:"status"`
	SubmittedBy    string           `json:"submitted_by,omitempty"`
	ReviewedBy     string           `json:"reviewed_by,omitempty"`
	ReviewNote     string           `json:"review_note,omitempty"`
}
