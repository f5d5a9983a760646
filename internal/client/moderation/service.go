package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// CollectionSuggestions таблица предложений правок
const CollectionSuggestions = "company_edit_suggestions"

var (
	// ErrNotFound предложение или компания не найдены на сервере
	ErrNotFound = errors.New("not found")
	// ErrAlreadyReviewed предложение уже одобрено или отклонено
	ErrAlreadyReviewed = errors.New("suggestion already reviewed")
)

//go:generate moq -out gateway_mock.go . Suggestions Companies

// Suggestions удаленная таблица предложений
type Suggestions interface {
	Select(ctx context.Context, q *api.Query) ([]*models.EditSuggestion, error)
	Get(ctx context.Context, id string) (*models.EditSuggestion, bool, error)
	Insert(ctx context.Context, value *models.EditSuggestion) (*models.EditSuggestion, error)
	Update(ctx context.Context, id string, patch any) (*models.EditSuggestion, error)
}

// Companies удаленная таблица компаний
type Companies interface {
	Get(ctx context.Context, id string) (*models.Company, bool, error)
	Update(ctx context.Context, id string, patch any) (*models.Company, error)
}

var (
	_ Suggestions = (*api.Table[*models.EditSuggestion])(nil)
	_ Companies   = (*api.Table[*models.Company])(nil)
)

// SubmitRequest предложение изменить одно поле компании
type SubmitRequest struct {
	CompanyID string
	Field     string
	Value     string
	Reason    string
}

// Service works directly against the backend; moderation has no offline mode.
type Service struct {
	suggestions Suggestions
	companies   Companies
	logger      *slog.Logger
	now         func() time.Time
	userID      string
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет часы
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a moderation service acting as userID
func NewService(suggestions Suggestions, companies Companies, userID string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		suggestions: suggestions,
		companies:   companies,
		logger:      logger,
		now:         time.Now,
		userID:      userID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit proposes a change. The value is checked against a copy of the
// current company before it is sent.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.EditSuggestion, error) {
	field, err := ParseField(req.Field)
	if err != nil {
		return nil, err
	}
	if err := validation.MaxLength("reason", req.Reason, validation.MaxNotesLen); err != nil {
		return nil, err
	}

	company, err := s.company(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := Apply(company, field, req.Value); err != nil {
		return nil, err
	}

	suggestion := &models.EditSuggestion{
		ID:             uuid.NewString(),
		CompanyID:      req.CompanyID,
		Field:          string(field),
		SuggestedValue: req.Value,
		Reason:         req.Reason,
		Status:         models.SuggestionPending,
		SubmittedBy:    s.userID,
		CreatedAt:      s.now().UTC(),
	}

	created, err := s.suggestions.Insert(ctx, suggestion)
	if err != nil {
		return nil, fmt.Errorf("failed to submit suggestion: %w", err)
	}

	s.logger.InfoContext(ctx, "Edit suggestion submitted",
		slog.String("suggestion_id", created.ID),
		slog.String("company_id", created.CompanyID),
		slog.String("field", created.Field),
	)
	return created, nil
}

// Pending returns pending suggestions, oldest first. An empty companyID
// lists suggestions for every company.
func (s *Service) Pending(ctx context.Context, companyID string) ([]*models.EditSuggestion, error) {
	q := api.NewQuery().
		Eq("status", string(models.SuggestionPending)).
		Order("created_at", false)
	if companyID != "" {
		q.Eq("company_id", companyID)
	}

	list, err := s.suggestions.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return list, nil
}

// Approve applies the suggestion to the company and marks it approved
func (s *Service) Approve(ctx context.Context, id, note string) (*models.EditSuggestion, *models.Company, error) {
	suggestion, err := s.pending(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	field, err := ParseField(suggestion.Field)
	if err != nil {
		return nil, nil, err
	}

	company, err := s.company(ctx, suggestion.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if err := Apply(company, field, suggestion.SuggestedValue); err != nil {
		return nil, nil, err
	}

	patch := map[string]any{string(field): suggestion.SuggestedValue}
	if field.Geolocated() {
		// Координаты старого адреса больше не верны
		patch["latitude"] = 0
		patch["longitude"] = 0
	}

	updated, err := s.companies.Update(ctx, company.ID, patch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update company %s: %w", company.ID, err)
	}

	reviewed, err := s.review(ctx, suggestion, models.SuggestionApproved, note)
	if err != nil {
		return nil, nil, err
	}
	return reviewed, updated, nil
}

// Reject marks the suggestion rejected without touching the company
func (s *Service) Reject(ctx context.Context, id, note string) (*models.EditSuggestion, error) {
	suggestion, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.review(ctx, suggestion, models.SuggestionRejected, note)
}

func (s *Service) review(ctx context.Context, suggestion *models.EditSuggestion, status models.SuggestionStatus, note string) (*models.EditSuggestion, error) {
	reviewedAt := s.now().UTC()
	reviewed, err := s.suggestions.Update(ctx, suggestion.ID, map[string]any{
		"status":      status,
		"reviewed_by": s.userID,
		"reviewed_at": reviewedAt,
		"review_note": note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review suggestion %s: %w", suggestion.ID, err)
	}

	s.logger.InfoContext(ctx, "Edit suggestion reviewed",
		slog.String("suggestion_id", suggestion.ID),
		slog.String("status", string(status)),
	)
	return reviewed, nil
}

func (s *Service) pending(ctx context.Context, id string) (*models.EditSuggestion, error) {
	suggestion, ok, err := s.suggestions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("suggestion %s: %w", id, ErrNotFound)
	}
	if suggestion.Status != models.SuggestionPending {
		return nil, fmt.Errorf("suggestion %s is %s: %w", id, suggestion.Status, ErrAlreadyReviewed)
	}
	return suggestion, nil
}

func (s *Service) company(ctx context.Context, id string) (*models.Company, error) {
	if err := validation.Required("company_id", id); err != nil {
		return nil, err
	}
	company, ok, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return company, nil
}
