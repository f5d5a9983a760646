package data

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/iudanet/jobtrail/internal/models"
)

// TrackingService управляет списком компаний, за которыми следит пользователь
type TrackingService interface {
	Track(ctx context.Context, req TrackRequest) (*models.TrackingRecord, error)
	Untrack(ctx context.Context, companyID string) error
	Find(ctx context.Context, companyID string) (*models.TrackingRecord, error)
	List(ctx context.Context) ([]*models.TrackingRecord, error)
}

// TrackRequest параметры отслеживания компании
type TrackRequest struct {
	CompanyID string
	Status    models.CompanyStatus
	Notes     string
	Priority  int
}

type trackingService struct {
	repo      Repository[*models.TrackingRecord]
	companies Repository[*models.Company]
	logger    *slog.Logger
	userID    string
}

// NewTrackingService creates a tracking service. companies is used to check
// that the tracked company exists locally and may be nil.
func NewTrackingService(repo Repository[*models.TrackingRecord], companies Repository[*models.Company], userID string, logger *slog.Logger) TrackingService {
	return &trackingService{
		repo:      repo,
		companies: companies,
		logger:    logger,
		userID:    userID,
	}
}

// Track starts following a company or updates the active record. There is
// at most one active record per user and company.
func (s *trackingService) Track(ctx context.Context, req TrackRequest) (*models.TrackingRecord, error) {
	if s.companies != nil && req.CompanyID != "" {
		if _, err := s.companies.Get(ctx, req.CompanyID); err != nil {
			return nil, err
		}
	}

	existing, err := s.Find(ctx, req.CompanyID)
	switch {
	case err == nil:
		if req.Status != "" {
			existing.Status = req.Status
		}
		if req.Notes != "" {
			existing.Notes = req.Notes
		}
		if req.Priority != 0 {
			existing.Priority = req.Priority
		}
		return s.repo.Update(ctx, existing)
	case !isNotFound(err):
		return nil, err
	}

	rec := &models.TrackingRecord{
		UserID:    s.userID,
		CompanyID: req.CompanyID,
		Status:    req.Status,
		Notes:     req.Notes,
		Priority:  req.Priority,
		IsActive:  true,
	}
	if rec.Status == "" {
		rec.Status = models.CompanyStatusNotContacted
	}
	if rec.Priority == 0 {
		rec.Priority = models.DefaultPriority
	}

	s.logger.DebugContext(ctx, "Tracking company", slog.String("company_id", req.CompanyID))
	return s.repo.Create(ctx, rec)
}

// Untrack deactivates the active record. History is kept.
func (s *trackingService) Untrack(ctx context.Context, companyID string) error {
	rec, err := s.Find(ctx, companyID)
	if err != nil {
		return err
	}

	rec.IsActive = false
	_, err = s.repo.Update(ctx, rec)
	return err
}

// Find returns the active tracking record for companyID
func (s *trackingService) Find(ctx context.Context, companyID string) (*models.TrackingRecord, error) {
	records, err := s.repo.List(ctx, func(r *models.TrackingRecord) bool {
		return r.IsActive && r.UserID == s.userID && r.CompanyID == companyID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tracking %s: %w", companyID, ErrNotFound)
	}
	return records[0], nil
}

// List returns active records, highest priority first
func (s *trackingService) List(ctx context.Context) ([]*models.TrackingRecord, error) {
	records, err := s.repo.List(ctx, func(r *models.TrackingRecord) bool {
		return r.IsActive && r.UserID == s.userID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority > records[j].Priority
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}
