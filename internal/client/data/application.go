package data

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// ApplicationService управляет откликами пользователя на вакансии
type ApplicationService interface {
	Add(ctx context.Context, app *models.JobApplication) (*models.JobApplication, error)
	Update(ctx context.Context, app *models.JobApplication) (*models.JobApplication, error)
	SetStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.JobApplication, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.JobApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.JobApplication, error)
	FollowUpsDue(ctx context.Context) ([]*models.JobApplication, error)
}

// ApplicationFilter условия выборки откликов
type ApplicationFilter struct {
	CompanyID string
	Status    models.ApplicationStatus
	OpenOnly  bool // OpenOnly только отклики в незавершенном статусе
}

func (f ApplicationFilter) match(a *models.JobApplication) bool {
	if f.CompanyID != "" && a.CompanyID != f.CompanyID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.OpenOnly && a.Status.IsClosed() {
		return false
	}
	return true
}

type applicationService struct {
	repo   Repository[*models.JobApplication]
	logger *slog.Logger
	now    func() time.Time
	userID string
}

// NewApplicationService creates an application service for userID
func NewApplicationService(repo Repository[*models.JobApplication], userID string, logger *slog.Logger, opts ...Option) ApplicationService {
	o := buildOptions(opts)
	return &applicationService{
		repo:   repo,
		logger: logger,
		now:    o.now,
		userID: userID,
	}
}

func (s *applicationService) Add(ctx context.Context, app *models.JobApplication) (*models.JobApplication, error) {
	if app.UserID == "" {
		app.UserID = s.userID
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusSaved
	}
	if app.Priority == 0 {
		app.Priority = models.DefaultPriority
	}
	s.stampApplied(app)

	return s.repo.Create(ctx, app)
}

func (s *applicationService) Update(ctx context.Context, app *models.JobApplication) (*models.JobApplication, error) {
	current, err := s.own(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	app.UserID = current.UserID
	if app.CreatedAt.IsZero() {
		app.CreatedAt = current.CreatedAt
	}
	if app.AppliedDate == nil {
		app.AppliedDate = current.AppliedDate
	}
	s.stampApplied(app)

	return s.repo.Update(ctx, app)
}

// SetStatus moves the application to status. Moving to applied stamps
// applied_date unless it is already set.
func (s *applicationService) SetStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.JobApplication, error) {
	if err := validation.First(
		validation.Required("status", string(status)),
		validation.OneOf("status", status, models.ApplicationStatuses()...),
	); err != nil {
		return nil, err
	}

	app, err := s.own(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}

	s.logger.DebugContext(ctx, "Application status changed",
		slog.String("id", id),
		slog.String("from", string(app.Status)),
		slog.String("to", string(status)),
	)

	app.Status = status
	s.stampApplied(app)

	return s.repo.Update(ctx, app)
}

func (s *applicationService) stampApplied(app *models.JobApplication) {
	if app.Status == models.ApplicationStatusApplied && app.AppliedDate == nil {
		now := s.now().UTC()
		app.AppliedDate = &now
	}
}

func (s *applicationService) Delete(ctx context.Context, id string) error {
	if _, err := s.own(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *applicationService) Get(ctx context.Context, id string) (*models.JobApplication, error) {
	return s.own(ctx, id)
}

// List returns the user's applications, most recently updated first
func (s *applicationService) List(ctx context.Context, filter ApplicationFilter) ([]*models.JobApplication, error) {
	apps, err := s.repo.List(ctx, func(a *models.JobApplication) bool {
		return a.UserID == s.userID && filter.match(a)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].UpdatedAt.After(apps[j].UpdatedAt)
	})
	return apps, nil
}

// FollowUpsDue returns open applications whose follow-up date has passed,
// oldest first
func (s *applicationService) FollowUpsDue(ctx context.Context) ([]*models.JobApplication, error) {
	now := s.now()
	apps, err := s.repo.List(ctx, func(a *models.JobApplication) bool {
		return a.UserID == s.userID && !a.Status.IsClosed() &&
			a.FollowUpDate != nil && !a.FollowUpDate.After(now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].FollowUpDate.Before(*apps[j].FollowUpDate)
	})
	return apps, nil
}

// own возвращает отклик, только если он принадлежит пользователю
func (s *applicationService) own(ctx context.Context, id string) (*models.JobApplication, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != s.userID {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return app, nil
}
