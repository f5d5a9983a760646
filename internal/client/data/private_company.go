package data

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/iudanet/jobtrail/internal/client/geocode"
	"github.com/iudanet/jobtrail/internal/models"
)

// PrivateCompanyService управляет компаниями, видимыми только владельцу
type PrivateCompanyService interface {
	Add(ctx context.Context, company *models.PrivateCompany) (*models.PrivateCompany, []string, error)
	Update(ctx context.Context, company *models.PrivateCompany) (*models.PrivateCompany, []string, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.PrivateCompany, error)
	List(ctx context.Context) ([]*models.PrivateCompany, error)
}

type privateCompanyService struct {
	repo     Repository[*models.PrivateCompany]
	geocoder geocode.Geocoder
	logger   *slog.Logger
	userID   string
}

// NewPrivateCompanyService creates a service scoped to userID
func NewPrivateCompanyService(repo Repository[*models.PrivateCompany], geocoder geocode.Geocoder, userID string, logger *slog.Logger) PrivateCompanyService {
	return &privateCompanyService{
		repo:     repo,
		geocoder: geocoder,
		logger:   logger,
		userID:   userID,
	}
}

func (s *privateCompanyService) Add(ctx context.Context, company *models.PrivateCompany) (*models.PrivateCompany, []string, error) {
	company.UserID = s.userID
	if company.Status == "" {
		company.Status = models.CompanyStatusNotContacted
	}
	if company.Priority == 0 {
		company.Priority = models.DefaultPriority
	}
	if err := company.Validate(); err != nil {
		return nil, nil, err
	}

	warnings := s.locate(ctx, company)
	created, err := s.repo.Create(ctx, company)
	if err != nil {
		return nil, nil, err
	}
	return created, warnings, nil
}

func (s *privateCompanyService) Update(ctx context.Context, company *models.PrivateCompany) (*models.PrivateCompany, []string, error) {
	current, err := s.own(ctx, company.ID)
	if err != nil {
		return nil, nil, err
	}

	company.UserID = current.UserID
	if company.CreatedAt.IsZero() {
		company.CreatedAt = current.CreatedAt
	}
	if company.FullAddress() != current.FullAddress() &&
		company.Latitude == current.Latitude && company.Longitude == current.Longitude {
		company.Latitude, company.Longitude = 0, 0
	}
	if err := company.Validate(); err != nil {
		return nil, nil, err
	}

	warnings := s.locate(ctx, company)
	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return nil, nil, err
	}
	return updated, warnings, nil
}

func (s *privateCompanyService) locate(ctx context.Context, company *models.PrivateCompany) []string {
	var warnings []string
	if !company.HasCoordinates() && s.geocoder != nil {
		res := s.geocoder.Geocode(ctx, company.FullAddress())
		if !res.OK() {
			s.logger.WarnContext(ctx, "Geocoding failed", slog.String("status", string(res.Status)))
			return append(warnings, fmt.Sprintf("could not geocode address (%s): %s", res.Status, res.Message))
		}
		company.Latitude, company.Longitude = res.Latitude, res.Longitude
	}

	if company.HasCoordinates() && company.MetroArea != "" {
		point := geocode.Point{Latitude: company.Latitude, Longitude: company.Longitude}
		if w := geocode.CheckMetroCenter(point, company.MetroArea, geocode.DefaultMetroThreshold).Warning(); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func (s *privateCompanyService) Delete(ctx context.Context, id string) error {
	if _, err := s.own(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *privateCompanyService) Get(ctx context.Context, id string) (*models.PrivateCompany, error) {
	return s.own(ctx, id)
}

// List returns the user's private companies sorted by name
func (s *privateCompanyService) List(ctx context.Context) ([]*models.PrivateCompany, error) {
	companies, err := s.repo.List(ctx, func(c *models.PrivateCompany) bool { return c.UserID == s.userID })
	if err != nil {
		return nil, fmt.Errorf("failed to list private companies: %w", err)
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return strings.ToLower(companies[i].Name) < strings.ToLower(companies[j].Name)
	})
	return companies, nil
}

func (s *privateCompanyService) own(ctx context.Context, id string) (*models.PrivateCompany, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.UserID != s.userID {
		return nil, fmt.Errorf("private company %s: %w", id, ErrNotFound)
	}
	return company, nil
}
