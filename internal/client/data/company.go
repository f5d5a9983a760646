package data

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/iudanet/jobtrail/internal/client/geocode"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// CompanyService управляет общими (community) компаниями
type CompanyService interface {
	Add(ctx context.Context, company *models.Company) (*CompanyResult, error)
	Update(ctx context.Context, company *models.Company) (*CompanyResult, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]*models.Company, error)
	Nearby(ctx context.Context, home geocode.Point, radius float64) ([]NearbyCompany, error)
}

// CompanyResult сохраненная компания и предупреждения, не мешающие сохранению
type CompanyResult struct {
	Company  *models.Company `json:"company"`
	Warnings []string        `json:"warnings,omitempty"`
}

// CompanyFilter условия выборки, пустые поля не фильтруют
type CompanyFilter struct {
	Status       models.CompanyStatus
	MetroArea    string
	Search       string // Search подстрока в названии без учета регистра
	MinPriority  int
	ApprovedOnly bool
}

func (f CompanyFilter) match(c *models.Company) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.MetroArea != "" && !strings.EqualFold(c.MetroArea, f.MetroArea) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.MinPriority > 0 && c.Priority < f.MinPriority {
		return false
	}
	if f.ApprovedOnly && !c.IsApproved {
		return false
	}
	return true
}

// NearbyCompany компания и расстояние до нее в милях
type NearbyCompany struct {
	Company  *models.Company `json:"company"`
	Distance float64         `json:"distance_miles"`
}

// HomeArea домашняя точка пользователя и радиус поиска
type HomeArea struct {
	Center geocode.Point
	Radius float64
}

type companyService struct {
	repo     Repository[*models.Company]
	geocoder geocode.Geocoder
	home     *HomeArea
	logger   *slog.Logger
	userID   string
}

// NewCompanyService creates a company service. home may be nil.
func NewCompanyService(repo Repository[*models.Company], geocoder geocode.Geocoder, home *HomeArea, userID string, logger *slog.Logger) CompanyService {
	return &companyService{
		repo:     repo,
		geocoder: geocoder,
		home:     home,
		logger:   logger,
		userID:   userID,
	}
}

// Add creates a company. Missing coordinates are resolved from the address;
// a failed lookup is reported as a warning and the company is stored
// without coordinates.
func (s *companyService) Add(ctx context.Context, company *models.Company) (*CompanyResult, error) {
	if company.Status == "" {
		company.Status = models.CompanyStatusNotContacted
	}
	if company.Priority == 0 {
		company.Priority = models.DefaultPriority
	}
	if company.CreatedBy == "" {
		company.CreatedBy = s.userID
	}

	// Проверяем до геокодирования, чтобы не тратить запрос на невалидные данные
	if err := company.Validate(); err != nil {
		return nil, err
	}

	warnings := s.locate(ctx, company)

	created, err := s.repo.Create(ctx, company)
	if err != nil {
		return nil, err
	}
	return &CompanyResult{Company: created, Warnings: warnings}, nil
}

// Update replaces a company, re-geocoding when the address changed and no
// new coordinates were given
func (s *companyService) Update(ctx context.Context, company *models.Company) (*CompanyResult, error) {
	current, err := s.repo.Get(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	if company.CreatedAt.IsZero() {
		company.CreatedAt = current.CreatedAt
	}
	if company.FullAddress() != current.FullAddress() &&
		company.Latitude == current.Latitude && company.Longitude == current.Longitude {
		company.Latitude, company.Longitude = 0, 0
	}

	if err := company.Validate(); err != nil {
		return nil, err
	}

	warnings := s.locate(ctx, company)

	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return nil, err
	}
	return &CompanyResult{Company: updated, Warnings: warnings}, nil
}

// locate геокодирует адрес при отсутствии координат и проверяет расстояния
func (s *companyService) locate(ctx context.Context, company *models.Company) []string {
	var warnings []string

	if !company.HasCoordinates() && s.geocoder != nil {
		res := s.geocoder.Geocode(ctx, company.FullAddress())
		if res.OK() {
			company.Latitude = res.Latitude
			company.Longitude = res.Longitude
		} else {
			s.logger.WarnContext(ctx, "Geocoding failed",
				slog.String("address", company.FullAddress()),
				slog.String("status", string(res.Status)),
			)
			warnings = append(warnings, fmt.Sprintf("could not geocode address (%s): %s", res.Status, res.Message))
		}
	}

	if !company.HasCoordinates() {
		return warnings
	}
	point := geocode.Point{Latitude: company.Latitude, Longitude: company.Longitude}

	if company.MetroArea != "" {
		if w := geocode.CheckMetroCenter(point, company.MetroArea, geocode.DefaultMetroThreshold).Warning(); w != "" {
			s.logger.WarnContext(ctx, "Company far from metro center", slog.String("company", company.Name), slog.String("metro_area", company.MetroArea))
			warnings = append(warnings, w)
		}
	}

	if s.home != nil && s.home.Radius > 0 && !geocode.WithinRadius(s.home.Center, point, s.home.Radius) {
		warnings = append(warnings, fmt.Sprintf("location is %.1f miles from home, outside the %.0f mile radius",
			s.home.Center.DistanceTo(point), s.home.Radius))
	}

	return warnings
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *companyService) Get(ctx context.Context, id string) (*models.Company, error) {
	return s.repo.Get(ctx, id)
}

// List returns companies sorted by priority (highest first), then name
func (s *companyService) List(ctx context.Context, filter CompanyFilter) ([]*models.Company, error) {
	companies, err := s.repo.List(ctx, filter.match)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	sort.SliceStable(companies, func(i, j int) bool {
		if companies[i].Priority != companies[j].Priority {
			return companies[i].Priority > companies[j].Priority
		}
		return strings.ToLower(companies[i].Name) < strings.ToLower(companies[j].Name)
	})
	return companies, nil
}

// Nearby returns geocoded companies within radius miles of home, closest first
func (s *companyService) Nearby(ctx context.Context, home geocode.Point, radius float64) ([]NearbyCompany, error) {
	if radius <= 0 {
		return nil, validation.Errorf("radius", "must be positive")
	}
	if err := validation.Coordinates(home.Latitude, home.Longitude); err != nil {
		return nil, err
	}

	companies, err := s.repo.List(ctx, func(c *models.Company) bool { return c.HasCoordinates() })
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	var result []NearbyCompany
	for _, c := range companies {
		d := home.DistanceTo(geocode.Point{Latitude: c.Latitude, Longitude: c.Longitude})
		if d <= radius {
			result = append(result, NearbyCompany{Company: c, Distance: d})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Distance < result[j].Distance })
	return result, nil
}
