package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/catalog"
)

// CreatePackageRequest holds data to create a venue package.
type CreatePackageRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	MaxGuests   int     `json:"max_guests" binding:"required,min=1"`
}

// CreateExtraRequest holds data to create a bookable extra.
type CreateExtraRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
}

// PackageDTO is the API representation of a venue package.
type PackageDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"max_guests"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExtraDTO is the API representation of a bookable extra.
type ExtraDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CatalogService handles package and extra use cases.
type CatalogService struct {
	repo   catalog.CatalogRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo catalog.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListPackages returns all active packages.
func (s *CatalogService) ListPackages(ctx context.Context) ([]*PackageDTO, error) {
	packages, err := s.repo.FindActivePackages(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PackageDTO, len(packages))
	for i, p := range packages {
		dtos[i] = toPackageDTO(p)
	}
	return dtos, nil
}

// ListExtras returns all active extras.
func (s *CatalogService) ListExtras(ctx context.Context) ([]*ExtraDTO, error) {
	extras, err := s.repo.FindActiveExtras(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*ExtraDTO, len(extras))
	for i, e := range extras {
		dtos[i] = toExtraDTO(e)
	}
	return dtos, nil
}

// CreatePackage adds a package to the catalog (admin only).
func (s *CatalogService) CreatePackage(ctx context.Context, req CreatePackageRequest) (*PackageDTO, error) {
	pkg, err := catalog.NewPackage(req.Name, req.Description, req.Price, req.MaxGuests)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if err := s.repo.SavePackage(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.Info("package created", zap.String("name", pkg.Name))
	return toPackageDTO(pkg), nil
}

// DeactivatePackage removes a package from sale (admin only).
func (s *CatalogService) DeactivatePackage(ctx context.Context, id uuid.UUID) (*PackageDTO, error) {
	pkg, err := s.repo.FindPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg.IsActive = false
	pkg.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdatePackage(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.Info("package deactivated", zap.String("name", pkg.Name))
	return toPackageDTO(pkg), nil
}

// CreateExtra adds an extra to the catalog (admin only).
func (s *CatalogService) CreateExtra(ctx context.Context, req CreateExtraRequest) (*ExtraDTO, error) {
	extra, err := catalog.NewExtra(req.Name, req.Description, req.Price)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if err := s.repo.SaveExtra(ctx, extra); err != nil {
		return nil, err
	}

	s.logger.Info("extra created", zap.String("name", extra.Name))
	return toExtraDTO(extra), nil
}

func toPackageDTO(p *catalog.Package) *PackageDTO {
	return &PackageDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		MaxGuests:   p.MaxGuests,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func toExtraDTO(e *catalog.Extra) *ExtraDTO {
	return &ExtraDTO{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       e.Price,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
	}
}
