package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/catalog"
)

// PackageModel is the GORM model for the packages table.
type PackageModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"not null"`
	MaxGuests   int       `gorm:"not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (PackageModel) TableName() string { return "packages" }

// ExtraModel is the GORM model for the extras table.
type ExtraModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ExtraModel) TableName() string { return "extras" }

// GormCatalogRepository implements CatalogRepository using GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// SavePackage persists a new package.
func (r *GormCatalogRepository) SavePackage(ctx context.Context, p *catalog.Package) error {
	model := toPackageModel(p)
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdatePackage updates a package.
func (r *GormCatalogRepository) UpdatePackage(ctx context.Context, p *catalog.Package) error {
	model := toPackageModel(p)
	return r.db.WithContext(ctx).Select("*").Save(&model).Error
}

// FindPackageByID returns a package by ID.
func (r *GormCatalogRepository) FindPackageByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	var model PackageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("package", id.String())
		}
		return nil, err
	}
	return toPackageDomain(&model), nil
}

// FindActivePackages returns all active packages ordered by price.
func (r *GormCatalogRepository) FindActivePackages(ctx context.Context) ([]*catalog.Package, error) {
	var models []PackageModel
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	packages := make([]*catalog.Package, len(models))
	for i := range models {
		packages[i] = toPackageDomain(&models[i])
	}
	return packages, nil
}

// SaveExtra persists a new extra.
func (r *GormCatalogRepository) SaveExtra(ctx context.Context, e *catalog.Extra) error {
	model := toExtraModel(e)
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdateExtra updates an extra.
func (r *GormCatalogRepository) UpdateExtra(ctx context.Context, e *catalog.Extra) error {
	model := toExtraModel(e)
	return r.db.WithContext(ctx).Select("*").Save(&model).Error
}

// FindExtrasByIDs returns the extras matching the given IDs. Missing IDs are
// reported as a not found error so pricing never silently drops a line item.
func (r *GormCatalogRepository) FindExtrasByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []ExtraModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) != len(ids) {
		found := make(map[uuid.UUID]bool, len(models))
		for _, m := range models {
			found[m.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, apperror.NewNotFoundError("extra", id.String())
			}
		}
	}

	extras := make([]*catalog.Extra, len(models))
	for i := range models {
		extras[i] = toExtraDomain(&models[i])
	}
	return extras, nil
}

// FindActiveExtras returns all active extras ordered by name.
func (r *GormCatalogRepository) FindActiveExtras(ctx context.Context) ([]*catalog.Extra, error) {
	var models []ExtraModel
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	extras := make([]*catalog.Extra, len(models))
	for i := range models {
		extras[i] = toExtraDomain(&models[i])
	}
	return extras, nil
}

func toPackageModel(p *catalog.Package) PackageModel {
	return PackageModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		MaxGuests:   p.MaxGuests,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPackageDomain(m *PackageModel) *catalog.Package {
	return &catalog.Package{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		MaxGuests:   m.MaxGuests,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toExtraModel(e *catalog.Extra) ExtraModel {
	return ExtraModel{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       e.Price,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExtraDomain(m *ExtraModel) *catalog.Extra {
	return &catalog.Extra{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
