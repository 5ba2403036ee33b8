package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	promoDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/promo"
)

// PromoModel is the GORM model for the promo_codes table.
type PromoModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code          string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountType  string     `gorm:"type:varchar(20);not null"`
	DiscountValue float64    `gorm:"not null"`
	IsActive      bool       `gorm:"not null;default:true"`
	ValidFrom     *time.Time `gorm:"type:timestamptz"`
	ValidUntil    *time.Time `gorm:"type:timestamptz"`
	UsageLimit    *int
	UsageCount    int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (PromoModel) TableName() string { return "promo_codes" }

// GormPromoRepository implements PromoRepository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GormPromoRepository.
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// Save persists a new promo code.
func (r *GormPromoRepository) Save(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("promo code already exists")
		}
		return err
	}
	return nil
}

// Update updates a promo code.
func (r *GormPromoRepository) Update(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	return r.db.WithContext(ctx).Select("*").Save(&model).Error
}

// FindByCode returns a promo code by its normalized code string.
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	var model PromoModel
	if err := r.db.WithContext(ctx).Where("code = ?", promoDomain.FormatCode(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("promo code", code)
		}
		return nil, err
	}
	return toPromoDomain(&model), nil
}

// FindByID returns a promo code by ID.
func (r *GormPromoRepository) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	var model PromoModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("promo code", id.String())
		}
		return nil, err
	}
	return toPromoDomain(&model), nil
}

// FindAll returns every promo code, newest first (admin).
func (r *GormPromoRepository) FindAll(ctx context.Context) ([]*promoDomain.PromoCode, error) {
	var models []PromoModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	promos := make([]*promoDomain.PromoCode, len(models))
	for i := range models {
		promos[i] = toPromoDomain(&models[i])
	}
	return promos, nil
}

func toPromoModel(p *promoDomain.PromoCode) PromoModel {
	return PromoModel{
		ID:            p.ID(),
		Code:          p.Code(),
		DiscountType:  string(p.DiscountType()),
		DiscountValue: p.DiscountValue(),
		IsActive:      p.IsActive(),
		ValidFrom:     p.ValidFrom(),
		ValidUntil:    p.ValidUntil(),
		UsageLimit:    p.UsageLimit(),
		UsageCount:    p.UsageCount(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toPromoDomain(m *PromoModel) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		m.ID, m.Code, promoDomain.DiscountType(m.DiscountType),
		m.DiscountValue, m.IsActive,
		m.ValidFrom, m.ValidUntil,
		m.UsageLimit, m.UsageCount,
		m.CreatedAt, m.UpdatedAt,
	)
}
