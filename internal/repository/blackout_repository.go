package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/availability"
)

// BlackoutModel is the GORM model for the blackout_dates table.
type BlackoutModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null"`
	Reason    string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (BlackoutModel) TableName() string { return "blackout_dates" }

// GormBlackoutRepository implements BlackoutRepository using GORM.
type GormBlackoutRepository struct {
	db *gorm.DB
}

// NewGormBlackoutRepository creates a new GormBlackoutRepository.
func NewGormBlackoutRepository(db *gorm.DB) *GormBlackoutRepository {
	return &GormBlackoutRepository{db: db}
}

// Save persists a new blackout date.
func (r *GormBlackoutRepository) Save(ctx context.Context, b *availability.BlackoutDate) error {
	model := BlackoutModel{
		ID:        b.ID,
		Date:      b.Date,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("blackout date already exists")
		}
		return err
	}
	return nil
}

// Delete removes a blackout date by ID.
func (r *GormBlackoutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BlackoutModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("blackout date", id.String())
	}
	return nil
}

// FindAll returns every blackout date in ascending date order.
func (r *GormBlackoutRepository) FindAll(ctx context.Context) ([]availability.BlackoutDate, error) {
	var models []BlackoutModel
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toBlackoutDomain(models), nil
}

// FindBetween returns blackout dates within [start, end], inclusive.
func (r *GormBlackoutRepository) FindBetween(ctx context.Context, start, end time.Time) ([]availability.BlackoutDate, error) {
	var models []BlackoutModel
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toBlackoutDomain(models), nil
}

func toBlackoutDomain(models []BlackoutModel) []availability.BlackoutDate {
	dates := make([]availability.BlackoutDate, len(models))
	for i, m := range models {
		dates[i] = availability.BlackoutDate{
			ID:        m.ID,
			Date:      m.Date,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		}
	}
	return dates
}
