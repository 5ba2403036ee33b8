package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	bookingDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference       string     `gorm:"type:varchar(21);uniqueIndex;not null"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerName    string     `gorm:"type:varchar(255);not null"`
	CustomerEmail   string     `gorm:"type:varchar(255);not null"`
	EventDate       time.Time  `gorm:"type:date;not null;index"`
	PackageID       uuid.UUID  `gorm:"type:uuid;not null"`
	GuestCount      int        `gorm:"not null"`
	Subtotal        float64    `gorm:"not null"`
	ExtrasTotal     float64    `gorm:"not null;default:0"`
	Discount        float64    `gorm:"not null;default:0"`
	Total           float64    `gorm:"not null"`
	PromoCode       string     `gorm:"type:varchar(50)"`
	PaymentIntentID string     `gorm:"type:varchar(255)"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"`
	CancelReason    string     `gorm:"type:text"`
	ConfirmedAt     *time.Time `gorm:"type:timestamptz"`
	CancelledAt     *time.Time `gorm:"type:timestamptz"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string { return "bookings" }

// BookingRepositoryImpl is the GORM-based implementation of BookingRepository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// Save persists a new booking. A duplicate reference surfaces as a
// conflict so the caller can mint a fresh reference and retry.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("booking reference already exists")
		}
		return err
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("booking", id.String())
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// FindByReference retrieves a booking by its reference string.
func (r *BookingRepositoryImpl) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("booking", reference)
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// FindByCustomer returns a customer's bookings, newest first.
func (r *BookingRepositoryImpl) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *BookingRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total)

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings, total, nil
}

// CountActiveOnDate counts non-cancelled bookings for an event date.
func (r *BookingRepositoryImpl) CountActiveOnDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("event_date = ? AND status <> ?", date.Format("2006-01-02"), string(bookingDomain.StatusCancelled)).
		Count(&count).Error
	return count, err
}

// GetBookingStats returns revenue from completed bookings and counts by
// status (admin).
func (r *BookingRepositoryImpl) GetBookingStats(ctx context.Context) (float64, map[string]int64, error) {
	var totalRevenue float64
	r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ?", string(bookingDomain.StatusCompleted)).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue)

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalRevenue, counts, nil
}

// toBookingDomain maps a BookingModel to the domain Booking aggregate.
func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID,
		m.Reference,
		m.CustomerID,
		m.CustomerName,
		m.CustomerEmail,
		m.EventDate,
		m.PackageID,
		m.GuestCount,
		m.Subtotal,
		m.ExtrasTotal,
		m.Discount,
		m.Total,
		m.PromoCode,
		m.PaymentIntentID,
		bookingDomain.Status(m.Status),
		m.CancelReason,
		m.ConfirmedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// toBookingModel maps a domain Booking aggregate to a BookingModel.
func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID(),
		Reference:       b.Reference(),
		CustomerID:      b.CustomerID(),
		CustomerName:    b.CustomerName(),
		CustomerEmail:   b.CustomerEmail(),
		EventDate:       b.EventDate(),
		PackageID:       b.PackageID(),
		GuestCount:      b.GuestCount(),
		Subtotal:        b.Subtotal(),
		ExtrasTotal:     b.ExtrasTotal(),
		Discount:        b.Discount(),
		Total:           b.Total(),
		PromoCode:       b.PromoCode(),
		PaymentIntentID: b.PaymentIntentID(),
		Status:          string(b.Status()),
		CancelReason:    b.CancelReason(),
		ConfirmedAt:     b.ConfirmedAt(),
		CancelledAt:     b.CancelledAt(),
		Version:         b.Version(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}
