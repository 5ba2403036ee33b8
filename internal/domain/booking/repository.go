package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for Booking
// aggregates. Save must fail with a conflict error when the booking
// reference already exists; the caller re-mints and retries.
type BookingRepository interface {
	Save(ctx context.Context, b *Booking) error

	// Update persists changes with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByReference(ctx context.Context, reference string) (*Booking, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountActiveOnDate counts non-cancelled bookings for an event date.
	CountActiveOnDate(ctx context.Context, date time.Time) (int64, error)

	// GetBookingStats returns revenue from completed bookings and counts
	// by status (admin).
	GetBookingStats(ctx context.Context) (totalRevenue float64, countByStatus map[string]int64, err error)
}
