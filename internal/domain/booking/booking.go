package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Booking is the aggregate root for venue bookings. Monetary amounts are
// pounds; the promo engine guarantees discount never exceeds subtotal, so
// total is never negative.
type Booking struct {
	id              uuid.UUID
	reference       string
	customerID      uuid.UUID
	customerName    string
	customerEmail   string
	eventDate       time.Time
	packageID       uuid.UUID
	guestCount      int
	subtotal        float64
	extrasTotal     float64
	discount        float64
	total           float64
	promoCode       string
	paymentIntentID string
	status          Status
	cancelReason    string
	confirmedAt     *time.Time
	cancelledAt     *time.Time
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBooking creates a pending booking. The reference must already be
// minted by the reference generator; subtotal includes the extras total.
func NewBooking(
	reference string,
	customerID uuid.UUID,
	customerName, customerEmail string,
	eventDate time.Time,
	packageID uuid.UUID,
	guestCount int,
	subtotal, extrasTotal, discount float64,
	promoCode string,
) *Booking {
	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		reference:     reference,
		customerID:    customerID,
		customerName:  customerName,
		customerEmail: customerEmail,
		eventDate:     eventDate,
		packageID:     packageID,
		guestCount:    guestCount,
		subtotal:      subtotal,
		extrasTotal:   extrasTotal,
		discount:      discount,
		total:         subtotal - discount,
		promoCode:     promoCode,
		status:        StatusPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}
}

// --- Behavior / state transitions ---

// AttachPaymentIntent records the deposit hold on a pending booking.
func (b *Booking) AttachPaymentIntent(paymentIntentID string) error {
	if b.status != StatusPending {
		return apperror.NewInvalidStateError(string(b.status), string(StatusPending))
	}
	b.paymentIntentID = paymentIntentID
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm transitions from pending to confirmed once the deposit is captured.
func (b *Booking) Confirm(paymentIntentID string) error {
	if b.status != StatusPending {
		return apperror.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.paymentIntentID = paymentIntentID
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions a pending or confirmed booking to cancelled.
func (b *Booking) Cancel(reason string) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return apperror.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete marks a confirmed booking as completed after the event.
func (b *Booking) Complete() error {
	if b.status != StatusConfirmed {
		return apperror.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID           { return b.id }
func (b *Booking) Reference() string       { return b.reference }
func (b *Booking) CustomerID() uuid.UUID   { return b.customerID }
func (b *Booking) CustomerName() string    { return b.customerName }
func (b *Booking) CustomerEmail() string   { return b.customerEmail }
func (b *Booking) EventDate() time.Time    { return b.eventDate }
func (b *Booking) PackageID() uuid.UUID    { return b.packageID }
func (b *Booking) GuestCount() int         { return b.guestCount }
func (b *Booking) Subtotal() float64       { return b.subtotal }
func (b *Booking) ExtrasTotal() float64    { return b.extrasTotal }
func (b *Booking) Discount() float64       { return b.discount }
func (b *Booking) Total() float64          { return b.total }
func (b *Booking) PromoCode() string       { return b.promoCode }
func (b *Booking) PaymentIntentID() string { return b.paymentIntentID }
func (b *Booking) Status() Status          { return b.status }
func (b *Booking) CancelReason() string    { return b.cancelReason }
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }
func (b *Booking) Version() int64          { return b.version }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id uuid.UUID,
	reference string,
	customerID uuid.UUID,
	customerName, customerEmail string,
	eventDate time.Time,
	packageID uuid.UUID,
	guestCount int,
	subtotal, extrasTotal, discount, total float64,
	promoCode, paymentIntentID string,
	status Status,
	cancelReason string,
	confirmedAt, cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		reference:       reference,
		customerID:      customerID,
		customerName:    customerName,
		customerEmail:   customerEmail,
		eventDate:       eventDate,
		packageID:       packageID,
		guestCount:      guestCount,
		subtotal:        subtotal,
		extrasTotal:     extrasTotal,
		discount:        discount,
		total:           total,
		promoCode:       promoCode,
		paymentIntentID: paymentIntentID,
		status:          status,
		cancelReason:    cancelReason,
		confirmedAt:     confirmedAt,
		cancelledAt:     cancelledAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}
