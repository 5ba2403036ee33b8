package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/availability"
	bookingDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/booking"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/catalog"
	promoDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/promo"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/reference"
	"github.com/norfolk-coast-barns/service-booking/internal/events"
)

type bookingFixture struct {
	service      *BookingService
	bookings     *fakeBookingRepo
	promos       *fakePromoRepo
	catalog      *fakeCatalogRepo
	blackouts    *fakeBlackoutRepo
	orchestrator *fakeOrchestrator
	packageID    uuid.UUID
	extraID      uuid.UUID
}

func newBookingFixture(t *testing.T, promos ...*promoDomain.PromoCode) *bookingFixture {
	t.Helper()

	bookings := &fakeBookingRepo{}
	catalogRepo := newFakeCatalogRepo()
	blackouts := &fakeBlackoutRepo{}
	orchestrator := newFakeOrchestrator(bookings)
	promoRepo := newFakePromoRepo(promos...)

	pkg, err := catalog.NewPackage("Barn Hire", "Full venue hire", 1500, 120)
	require.NoError(t, err)
	require.NoError(t, catalogRepo.SavePackage(context.Background(), pkg))

	extra, err := catalog.NewExtra("Fire Pit", "Outdoor fire pit", 75)
	require.NoError(t, err)
	require.NoError(t, catalogRepo.SaveExtra(context.Background(), extra))

	service := NewBookingService(
		bookings, promoRepo, catalogRepo, blackouts,
		reference.NewGenerator(nil), orchestrator,
		"10:00", zap.NewNop(),
	)

	return &bookingFixture{
		service:      service,
		bookings:     bookings,
		promos:       promoRepo,
		catalog:      catalogRepo,
		blackouts:    blackouts,
		orchestrator: orchestrator,
		packageID:    pkg.ID,
		extraID:      extra.ID,
	}
}

// futureFriday returns a Friday at least two weeks out, so cutoff checks
// never interfere.
func futureFriday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 14)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func validCreateRequest(f *bookingFixture) CreateBookingRequest {
	return CreateBookingRequest{
		CustomerName:  "Alice Webb",
		CustomerEmail: "alice@example.com",
		EventDate:     futureFriday().Format("2006-01-02"),
		PackageID:     f.packageID.String(),
		ExtraIDs:      []string{f.extraID.String()},
		GuestCount:    80,
	}
}

func TestCreateBooking_PricesPackageAndExtras(t *testing.T) {
	f := newBookingFixture(t)

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, 1575.0, dto.Subtotal)
	assert.Equal(t, 75.0, dto.ExtrasTotal)
	assert.Equal(t, 0.0, dto.Discount)
	assert.Equal(t, 1575.0, dto.Total)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "pi_test_secret", dto.ClientSecret)
	assert.True(t, reference.Validate(dto.Reference))
}

func TestCreateBooking_AppliesPromoAndIncrementsUsage(t *testing.T) {
	promo, err := promoDomain.NewPromoCode("WINTER10", promoDomain.DiscountTypePercentage, 10, nil, nil, nil)
	require.NoError(t, err)
	f := newBookingFixture(t, promo)

	req := validCreateRequest(f)
	req.PromoCode = "winter10"

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, 157.5, dto.Discount)
	assert.Equal(t, 1417.5, dto.Total)
	assert.Equal(t, "WINTER10", dto.PromoCode)
	assert.Equal(t, 1, promo.UsageCount())
}

func TestCreateBooking_RejectsIneligiblePromoWithReason(t *testing.T) {
	promo, err := promoDomain.NewPromoCode("OLD5", promoDomain.DiscountTypeFixedAmount, 5, nil, nil, nil)
	require.NoError(t, err)
	promo.Deactivate()
	f := newBookingFixture(t, promo)

	req := validCreateRequest(f)
	req.PromoCode = "OLD5"

	_, err = f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), promoDomain.ReasonNotActive)
}

func TestCreateBooking_RejectsUnknownPromo(t *testing.T) {
	f := newBookingFixture(t)

	req := validCreateRequest(f)
	req.PromoCode = "NOPE"

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), promoDomain.ReasonInvalidCode)
}

func TestCreateBooking_RejectsMidweekDate(t *testing.T) {
	f := newBookingFixture(t)

	wednesday := futureFriday().AddDate(0, 0, 5)
	req := validCreateRequest(f)
	req.EventDate = wednesday.Format("2006-01-02")

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateBooking_RejectsBlackedOutDate(t *testing.T) {
	f := newBookingFixture(t)
	date := futureFriday()
	f.blackouts.blackouts = append(f.blackouts.blackouts, availability.BlackoutDate{
		ID: uuid.New(), Date: date, Reason: "private event",
	})

	req := validCreateRequest(f)
	req.EventDate = date.Format("2006-01-02")

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateBooking_RejectsGuestCountOverCapacity(t *testing.T) {
	f := newBookingFixture(t)

	req := validCreateRequest(f)
	req.GuestCount = 500

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateBooking_RetriesOnReferenceConflict(t *testing.T) {
	f := newBookingFixture(t)
	f.orchestrator.conflictsLeft = 2

	dto, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	assert.Equal(t, 3, f.orchestrator.createCalls)
	assert.True(t, reference.Validate(dto.Reference))
}

func TestCreateBooking_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newBookingFixture(t)
	f.orchestrator.conflictsLeft = maxReferenceAttempts

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestGetBookingByReference_ValidatesFormatBeforeLookup(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.GetBookingByReference(context.Background(), "not-a-reference")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.service.GetBookingByReference(context.Background(), "NCB-20260321-ZZZZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetBookingByReference_ReturnsBooking(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	found, err := f.service.GetBookingByReference(context.Background(), created.Reference)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Empty(t, found.ClientSecret)
}

func TestCancelBooking_OwnerOnly(t *testing.T) {
	f := newBookingFixture(t)
	owner := uuid.New()

	created, err := f.service.CreateBooking(context.Background(), owner, validCreateRequest(f))
	require.NoError(t, err)

	err = f.service.CancelBooking(context.Background(), uuid.New(), false, created.ID, CancelBookingRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.service.CancelBooking(context.Background(), owner, false, created.ID, CancelBookingRequest{Reason: "change of plans"})
	require.NoError(t, err)
	assert.Equal(t, "change of plans", f.orchestrator.cancelled[created.ID])
}

func TestCancelBooking_AdminCanCancelAnyBooking(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	err = f.service.CancelBooking(context.Background(), uuid.New(), true, created.ID, CancelBookingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cancelled by customer", f.orchestrator.cancelled[created.ID])
}

func TestHandlePaymentSucceeded_ConfirmsPendingBooking(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	err = f.service.HandlePaymentSucceeded(context.Background(), events.PaymentSucceededEvent{
		PaymentIntentID:  "pi_123",
		BookingReference: created.Reference,
	})
	require.NoError(t, err)

	b, err := f.bookings.FindByReference(context.Background(), created.Reference)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, b.Status())
}

func TestHandlePaymentSucceeded_IgnoresNonPendingBooking(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	event := events.PaymentSucceededEvent{PaymentIntentID: "pi_123", BookingReference: created.Reference}
	require.NoError(t, f.service.HandlePaymentSucceeded(context.Background(), event))
	require.NoError(t, f.service.HandlePaymentSucceeded(context.Background(), event))

	assert.Len(t, f.orchestrator.confirmed, 1)
}

func TestCreateBooking_RejectsAlreadyBookedDate(t *testing.T) {
	f := newBookingFixture(t)
	owner := uuid.New()

	created, err := f.service.CreateBooking(context.Background(), owner, validCreateRequest(f))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 1, f.orchestrator.createCalls)

	// Cancelling frees the date again.
	require.NoError(t, f.service.CancelBooking(context.Background(), owner, false, created.ID, CancelBookingRequest{}))
	_, err = f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)
}

// seedPastBooking stores a booking whose event date has already passed,
// bypassing the create flow's date checks.
func seedPastBooking(t *testing.T, f *bookingFixture, confirmed bool) *bookingDomain.Booking {
	t.Helper()

	eventDate := time.Now().UTC().AddDate(0, 0, -7)
	for eventDate.Weekday() != time.Friday {
		eventDate = eventDate.AddDate(0, 0, -1)
	}
	eventDate = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)

	b := bookingDomain.NewBooking(
		"NCB-"+eventDate.Format("20060102")+"-AAAAAA",
		uuid.New(), "Alice Webb", "alice@example.com",
		eventDate, f.packageID, 80, 1575, 75, 0, "",
	)
	if confirmed {
		require.NoError(t, b.Confirm("pi_123"))
	}
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func TestCompleteBooking_CountsTowardRevenue(t *testing.T) {
	f := newBookingFixture(t)
	b := seedPastBooking(t, f, true)

	dto, err := f.service.CompleteBooking(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, "completed", dto.Status)
	assert.Equal(t, []uuid.UUID{b.ID()}, f.orchestrator.completed)

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1575.0, stats.TotalRevenue)
	assert.Equal(t, int64(1), stats.CountByStatus["completed"])
}

func TestCompleteBooking_RejectsFutureEventDate(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)
	require.NoError(t, f.orchestrator.ConfirmBookingSaga(context.Background(), created.ID, "pi_123"))

	_, err = f.service.CompleteBooking(context.Background(), created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCompleteBooking_RequiresConfirmedBooking(t *testing.T) {
	f := newBookingFixture(t)
	b := seedPastBooking(t, f, false)

	_, err := f.service.CompleteBooking(context.Background(), b.ID())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestHandlePaymentFailed_CancelsPendingBooking(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), uuid.New(), validCreateRequest(f))
	require.NoError(t, err)

	err = f.service.HandlePaymentFailed(context.Background(), events.PaymentFailedEvent{
		BookingReference: created.Reference,
		Reason:           "card declined",
	})
	require.NoError(t, err)

	assert.Equal(t, "deposit payment failed: card declined", f.orchestrator.cancelled[created.ID])
}
