package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/availability"
	bookingDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/booking"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/catalog"
	promoDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/promo"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/reference"
	"github.com/norfolk-coast-barns/service-booking/internal/events"
)

// maxReferenceAttempts bounds the mint-and-retry loop on reference
// collisions. The suffix space makes even one collision rare.
const maxReferenceAttempts = 5

// BookingOrchestrator runs the multi-system booking workflows. Implemented
// by saga.BookingSagaService.
type BookingOrchestrator interface {
	CreateBookingSaga(ctx context.Context, b *bookingDomain.Booking) (clientSecret string, err error)
	ConfirmBookingSaga(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error
	CancelBookingSaga(ctx context.Context, bookingID uuid.UUID, reason string) error
	CompleteBookingSaga(ctx context.Context, bookingID uuid.UUID) error
}

// CreateBookingRequest holds data to create a booking.
type CreateBookingRequest struct {
	CustomerName  string   `json:"customer_name" binding:"required"`
	CustomerEmail string   `json:"customer_email" binding:"required,email"`
	EventDate     string   `json:"event_date" binding:"required"`
	PackageID     string   `json:"package_id" binding:"required"`
	ExtraIDs      []string `json:"extra_ids"`
	GuestCount    int      `json:"guest_count" binding:"required,min=1"`
	PromoCode     string   `json:"promo_code"`
}

// CancelBookingRequest holds data to cancel a booking.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// BookingDTO is the API response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID  `json:"id"`
	Reference        string     `json:"reference"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email"`
	EventDate        string     `json:"event_date"`
	EventDateDisplay string     `json:"event_date_display"`
	PackageID        uuid.UUID  `json:"package_id"`
	GuestCount       int        `json:"guest_count"`
	Subtotal         float64    `json:"subtotal"`
	ExtrasTotal      float64    `json:"extras_total"`
	Discount         float64    `json:"discount"`
	Total            float64    `json:"total"`
	PromoCode        string     `json:"promo_code,omitempty"`
	Status           string     `json:"status"`
	CancelReason     string     `json:"cancel_reason,omitempty"`
	ClientSecret     string     `json:"client_secret,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// BookingStatsDTO summarizes bookings for the admin dashboard.
type BookingStatsDTO struct {
	TotalRevenue  float64          `json:"total_revenue"`
	CountByStatus map[string]int64 `json:"count_by_status"`
}

// BookingService handles booking use cases.
type BookingService struct {
	bookings     bookingDomain.BookingRepository
	promos       promoDomain.PromoRepository
	catalog      catalog.CatalogRepository
	blackouts    availability.BlackoutRepository
	refGenerator *reference.Generator
	orchestrator BookingOrchestrator
	cutoffTime   string
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	promos promoDomain.PromoRepository,
	catalogRepo catalog.CatalogRepository,
	blackouts availability.BlackoutRepository,
	refGenerator *reference.Generator,
	orchestrator BookingOrchestrator,
	cutoffTime string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		promos:       promos,
		catalog:      catalogRepo,
		blackouts:    blackouts,
		refGenerator: refGenerator,
		orchestrator: orchestrator,
		cutoffTime:   cutoffTime,
		logger:       logger,
	}
}

// CreateBooking prices and persists a booking, authorizes the deposit, and
// returns the DTO with the Stripe client secret.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	eventDate, err := parseDay(req.EventDate)
	if err != nil {
		return nil, apperror.NewValidationError("invalid event_date format (use YYYY-MM-DD)")
	}

	if wd := eventDate.Weekday(); wd != time.Friday && wd != time.Saturday {
		return nil, apperror.NewValidationError("events run on Fridays and Saturdays only")
	}

	blackouts, err := s.blackouts.FindBetween(ctx, eventDate, eventDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load blackout dates: %w", err)
	}
	if !availability.IsDateAvailable(eventDate, blackouts, s.cutoffTime, time.Now().UTC()) {
		return nil, apperror.NewValidationError("the requested date is not available")
	}

	// The venue hosts a single event per date.
	active, err := s.bookings.CountActiveOnDate(ctx, eventDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings on date: %w", err)
	}
	if active > 0 {
		return nil, apperror.NewConflictError("the requested date is already booked")
	}

	pkg, extras, err := s.loadCatalogItems(ctx, req)
	if err != nil {
		return nil, err
	}

	extrasTotal := 0.0
	for _, e := range extras {
		extrasTotal += e.Price
	}
	subtotal := pkg.Price + extrasTotal

	discount := 0.0
	var appliedPromo *promoDomain.PromoCode
	if req.PromoCode != "" {
		promo, err := s.promos.FindByCode(ctx, req.PromoCode)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		result := promoDomain.Validate(promo, subtotal, time.Now().UTC())
		if !result.Valid {
			return nil, apperror.NewValidationError(result.Reason)
		}
		discount = result.DiscountAmount
		appliedPromo = result.Promo
	}

	b, clientSecret, err := s.createWithFreshReference(ctx, customerID, req, eventDate, subtotal, extrasTotal, discount)
	if err != nil {
		return nil, err
	}

	if appliedPromo != nil {
		appliedPromo.IncrementUsage()
		if err := s.promos.Update(ctx, appliedPromo); err != nil {
			// The booking already exists; a lost increment is recoverable.
			s.logger.Error("failed to record promo redemption",
				zap.String("code", appliedPromo.Code()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("booking created",
		zap.String("reference", b.Reference()),
		zap.String("event_date", req.EventDate),
		zap.Float64("total", b.Total()),
	)

	dto := toBookingDTO(b)
	dto.ClientSecret = clientSecret
	return dto, nil
}

// createWithFreshReference mints a reference and runs the creation saga,
// re-minting on a duplicate-reference conflict.
func (s *BookingService) createWithFreshReference(
	ctx context.Context,
	customerID uuid.UUID,
	req CreateBookingRequest,
	eventDate time.Time,
	subtotal, extrasTotal, discount float64,
) (*bookingDomain.Booking, string, error) {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, "", apperror.NewValidationError("invalid package_id")
	}

	var lastErr error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.refGenerator.GenerateAt(eventDate)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate booking reference: %w", err)
		}

		b := bookingDomain.NewBooking(
			ref,
			customerID,
			req.CustomerName,
			req.CustomerEmail,
			eventDate,
			packageID,
			req.GuestCount,
			subtotal,
			extrasTotal,
			discount,
			promoDomain.FormatCode(req.PromoCode),
		)

		clientSecret, err := s.orchestrator.CreateBookingSaga(ctx, b)
		if err == nil {
			return b, clientSecret, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, "", err
		}

		lastErr = err
		s.logger.Warn("booking reference collision, re-minting",
			zap.String("reference", ref),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, "", fmt.Errorf("exhausted booking reference attempts: %w", lastErr)
}

// loadCatalogItems fetches and validates the package and extras for a request.
func (s *BookingService) loadCatalogItems(ctx context.Context, req CreateBookingRequest) (*catalog.Package, []*catalog.Extra, error) {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, nil, apperror.NewValidationError("invalid package_id")
	}

	pkg, err := s.catalog.FindPackageByID(ctx, packageID)
	if err != nil {
		return nil, nil, err
	}
	if !pkg.IsActive {
		return nil, nil, apperror.NewValidationError("package is no longer available")
	}
	if req.GuestCount > pkg.MaxGuests {
		return nil, nil, apperror.NewValidationError(
			fmt.Sprintf("guest count exceeds package capacity of %d", pkg.MaxGuests))
	}

	extraIDs := make([]uuid.UUID, 0, len(req.ExtraIDs))
	for _, raw := range req.ExtraIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, apperror.NewValidationError("invalid extra id: " + raw)
		}
		extraIDs = append(extraIDs, id)
	}

	extras, err := s.catalog.FindExtrasByIDs(ctx, extraIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range extras {
		if !e.IsActive {
			return nil, nil, apperror.NewValidationError("extra is no longer available: " + e.Name)
		}
	}
	return pkg, extras, nil
}

// GetBookingByReference validates the reference format before querying.
func (s *BookingService) GetBookingByReference(ctx context.Context, ref string) (*BookingDTO, error) {
	if !reference.Validate(ref) {
		return nil, apperror.NewValidationError("invalid booking reference")
	}

	b, err := s.bookings.FindByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	return toBookingDTO(b), nil
}

// GetCustomerBookings returns the caller's bookings, newest first.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID) ([]*BookingDTO, error) {
	list, err := s.bookings.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*BookingDTO, len(list))
	for i, b := range list {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// CancelBooking cancels a booking on behalf of its owner. Admins may cancel
// any booking.
func (s *BookingService) CancelBooking(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID uuid.UUID, req CancelBookingRequest) error {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !isAdmin && b.CustomerID() != callerID {
		return apperror.NewNotFoundError("booking", bookingID.String())
	}

	reason := req.Reason
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.orchestrator.CancelBookingSaga(ctx, bookingID, reason)
}

// CompleteBooking marks a confirmed booking completed once its event date has
// passed (admin only). Completed bookings count toward revenue.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !time.Now().UTC().After(b.EventDate().AddDate(0, 0, 1)) {
		return nil, apperror.NewValidationError("booking cannot be completed before its event date has passed")
	}

	if err := s.orchestrator.CompleteBookingSaga(ctx, bookingID); err != nil {
		return nil, err
	}

	b, err = s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking completed", zap.String("reference", b.Reference()))
	return toBookingDTO(b), nil
}

// ListBookings returns paginated bookings (admin only).
func (s *BookingService) ListBookings(ctx context.Context, page, limit int) ([]*BookingDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*BookingDTO, len(list))
	for i, b := range list {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, total, nil
}

// GetBookingStats returns revenue and status counts (admin only).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	revenue, counts, err := s.bookings.GetBookingStats(ctx)
	if err != nil {
		return nil, err
	}
	return &BookingStatsDTO{TotalRevenue: revenue, CountByStatus: counts}, nil
}

// HandlePaymentSucceeded confirms the booking whose deposit was paid.
func (s *BookingService) HandlePaymentSucceeded(ctx context.Context, event events.PaymentSucceededEvent) error {
	b, err := s.bookings.FindByReference(ctx, event.BookingReference)
	if err != nil {
		return err
	}
	if b.Status() != bookingDomain.StatusPending {
		s.logger.Warn("ignoring payment success for non-pending booking",
			zap.String("reference", event.BookingReference),
			zap.String("status", string(b.Status())),
		)
		return nil
	}
	return s.orchestrator.ConfirmBookingSaga(ctx, b.ID(), event.PaymentIntentID)
}

// HandlePaymentFailed cancels the booking whose deposit failed.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, event events.PaymentFailedEvent) error {
	b, err := s.bookings.FindByReference(ctx, event.BookingReference)
	if err != nil {
		return err
	}
	if b.Status() != bookingDomain.StatusPending {
		s.logger.Warn("ignoring payment failure for non-pending booking",
			zap.String("reference", event.BookingReference),
			zap.String("status", string(b.Status())),
		)
		return nil
	}
	reason := "deposit payment failed"
	if event.Reason != "" {
		reason = "deposit payment failed: " + event.Reason
	}
	return s.orchestrator.CancelBookingSaga(ctx, b.ID(), reason)
}

func toBookingDTO(b *bookingDomain.Booking) *BookingDTO {
	return &BookingDTO{
		ID:               b.ID(),
		Reference:        b.Reference(),
		CustomerName:     b.CustomerName(),
		CustomerEmail:    b.CustomerEmail(),
		EventDate:        b.EventDate().Format("2006-01-02"),
		EventDateDisplay: availability.FormatDateForDisplay(b.EventDate(), true),
		PackageID:        b.PackageID(),
		GuestCount:       b.GuestCount(),
		Subtotal:         b.Subtotal(),
		ExtrasTotal:      b.ExtrasTotal(),
		Discount:         b.Discount(),
		Total:            b.Total(),
		PromoCode:        b.PromoCode(),
		Status:           string(b.Status()),
		CancelReason:     b.CancelReason(),
		ConfirmedAt:      b.ConfirmedAt(),
		CancelledAt:      b.CancelledAt(),
		CreatedAt:        b.CreatedAt(),
	}
}
