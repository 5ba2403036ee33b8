package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/availability"
)

// CreateBlackoutRequest holds data to create a blackout date.
type CreateBlackoutRequest struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason"`
}

// AvailableDateDTO is one bookable date in a range listing.
type AvailableDateDTO struct {
	Date    string `json:"date"`
	Display string `json:"display"`
}

// DateCheckDTO is the result of checking a single date.
type DateCheckDTO struct {
	Date      string `json:"date"`
	Display   string `json:"display"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// BlackoutDTO is the API representation of a blackout date.
type BlackoutDTO struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailabilityService handles date availability use cases.
type AvailabilityService struct {
	blackouts  availability.BlackoutRepository
	cutoffTime string
	logger     *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(blackouts availability.BlackoutRepository, cutoffTime string, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{blackouts: blackouts, cutoffTime: cutoffTime, logger: logger}
}

// ListAvailableDates returns the bookable dates in [start, end], both
// "YYYY-MM-DD". Fridays and Saturdays only, minus blackouts and dates past
// the booking cutoff.
func (s *AvailabilityService) ListAvailableDates(ctx context.Context, startStr, endStr string) ([]AvailableDateDTO, error) {
	start, err := parseDay(startStr)
	if err != nil {
		return nil, apperror.NewValidationError("invalid start date format (use YYYY-MM-DD)")
	}
	end, err := parseDay(endStr)
	if err != nil {
		return nil, apperror.NewValidationError("invalid end date format (use YYYY-MM-DD)")
	}

	blackouts, err := s.blackouts.FindBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load blackout dates: %w", err)
	}

	candidates := availability.FridaysAndSaturdaysBetween(start, end)
	candidates = availability.FilterBlackoutDates(candidates, blackouts)

	now := time.Now().UTC()
	includeYear := start.Year() != end.Year() || start.Year() != now.Year()

	dates := make([]AvailableDateDTO, 0, len(candidates))
	for _, d := range candidates {
		if availability.IsPastCutoff(d, s.cutoffTime, now) {
			continue
		}
		dates = append(dates, AvailableDateDTO{
			Date:    d.Format("2006-01-02"),
			Display: availability.FormatDateForDisplay(d, includeYear),
		})
	}
	return dates, nil
}

// CheckDate reports whether a single "YYYY-MM-DD" date is bookable, with a
// reason when it is not.
func (s *AvailabilityService) CheckDate(ctx context.Context, dateStr string) (*DateCheckDTO, error) {
	date, err := parseDay(dateStr)
	if err != nil {
		return nil, apperror.NewValidationError("invalid date format (use YYYY-MM-DD)")
	}

	dto := &DateCheckDTO{
		Date:    date.Format("2006-01-02"),
		Display: availability.FormatDateForDisplay(date, true),
	}

	if wd := date.Weekday(); wd != time.Friday && wd != time.Saturday {
		dto.Reason = "events run on Fridays and Saturdays only"
		return dto, nil
	}

	now := time.Now().UTC()
	if availability.IsPastCutoff(date, s.cutoffTime, now) {
		dto.Reason = "booking cutoff has passed for this date"
		return dto, nil
	}

	blackouts, err := s.blackouts.FindBetween(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load blackout dates: %w", err)
	}
	if !availability.IsDateAvailable(date, blackouts, s.cutoffTime, now) {
		dto.Reason = "the venue is closed on this date"
		return dto, nil
	}

	dto.Available = true
	return dto, nil
}

// CreateBlackout marks a date as unbookable (admin only).
func (s *AvailabilityService) CreateBlackout(ctx context.Context, req CreateBlackoutRequest) (*BlackoutDTO, error) {
	date, err := parseDay(req.Date)
	if err != nil {
		return nil, apperror.NewValidationError("invalid date format (use YYYY-MM-DD)")
	}

	blackout := &availability.BlackoutDate{
		ID:        uuid.New(),
		Date:      date,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.blackouts.Save(ctx, blackout); err != nil {
		return nil, err
	}

	s.logger.Info("blackout date created",
		zap.String("date", req.Date),
		zap.String("reason", req.Reason),
	)
	return toBlackoutDTO(blackout), nil
}

// DeleteBlackout removes a blackout date (admin only).
func (s *AvailabilityService) DeleteBlackout(ctx context.Context, id uuid.UUID) error {
	if err := s.blackouts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("blackout date deleted", zap.String("id", id.String()))
	return nil
}

// ListBlackouts returns every blackout date (admin only).
func (s *AvailabilityService) ListBlackouts(ctx context.Context) ([]*BlackoutDTO, error) {
	blackouts, err := s.blackouts.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*BlackoutDTO, len(blackouts))
	for i := range blackouts {
		dtos[i] = toBlackoutDTO(&blackouts[i])
	}
	return dtos, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func toBlackoutDTO(b *availability.BlackoutDate) *BlackoutDTO {
	return &BlackoutDTO{
		ID:        b.ID,
		Date:      b.Date.Format("2006-01-02"),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}
