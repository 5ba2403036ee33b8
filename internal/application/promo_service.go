package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/domain/apperror"
	promoDomain "github.com/norfolk-coast-barns/service-booking/internal/domain/promo"
)

// CreatePromoRequest holds data to create a promo code.
type CreatePromoRequest struct {
	Code          string  `json:"code" binding:"required"`
	DiscountType  string  `json:"discount_type" binding:"required"`
	DiscountValue float64 `json:"discount_value" binding:"required"`
	ValidFrom     string  `json:"valid_from"`
	ValidUntil    string  `json:"valid_until"`
	UsageLimit    *int    `json:"usage_limit"`
}

// ValidatePromoRequest holds data to validate a promo code against a subtotal.
// BookingDate is an optional "YYYY-MM-DD" event date; when present the code's
// validity window is checked against it instead of the current time.
type ValidatePromoRequest struct {
	Code        string  `json:"code" binding:"required"`
	Subtotal    float64 `json:"subtotal" binding:"required"`
	BookingDate string  `json:"bookingDate"`
}

// PromoDTO is the API response representation of a promo code.
type PromoDTO struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	IsActive      bool       `json:"is_active"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	UsageLimit    *int       `json:"usage_limit,omitempty"`
	UsageCount    int        `json:"usage_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PromoValidationDTO is the result of validating a promo code. The field
// names and reason wording are frontend contract.
type PromoValidationDTO struct {
	Valid          bool     `json:"valid"`
	DiscountAmount *float64 `json:"discountAmount,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// PromoService handles promo code use cases.
type PromoService struct {
	repo   promoDomain.PromoRepository
	logger *zap.Logger
}

// NewPromoService creates a new PromoService.
func NewPromoService(repo promoDomain.PromoRepository, logger *zap.Logger) *PromoService {
	return &PromoService{repo: repo, logger: logger}
}

// CreatePromo creates a new promo code (admin only).
func (s *PromoService) CreatePromo(ctx context.Context, req CreatePromoRequest) (*PromoDTO, error) {
	validFrom, err := parseOptionalInstant(req.ValidFrom)
	if err != nil {
		return nil, apperror.NewValidationError("invalid valid_from format (use RFC3339)")
	}
	validUntil, err := parseOptionalInstant(req.ValidUntil)
	if err != nil {
		return nil, apperror.NewValidationError("invalid valid_until format (use RFC3339)")
	}

	promo, err := promoDomain.NewPromoCode(
		req.Code,
		promoDomain.DiscountType(req.DiscountType),
		req.DiscountValue,
		validFrom,
		validUntil,
		req.UsageLimit,
	)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to save promo: %w", err)
	}

	s.logger.Info("promo code created", zap.String("code", promo.Code()))
	return toPromoDTO(promo), nil
}

// ValidatePromo evaluates a promo code against a subtotal. Ineligibility is
// reported in the DTO, never as an error.
func (s *PromoService) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (*PromoValidationDTO, error) {
	at := time.Now().UTC()
	if req.BookingDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BookingDate)
		if err != nil {
			return nil, apperror.NewValidationError("invalid bookingDate format (use YYYY-MM-DD)")
		}
		at = parsed
	}

	promo, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	result := promoDomain.Validate(promo, req.Subtotal, at)
	if !result.Valid {
		return &PromoValidationDTO{Valid: false, Error: result.Reason}, nil
	}

	discount := result.DiscountAmount
	return &PromoValidationDTO{Valid: true, DiscountAmount: &discount}, nil
}

// ListPromos returns every promo code (admin only).
func (s *PromoService) ListPromos(ctx context.Context) ([]*PromoDTO, error) {
	promos, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PromoDTO, len(promos))
	for i, p := range promos {
		dtos[i] = toPromoDTO(p)
	}
	return dtos, nil
}

// DeactivatePromo turns a promo code off (admin only).
func (s *PromoService) DeactivatePromo(ctx context.Context, id uuid.UUID) (*PromoDTO, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	promo.Deactivate()
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to update promo: %w", err)
	}

	s.logger.Info("promo code deactivated", zap.String("code", promo.Code()))
	return toPromoDTO(promo), nil
}

func parseOptionalInstant(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toPromoDTO(p *promoDomain.PromoCode) *PromoDTO {
	return &PromoDTO{
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
	}
}
