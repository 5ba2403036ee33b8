package promo

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiscountType represents the type of discount.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Validation failure reasons. The wording is part of the API contract:
// handlers return these strings verbatim to the client.
const (
	ReasonInvalidCode       = "Invalid promo code"
	ReasonNotActive         = "Promo code is not active"
	ReasonNotYetValid       = "not yet valid"
	ReasonExpired           = "expired"
	ReasonUsageLimitReached = "usage limit reached"
)

// PromoCode is the aggregate root for promotional codes. Date bounds and
// the usage limit are optional; nil means unbounded on that side.
type PromoCode struct {
	id            uuid.UUID
	code          string
	discountType  DiscountType
	discountValue float64
	isActive      bool
	validFrom     *time.Time
	validUntil    *time.Time
	usageLimit    *int
	usageCount    int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPromoCode creates a new promo code. The code is normalized with
// FormatCode before storage so lookups match case-insensitively.
func NewPromoCode(code string, discountType DiscountType, discountValue float64, validFrom, validUntil *time.Time, usageLimit *int) (*PromoCode, error) {
	code = FormatCode(code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if discountType != DiscountTypePercentage && discountType != DiscountTypeFixedAmount {
		return nil, fmt.Errorf("invalid discount type: %s", discountType)
	}
	if discountValue <= 0 {
		return nil, fmt.Errorf("discount value must be positive")
	}
	if discountType == DiscountTypePercentage && discountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100")
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, fmt.Errorf("valid_until must be after valid_from")
	}
	if usageLimit != nil && *usageLimit <= 0 {
		return nil, fmt.Errorf("usage limit must be positive")
	}

	now := time.Now().UTC()
	return &PromoCode{
		id:            uuid.New(),
		code:          code,
		discountType:  discountType,
		discountValue: discountValue,
		isActive:      true,
		validFrom:     validFrom,
		validUntil:    validUntil,
		usageLimit:    usageLimit,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a PromoCode from persistence.
func Reconstruct(id uuid.UUID, code string, discountType DiscountType, discountValue float64, isActive bool, validFrom, validUntil *time.Time, usageLimit *int, usageCount int, createdAt, updatedAt time.Time) *PromoCode {
	return &PromoCode{
		id: id, code: code, discountType: discountType, discountValue: discountValue,
		isActive: isActive, validFrom: validFrom, validUntil: validUntil,
		usageLimit: usageLimit, usageCount: usageCount,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// FormatCode normalizes a raw code to its canonical lookup key.
func FormatCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CalculateDiscount computes the discount amount for a subtotal. Both a
// non-positive subtotal and a negative value yield 0 rather than an error.
// Percentage discounts round half-up at the second decimal; fixed
// discounts never exceed the subtotal.
func CalculateDiscount(subtotal float64, discountType DiscountType, discountValue float64) float64 {
	if subtotal <= 0 || discountValue < 0 {
		return 0
	}

	switch discountType {
	case DiscountTypePercentage:
		return round2(subtotal * discountValue / 100)
	case DiscountTypeFixedAmount:
		return math.Min(discountValue, subtotal)
	}
	return 0
}

// CheckUsageLimit reports whether another redemption is allowed. A nil
// limit means unlimited; otherwise the count must be strictly below it.
func CheckUsageLimit(usageLimit *int, usageCount int) bool {
	if usageLimit == nil {
		return true
	}
	return usageCount < *usageLimit
}

// DateValidity is the structured result of a date-window check.
type DateValidity struct {
	IsValid bool
	Reason  string
}

// CheckDateValidity checks an instant against optional date bounds. The
// upper bound is inclusive: a code valid "until" an instant is still
// valid exactly at that instant.
func CheckDateValidity(validFrom, validUntil *time.Time, at time.Time) DateValidity {
	if validFrom != nil && at.Before(*validFrom) {
		return DateValidity{Reason: ReasonNotYetValid}
	}
	if validUntil != nil && at.After(*validUntil) {
		return DateValidity{Reason: ReasonExpired}
	}
	return DateValidity{IsValid: true}
}

// IsExpired reports whether an optional expiry instant lies strictly in
// the past.
func IsExpired(validUntil *time.Time, now time.Time) bool {
	return validUntil != nil && validUntil.Before(now)
}

// Validation is the outcome of evaluating a promo code against a
// subtotal. Ineligibility is an expected business result, not an error.
type Validation struct {
	Valid          bool
	Reason         string
	DiscountAmount float64
	Promo          *PromoCode
}

// Validate evaluates a promo code. The checks short-circuit in a fixed
// order, so a code that is simultaneously inactive, expired and exhausted
// always reports the inactive reason.
func Validate(p *PromoCode, subtotal float64, at time.Time) Validation {
	if p == nil {
		return Validation{Reason: ReasonInvalidCode}
	}
	if !p.isActive {
		return Validation{Reason: ReasonNotActive}
	}
	if dv := CheckDateValidity(p.validFrom, p.validUntil, at); !dv.IsValid {
		return Validation{Reason: dv.Reason}
	}
	if !CheckUsageLimit(p.usageLimit, p.usageCount) {
		return Validation{Reason: ReasonUsageLimitReached}
	}

	return Validation{
		Valid:          true,
		DiscountAmount: CalculateDiscount(subtotal, p.discountType, p.discountValue),
		Promo:          p,
	}
}

// IsUsableAt is the composite predicate: active flag, date window and
// usage limit all pass at the given instant.
func (p *PromoCode) IsUsableAt(at time.Time) bool {
	return p.isActive &&
		CheckDateValidity(p.validFrom, p.validUntil, at).IsValid &&
		CheckUsageLimit(p.usageLimit, p.usageCount)
}

// CalculateDiscount computes this code's discount for a subtotal.
func (p *PromoCode) CalculateDiscount(subtotal float64) float64 {
	return CalculateDiscount(subtotal, p.discountType, p.discountValue)
}

// IncrementUsage records a successful redemption.
func (p *PromoCode) IncrementUsage() {
	p.usageCount++
	p.updatedAt = time.Now().UTC()
}

// Deactivate turns the code off independently of its date window.
func (p *PromoCode) Deactivate() {
	p.isActive = false
	p.updatedAt = time.Now().UTC()
}

// Getters.
func (p *PromoCode) ID() uuid.UUID              { return p.id }
func (p *PromoCode) Code() string               { return p.code }
func (p *PromoCode) DiscountType() DiscountType { return p.discountType }
func (p *PromoCode) DiscountValue() float64     { return p.discountValue }
func (p *PromoCode) IsActive() bool             { return p.isActive }
func (p *PromoCode) ValidFrom() *time.Time      { return p.validFrom }
func (p *PromoCode) ValidUntil() *time.Time     { return p.validUntil }
func (p *PromoCode) UsageLimit() *int           { return p.usageLimit }
func (p *PromoCode) UsageCount() int            { return p.usageCount }
func (p *PromoCode) CreatedAt() time.Time       { return p.createdAt }
func (p *PromoCode) UpdatedAt() time.Time       { return p.updatedAt }

// round2 rounds half-up at the second decimal place.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
