package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }

func reconstructCode(t *testing.T, isActive bool, validFrom, validUntil *time.Time, usageLimit *int, usageCount int) *PromoCode {
	t.Helper()
	now := time.Now().UTC()
	return Reconstruct(uuid.New(), "SPRING25", DiscountTypePercentage, 25, isActive, validFrom, validUntil, usageLimit, usageCount, now, now)
}

func TestCalculateDiscount_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		value    float64
		want     float64
	}{
		{"10 percent of 100", 100, 10, 10.00},
		{"rounds half-up at the penny", 99.99, 33.333, 33.33},
		{"half-penny rounds up", 10.01, 50, 5.01}, // 5.005 -> 5.01
		{"full percentage", 250, 100, 250},
		{"zero value", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDiscount(tt.subtotal, DiscountTypePercentage, tt.value)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateDiscount_FixedAmount(t *testing.T) {
	assert.Equal(t, 20.0, CalculateDiscount(100, DiscountTypeFixedAmount, 20))
	// A fixed discount is capped at the subtotal.
	assert.Equal(t, 50.0, CalculateDiscount(50, DiscountTypeFixedAmount, 75))
	assert.Equal(t, 50.0, CalculateDiscount(50, DiscountTypeFixedAmount, 50))
}

func TestCalculateDiscount_NonsensicalInputs(t *testing.T) {
	assert.Equal(t, 0.0, CalculateDiscount(0, DiscountTypePercentage, 10))
	assert.Equal(t, 0.0, CalculateDiscount(-5, DiscountTypeFixedAmount, 10))
	assert.Equal(t, 0.0, CalculateDiscount(100, DiscountTypePercentage, -10))
	assert.Equal(t, 0.0, CalculateDiscount(100, DiscountType("unknown"), 10))
}

func TestCheckUsageLimit(t *testing.T) {
	assert.True(t, CheckUsageLimit(nil, 1000000), "nil limit is unlimited")
	assert.True(t, CheckUsageLimit(intPtr(5), 4))
	assert.False(t, CheckUsageLimit(intPtr(5), 5), "limit 5 with count 5 is exhausted")
	assert.False(t, CheckUsageLimit(intPtr(5), 6))
}

func TestCheckDateValidity(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	before := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unbounded", func(t *testing.T) {
		assert.True(t, CheckDateValidity(nil, nil, at).IsValid)
	})

	t.Run("not yet valid", func(t *testing.T) {
		dv := CheckDateValidity(timePtr(after), nil, at)
		assert.False(t, dv.IsValid)
		assert.Equal(t, ReasonNotYetValid, dv.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		dv := CheckDateValidity(nil, timePtr(before), at)
		assert.False(t, dv.IsValid)
		assert.Equal(t, ReasonExpired, dv.Reason)
	})

	t.Run("within window", func(t *testing.T) {
		assert.True(t, CheckDateValidity(timePtr(before), timePtr(after), at).IsValid)
	})

	t.Run("boundary instants are inclusive", func(t *testing.T) {
		assert.True(t, CheckDateValidity(timePtr(at), nil, at).IsValid)
		assert.True(t, CheckDateValidity(nil, timePtr(at), at).IsValid)
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(nil, now))
	assert.False(t, IsExpired(timePtr(now), now), "strictly past only")
	assert.False(t, IsExpired(timePtr(now.Add(time.Hour)), now))
	assert.True(t, IsExpired(timePtr(now.Add(-time.Hour)), now))
}

func TestValidate_ReasonPrecedence(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := at.Add(-30 * 24 * time.Hour)

	t.Run("nil record", func(t *testing.T) {
		v := Validate(nil, 100, at)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonInvalidCode, v.Reason)
	})

	t.Run("inactive wins over expired and exhausted", func(t *testing.T) {
		// Simultaneously inactive, expired and usage-exhausted.
		p := reconstructCode(t, false, nil, timePtr(past), intPtr(1), 1)
		v := Validate(p, 100, at)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonNotActive, v.Reason)
	})

	t.Run("date reason before usage", func(t *testing.T) {
		p := reconstructCode(t, true, nil, timePtr(past), intPtr(1), 1)
		v := Validate(p, 100, at)
		assert.Equal(t, ReasonExpired, v.Reason)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		p := reconstructCode(t, true, nil, nil, intPtr(3), 3)
		v := Validate(p, 100, at)
		assert.Equal(t, ReasonUsageLimitReached, v.Reason)
	})

	t.Run("valid code returns discount", func(t *testing.T) {
		p := reconstructCode(t, true, timePtr(past), timePtr(at.Add(time.Hour)), intPtr(10), 3)
		v := Validate(p, 200, at)
		require.True(t, v.Valid)
		assert.Empty(t, v.Reason)
		assert.Equal(t, 50.0, v.DiscountAmount)
		assert.Same(t, p, v.Promo)
	})
}

func TestIsUsableAt(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, reconstructCode(t, true, nil, nil, nil, 99).IsUsableAt(at))
	assert.False(t, reconstructCode(t, false, nil, nil, nil, 0).IsUsableAt(at))
	assert.False(t, reconstructCode(t, true, timePtr(at.Add(time.Hour)), nil, nil, 0).IsUsableAt(at))
	assert.False(t, reconstructCode(t, true, nil, nil, intPtr(2), 2).IsUsableAt(at))
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "SPRING25", FormatCode("  spring25 "))
	assert.Equal(t, "WINTER", FormatCode("Winter"))
	assert.Equal(t, "", FormatCode("   "))
}

func TestNewPromoCode_Validation(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	p, err := NewPromoCode(" summer10 ", DiscountTypePercentage, 10, timePtr(from), timePtr(until), intPtr(100))
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", p.Code())
	assert.True(t, p.IsActive())
	assert.Zero(t, p.UsageCount())

	_, err = NewPromoCode("", DiscountTypePercentage, 10, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewPromoCode("X", DiscountType("weird"), 10, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewPromoCode("X", DiscountTypePercentage, 0, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewPromoCode("X", DiscountTypePercentage, 101, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewPromoCode("X", DiscountTypeFixedAmount, 10, timePtr(until), timePtr(from), nil)
	assert.Error(t, err)

	_, err = NewPromoCode("X", DiscountTypeFixedAmount, 10, nil, nil, intPtr(0))
	assert.Error(t, err)
}

func TestIncrementUsage(t *testing.T) {
	p := reconstructCode(t, true, nil, nil, intPtr(2), 1)

	assert.True(t, p.IsUsableAt(time.Now().UTC()))
	p.IncrementUsage()
	assert.Equal(t, 2, p.UsageCount())
	assert.False(t, p.IsUsableAt(time.Now().UTC()))
}
