package promo

import (
	"context"

	"github.com/google/uuid"
)

// PromoRepository defines persistence operations for promo codes.
// Lookups by code must match on the FormatCode-normalized form.
type PromoRepository interface {
	Save(ctx context.Context, p *PromoCode) error
	Update(ctx context.Context, p *PromoCode) error
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	FindAll(ctx context.Context) ([]*PromoCode, error)
}
