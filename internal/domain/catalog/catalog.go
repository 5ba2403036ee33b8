// Package catalog holds the venue's bookable inventory: event packages
// and optional extras. These are read-mostly records managed by admins.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Package is a bookable event package (venue hire tier).
type Package struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       float64
	MaxGuests   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Extra is an optional add-on priced per booking.
type Extra struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       float64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPackage creates an active package after basic validation.
func NewPackage(name, description string, price float64, maxGuests int) (*Package, error) {
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if price <= 0 {
		return nil, fmt.Errorf("package price must be positive")
	}
	if maxGuests <= 0 {
		return nil, fmt.Errorf("package guest capacity must be positive")
	}

	now := time.Now().UTC()
	return &Package{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		MaxGuests:   maxGuests,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewExtra creates an active extra after basic validation.
func NewExtra(name, description string, price float64) (*Extra, error) {
	if name == "" {
		return nil, fmt.Errorf("extra name is required")
	}
	if price < 0 {
		return nil, fmt.Errorf("extra price cannot be negative")
	}

	now := time.Now().UTC()
	return &Extra{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CatalogRepository defines persistence operations for packages and extras.
type CatalogRepository interface {
	SavePackage(ctx context.Context, p *Package) error
	UpdatePackage(ctx context.Context, p *Package) error
	FindPackageByID(ctx context.Context, id uuid.UUID) (*Package, error)
	FindActivePackages(ctx context.Context) ([]*Package, error)

	SaveExtra(ctx context.Context, e *Extra) error
	UpdateExtra(ctx context.Context, e *Extra) error
	FindExtrasByIDs(ctx context.Context, ids []uuid.UUID) ([]*Extra, error)
	FindActiveExtras(ctx context.Context) ([]*Extra, error)
}
