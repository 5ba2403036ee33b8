package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlackoutDate marks a specific calendar day as unbookable regardless of
// weekday or cutoff. Read-mostly calendar fact; the time component of
// Date is ignored everywhere.
type BlackoutDate struct {
	ID        uuid.UUID
	Date      time.Time
	Reason    string
	CreatedAt time.Time
}

// BlackoutRepository defines persistence operations for blackout dates.
type BlackoutRepository interface {
	Save(ctx context.Context, b *BlackoutDate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]BlackoutDate, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]BlackoutDate, error)
}
