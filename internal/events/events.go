package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on the booking topic.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event types consumed from the payment topic.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// EventSource identifies this service as the CloudEvent source.
const EventSource = "service-booking"

// BookingCreatedEvent is published when a booking is created with a deposit hold.
type BookingCreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	Reference       string    `json:"reference"`
	CustomerID      uuid.UUID `json:"customer_id"`
	EventDate       time.Time `json:"event_date"`
	Total           float64   `json:"total"`
	DepositCents    int64     `json:"deposit_cents"`
	PaymentIntentID string    `json:"payment_intent_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a deposit is captured and the booking confirmed.
type BookingConfirmedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	Reference       string    `json:"reference"`
	CustomerID      uuid.UUID `json:"customer_id"`
	EventDate       time.Time `json:"event_date"`
	PaymentIntentID string    `json:"payment_intent_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published after the event date has passed and the
// booking is marked complete.
type BookingCompletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is consumed when the payment provider confirms a deposit.
type PaymentSucceededEvent struct {
	PaymentIntentID  string    `json:"payment_intent_id"`
	BookingReference string    `json:"booking_reference"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentFailedEvent is consumed when a deposit payment fails.
type PaymentFailedEvent struct {
	PaymentIntentID  string    `json:"payment_intent_id"`
	BookingReference string    `json:"booking_reference"`
	Reason           string    `json:"reason"`
	OccurredAt       time.Time `json:"occurred_at"`
}
