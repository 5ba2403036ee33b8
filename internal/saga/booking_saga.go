package saga

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/adapter"
	"github.com/norfolk-coast-barns/service-booking/internal/domain/booking"
	"github.com/norfolk-coast-barns/service-booking/internal/events"
	"github.com/norfolk-coast-barns/service-booking/internal/kafka"
)

// SagaStep represents a single step in a saga with execute and compensate actions.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga orchestrates a sequence of steps with compensating transactions on failure.
type Saga struct {
	name   string
	steps  []SagaStep
	logger *zap.Logger
}

// NewSaga creates a new saga orchestrator.
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{
		name:   name,
		steps:  make([]SagaStep, 0),
		logger: logger,
	}
}

// AddStep appends a step to the saga.
func (s *Saga) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
}

// Execute runs all saga steps in order. On failure, it compensates executed steps in reverse order.
func (s *Saga) Execute(ctx context.Context) error {
	s.logger.Info("saga started", zap.String("saga", s.name))

	executedSteps := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		s.logger.Info("executing saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)

		if err := step.Execute(ctx); err != nil {
			s.logger.Error("saga step failed, starting compensation",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)

			// Compensate executed steps in reverse order
			for i := len(executedSteps) - 1; i >= 0; i-- {
				compensateStep := executedSteps[i]
				if compensateStep.Compensate != nil {
					s.logger.Info("compensating saga step",
						zap.String("saga", s.name),
						zap.String("step", compensateStep.Name),
					)
					if compErr := compensateStep.Compensate(ctx); compErr != nil {
						s.logger.Error("compensation failed",
							zap.String("saga", s.name),
							zap.String("step", compensateStep.Name),
							zap.Error(compErr),
						)
					}
				}
			}

			return fmt.Errorf("saga '%s' failed at step '%s': %w", s.name, step.Name, err)
		}

		executedSteps = append(executedSteps, step)
	}

	s.logger.Info("saga completed successfully", zap.String("saga", s.name))
	return nil
}

// BookingSagaService orchestrates booking workflows that span the database,
// Stripe, and Kafka.
type BookingSagaService struct {
	repo           booking.BookingRepository
	stripe         adapter.StripeAdapter
	producer       *kafka.Producer
	depositPercent float64
	currency       string
	logger         *zap.Logger
}

// NewBookingSagaService creates a new BookingSagaService.
func NewBookingSagaService(
	repo booking.BookingRepository,
	stripe adapter.StripeAdapter,
	producer *kafka.Producer,
	depositPercent float64,
	currency string,
	logger *zap.Logger,
) *BookingSagaService {
	return &BookingSagaService{
		repo:           repo,
		stripe:         stripe,
		producer:       producer,
		depositPercent: depositPercent,
		currency:       currency,
		logger:         logger,
	}
}

// DepositCents returns the deposit amount in minor units for a booking total.
// total is in pounds and depositPercent in percentage points, so the /100 for
// the percentage and the *100 for pence cancel out.
func (s *BookingSagaService) DepositCents(total float64) int64 {
	return int64(math.Floor(total*s.depositPercent + 0.5))
}

// CreateBookingSaga persists the booking, authorizes the deposit with Stripe,
// attaches the payment intent, and publishes a created event. It returns the
// Stripe client secret for the frontend to complete payment.
func (s *BookingSagaService) CreateBookingSaga(ctx context.Context, b *booking.Booking) (string, error) {
	var paymentIntentID, clientSecret string
	depositCents := s.DepositCents(b.Total())

	saga := NewSaga("create_booking", s.logger)

	// Step 1: Save booking to database
	saga.AddStep(SagaStep{
		Name: "save_booking",
		Execute: func(ctx context.Context) error {
			return s.repo.Save(ctx, b)
		},
		Compensate: func(ctx context.Context) error {
			_ = b.Cancel("saga compensation: booking creation failed")
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
	})

	// Step 2: Create Stripe deposit intent with manual capture
	saga.AddStep(SagaStep{
		Name: "create_deposit_intent",
		Execute: func(ctx context.Context) error {
			var err error
			paymentIntentID, clientSecret, err = s.stripe.CreateDepositIntent(
				ctx, depositCents, s.currency, b.CustomerEmail(), b.Reference())
			return err
		},
		Compensate: func(ctx context.Context) error {
			if paymentIntentID != "" {
				return s.stripe.CancelPaymentIntent(ctx, paymentIntentID)
			}
			return nil
		},
	})

	// Step 3: Attach the payment intent and persist
	saga.AddStep(SagaStep{
		Name: "attach_payment_intent",
		Execute: func(ctx context.Context) error {
			if err := b.AttachPaymentIntent(paymentIntentID); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
		Compensate: func(ctx context.Context) error {
			_ = s.stripe.CancelPaymentIntent(ctx, paymentIntentID)
			_ = b.Cancel("saga compensation: attaching payment intent failed")
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
	})

	// Step 4: Publish BookingCreatedEvent
	saga.AddStep(SagaStep{
		Name: "publish_booking_created_event",
		Execute: func(ctx context.Context) error {
			event := events.BookingCreatedEvent{
				BookingID:       b.ID(),
				Reference:       b.Reference(),
				CustomerID:      b.CustomerID(),
				EventDate:       b.EventDate(),
				Total:           b.Total(),
				DepositCents:    depositCents,
				PaymentIntentID: paymentIntentID,
				OccurredAt:      time.Now().UTC(),
			}
			cloudEvent, err := kafka.NewCloudEvent(events.EventSource, events.BookingCreated, event)
			if err != nil {
				return fmt.Errorf("failed to create cloud event: %w", err)
			}
			return s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent)
		},
		Compensate: nil, // Event publishing has no compensating action
	})

	if err := saga.Execute(ctx); err != nil {
		return "", err
	}

	return clientSecret, nil
}

// ConfirmBookingSaga captures the deposit, confirms the booking, and publishes an event.
func (s *BookingSagaService) ConfirmBookingSaga(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if paymentIntentID == "" {
		paymentIntentID = b.PaymentIntentID()
	}

	saga := NewSaga("confirm_booking", s.logger)

	// Step 1: Capture the deposit
	saga.AddStep(SagaStep{
		Name: "capture_deposit",
		Execute: func(ctx context.Context) error {
			return s.stripe.CapturePaymentIntent(ctx, paymentIntentID)
		},
		Compensate: func(ctx context.Context) error {
			return s.stripe.CreateRefund(ctx, paymentIntentID, s.DepositCents(b.Total()))
		},
	})

	// Step 2: Confirm in domain model and persist
	saga.AddStep(SagaStep{
		Name: "confirm_booking",
		Execute: func(ctx context.Context) error {
			if err := b.Confirm(paymentIntentID); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
		Compensate: nil, // Cannot undo a domain state change once persisted at this point
	})

	// Step 3: Publish BookingConfirmedEvent
	saga.AddStep(SagaStep{
		Name: "publish_booking_confirmed_event",
		Execute: func(ctx context.Context) error {
			event := events.BookingConfirmedEvent{
				BookingID:       b.ID(),
				Reference:       b.Reference(),
				CustomerID:      b.CustomerID(),
				EventDate:       b.EventDate(),
				PaymentIntentID: paymentIntentID,
				OccurredAt:      time.Now().UTC(),
			}
			cloudEvent, err := kafka.NewCloudEvent(events.EventSource, events.BookingConfirmed, event)
			if err != nil {
				return fmt.Errorf("failed to create cloud event: %w", err)
			}
			return s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent)
		},
		Compensate: nil,
	})

	return saga.Execute(ctx)
}

// CompleteBookingSaga marks a confirmed booking completed after its event
// date and publishes an event. The deposit was captured at confirmation, so
// no Stripe action is involved.
func (s *BookingSagaService) CompleteBookingSaga(ctx context.Context, bookingID uuid.UUID) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	saga := NewSaga("complete_booking", s.logger)

	// Step 1: Complete in domain model and persist
	saga.AddStep(SagaStep{
		Name: "complete_booking",
		Execute: func(ctx context.Context) error {
			if err := b.Complete(); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
		Compensate: nil,
	})

	// Step 2: Publish BookingCompletedEvent
	saga.AddStep(SagaStep{
		Name: "publish_booking_completed_event",
		Execute: func(ctx context.Context) error {
			event := events.BookingCompletedEvent{
				BookingID:  b.ID(),
				Reference:  b.Reference(),
				OccurredAt: time.Now().UTC(),
			}
			cloudEvent, err := kafka.NewCloudEvent(events.EventSource, events.BookingCompleted, event)
			if err != nil {
				return fmt.Errorf("failed to create cloud event: %w", err)
			}
			return s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent)
		},
		Compensate: nil,
	})

	return saga.Execute(ctx)
}

// CancelBookingSaga releases or refunds the deposit, cancels the booking, and
// publishes an event. Pending bookings get their intent cancelled; confirmed
// bookings get the captured deposit refunded.
func (s *BookingSagaService) CancelBookingSaga(ctx context.Context, bookingID uuid.UUID, reason string) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	wasConfirmed := b.Status() == booking.StatusConfirmed

	saga := NewSaga("cancel_booking", s.logger)

	// Step 1: Release the deposit with Stripe
	saga.AddStep(SagaStep{
		Name: "release_deposit",
		Execute: func(ctx context.Context) error {
			if b.PaymentIntentID() == "" {
				return nil
			}
			if wasConfirmed {
				return s.stripe.CreateRefund(ctx, b.PaymentIntentID(), s.DepositCents(b.Total()))
			}
			return s.stripe.CancelPaymentIntent(ctx, b.PaymentIntentID())
		},
		Compensate: nil, // Cannot undo a Stripe cancellation or refund
	})

	// Step 2: Cancel in domain model and persist
	saga.AddStep(SagaStep{
		Name: "cancel_booking",
		Execute: func(ctx context.Context) error {
			if err := b.Cancel(reason); err != nil {
				return err
			}
			b.IncrementVersion()
			return s.repo.Update(ctx, b)
		},
		Compensate: nil,
	})

	// Step 3: Publish BookingCancelledEvent
	saga.AddStep(SagaStep{
		Name: "publish_booking_cancelled_event",
		Execute: func(ctx context.Context) error {
			event := events.BookingCancelledEvent{
				BookingID:  b.ID(),
				Reference:  b.Reference(),
				CustomerID: b.CustomerID(),
				Reason:     reason,
				OccurredAt: time.Now().UTC(),
			}
			cloudEvent, err := kafka.NewCloudEvent(events.EventSource, events.BookingCancelled, event)
			if err != nil {
				return fmt.Errorf("failed to create cloud event: %w", err)
			}
			return s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent)
		},
		Compensate: nil,
	})

	return saga.Execute(ctx)
}
