package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/norfolk-coast-barns/service-booking/internal/kafka"
)

// PaymentEventHandler reacts to payment outcomes for a booking deposit.
// Implemented by the booking application service.
type PaymentEventHandler interface {
	HandlePaymentSucceeded(ctx context.Context, event PaymentSucceededEvent) error
	HandlePaymentFailed(ctx context.Context, event PaymentFailedEvent) error
}

// PaymentEventConsumer listens to payment events and drives booking state changes.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	handler  PaymentEventHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new consumer for payment events.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	handler PaymentEventHandler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming payment events. It blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received payment event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, PaymentSucceeded):
		return c.handlePaymentSucceeded(ctx, cloudEvent)

	case strings.EqualFold(cloudEvent.Type, PaymentFailed):
		return c.handlePaymentFailed(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// handlePaymentSucceeded processes a PaymentSucceededEvent.
func (c *PaymentEventConsumer) handlePaymentSucceeded(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentSucceededEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentSucceededEvent data", zap.Error(err))
		return err
	}

	return c.handler.HandlePaymentSucceeded(ctx, event)
}

// handlePaymentFailed processes a PaymentFailedEvent.
func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentFailedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data", zap.Error(err))
		return err
	}

	return c.handler.HandlePaymentFailed(ctx, event)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}
