package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nrehal/gatepass/internal/domain"
	pkgkafka "github.com/nrehal/gatepass/pkg/kafka"
	"github.com/nrehal/gatepass/pkg/logger"
)

// Kafka topic constants for gatepass domain events.
const (
	TopicUserRegistered   = "gatepass.user.registered"
	TopicBookingCreated   = "gatepass.booking.created"
	TopicBookingCancelled = "gatepass.booking.cancelled"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeBooking = "booking"
)

// Source identifier for events originating from this service.
const Source = "gatepass"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// BookingCreatedData is the payload for a booking.created event.
type BookingCreatedData struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remainingQuantity"`
}

// BookingCancelledData is the payload for a booking.cancelled event.
type BookingCancelledData struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	Quantity  int    `json:"quantity"`
}

// Producer publishes gatepass domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new domain event producer.
func NewProducer(kafka *pkgkafka.Producer, log *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: log,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		UserName:  user.UserName,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishBookingCreated publishes a booking.created event.
func (p *Producer) PublishBookingCreated(ctx context.Context, booking *domain.Booking, ev *domain.Event) error {
	data := BookingCreatedData{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		EventID:   ev.ID,
		EventName: ev.Name,
		Quantity:  booking.Quantity,
		Remaining: ev.RemainingQuantity,
	}

	return p.publish(ctx, TopicBookingCreated, booking.ID, AggregateTypeBooking, data)
}

// PublishBookingCancelled publishes a booking.cancelled event.
func (p *Producer) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	data := BookingCancelledData{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		EventID:   booking.EventID,
		Quantity:  booking.Quantity,
	}

	return p.publish(ctx, TopicBookingCancelled, booking.ID, AggregateTypeBooking, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		ev.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
