package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/repository"
	apperrors "github.com/nrehal/gatepass/pkg/errors"
	"github.com/nrehal/gatepass/pkg/pagination"
)

// EventService implements catalog administration and public browsing.
type EventService struct {
	eventRepo repository.EventRepository
	logger    *slog.Logger
}

// NewEventService creates a new event service.
func NewEventService(eventRepo repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// CreateEventInput holds the parameters for creating an event.
type CreateEventInput struct {
	Name        string
	Description string
	Date        time.Time
	Venue       string
	Quantity    int
	Price       int64
	Category    string
	Image       string
}

// UpdateEventInput holds the parameters for updating an event. Nil fields
// keep their current value.
type UpdateEventInput struct {
	Name        *string
	Description *string
	Date        *time.Time
	Venue       *string
	Quantity    *int
	Price       *int64
	Category    *string
	Image       *string
}

// CreateEvent adds a new event to the catalog. Events are always open on
// creation with the full capacity available.
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	if input.Date.Before(time.Now().UTC()) {
		return nil, apperrors.InvalidInput("event date must be in the future")
	}

	now := time.Now().UTC()
	ev := &domain.Event{
		ID:                uuid.New().String(),
		Name:              input.Name,
		Description:       input.Description,
		Date:              input.Date,
		Venue:             input.Venue,
		Quantity:          input.Quantity,
		RemainingQuantity: input.Quantity,
		Price:             input.Price,
		Category:          input.Category,
		Image:             input.Image,
		IsOpen:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "event created",
		slog.String("event_id", ev.ID),
		slog.String("name", ev.Name),
	)

	return ev, nil
}

// UpdateEvent applies partial changes to an existing event. Raising the total
// capacity raises the remaining quantity by the same amount; lowering it caps
// remaining at the new capacity.
func (s *EventService) UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		ev.Name = *input.Name
	}
	if input.Description != nil {
		ev.Description = *input.Description
	}
	if input.Date != nil {
		ev.Date = *input.Date
	}
	if input.Venue != nil {
		ev.Venue = *input.Venue
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, apperrors.InvalidInput("quantity must be positive")
		}
		delta := *input.Quantity - ev.Quantity
		ev.Quantity = *input.Quantity
		ev.RemainingQuantity += delta
		if ev.RemainingQuantity < 0 {
			ev.RemainingQuantity = 0
		}
		if ev.RemainingQuantity > ev.Quantity {
			ev.RemainingQuantity = ev.Quantity
		}
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must be non-negative")
		}
		ev.Price = *input.Price
	}
	if input.Category != nil {
		ev.Category = *input.Category
	}
	if input.Image != nil {
		ev.Image = *input.Image
	}

	if err := s.eventRepo.Update(ctx, ev); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "event updated", slog.String("event_id", ev.ID))

	return ev, nil
}

// DeleteEvent removes an event from the catalog.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "event deleted", slog.String("event_id", id))
	return nil
}

// ToggleEventStatus flips whether the event accepts bookings.
func (s *EventService) ToggleEventStatus(ctx context.Context, id string) (*domain.Event, error) {
	ev, err := s.eventRepo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "event status toggled",
		slog.String("event_id", ev.ID),
		slog.Bool("is_open", ev.IsOpen),
	)

	return ev, nil
}

// GetEvent returns an event with its booking summaries.
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.EventDetail, error) {
	return s.eventRepo.GetDetail(ctx, id)
}

// ListEvents returns the catalog page, optionally filtered by category.
func (s *EventService) ListEvents(ctx context.Context, category string, p pagination.Params) ([]domain.EventDetail, pagination.Meta, error) {
	events, total, err := s.eventRepo.List(ctx, category, p)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if events == nil {
		events = []domain.EventDetail{}
	}

	return events, pagination.NewMeta(total, p), nil
}

// ListUpcomingEvents returns open future events. When viewerID is non-empty
// each event carries whether that viewer has booked it.
func (s *EventService) ListUpcomingEvents(ctx context.Context, viewerID, category string, p pagination.Params) ([]domain.UpcomingEvent, pagination.Meta, error) {
	events, total, err := s.eventRepo.ListUpcoming(ctx, viewerID, category, p)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if events == nil {
		events = []domain.UpcomingEvent{}
	}

	return events, pagination.NewMeta(total, p), nil
}

// ListCategories returns the distinct event categories sorted ascending.
func (s *EventService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.eventRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
