package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/event"
	"github.com/nrehal/gatepass/internal/repository"
	"github.com/nrehal/gatepass/pkg/database"
	apperrors "github.com/nrehal/gatepass/pkg/errors"
	"github.com/nrehal/gatepass/pkg/pagination"
)

// BookingService implements ticket booking with transactional inventory
// accounting. It holds the pool directly because booking writes and the
// event inventory adjustment must share one transaction.
type BookingService struct {
	pool        database.DBTX
	bookingRepo repository.BookingRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(
	pool database.DBTX,
	bookingRepo repository.BookingRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		pool:        pool,
		bookingRepo: bookingRepo,
		producer:    producer,
		logger:      logger,
	}
}

const lockEventQuery = `
	SELECT id, name, description, date, venue, quantity, remaining_quantity, price, category, COALESCE(image, ''), is_open, created_at, updated_at
	FROM events
	WHERE id = $1
	FOR UPDATE`

// CreateBooking books quantity tickets on the event for the user. The event
// row is locked for the duration of the transaction, so concurrent bookings
// serialize on the availability check and can never jointly oversell.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID string, quantity int) (*domain.BookingConfirmation, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ev, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if !ev.IsOpen {
		return nil, domain.ErrEventClosed
	}
	if quantity > domain.MaxTicketsPerBooking {
		return nil, domain.ErrQuantityLimit
	}
	if ev.RemainingQuantity < quantity {
		return nil, domain.ErrInsufficientInventory
	}

	// Earlier bookings by the same user for this event, newest first, read
	// under the lock so the confirmation totals are consistent.
	previous, err := s.previousBookings(ctx, tx, userID, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := domain.Booking{
		ID:          uuid.New().String(),
		UserID:      userID,
		EventID:     eventID,
		Quantity:    quantity,
		BookingDate: now,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, event_id, quantity, booking_date) VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.UserID, booking.EventID, booking.Quantity, booking.BookingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET remaining_quantity = remaining_quantity - $1, updated_at = $2 WHERE id = $3`,
		quantity, now, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement remaining quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}

	ev.RemainingQuantity -= quantity
	ev.UpdatedAt = now

	// Publish after commit (non-blocking on failure).
	if err := s.producer.PublishBookingCreated(ctx, &booking, ev); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.created event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.Int("quantity", quantity),
		slog.Int("remaining", ev.RemainingQuantity),
	)

	totalTickets := quantity
	for _, b := range previous {
		totalTickets += b.Quantity
	}

	return &domain.BookingConfirmation{
		CurrentBooking:   booking,
		Event:            *ev,
		PreviousBookings: previous,
		TotalBookings:    len(previous) + 1,
		TotalTickets:     totalTickets,
	}, nil
}

// CancelBooking deletes the booking and returns its tickets to the event's
// remaining quantity in one transaction. Only the booking's owner may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var booking domain.Booking
	err = tx.QueryRow(ctx,
		`SELECT id, user_id, event_id, quantity, booking_date FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	).Scan(&booking.ID, &booking.UserID, &booking.EventID, &booking.Quantity, &booking.BookingDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("lock booking: %w", err)
	}

	if booking.UserID != userID {
		return domain.ErrNotBookingOwner
	}

	// Lock the event row before adjusting inventory, mirroring the create path.
	if _, err := lockEvent(ctx, tx, booking.EventID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET remaining_quantity = remaining_quantity + $1, updated_at = $2 WHERE id = $3`,
		booking.Quantity, time.Now().UTC(), booking.EventID,
	)
	if err != nil {
		return fmt.Errorf("restore remaining quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancel transaction: %w", err)
	}

	if err := s.producer.PublishBookingCancelled(ctx, &booking); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking.cancelled event",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "booking cancelled",
		slog.String("booking_id", booking.ID),
		slog.String("event_id", booking.EventID),
		slog.String("user_id", userID),
	)

	return nil
}

// GetUserBookings returns the user's bookings grouped by event. Groups are
// ordered by their latest booking descending and pagination applies to
// groups, not individual bookings.
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, p pagination.Params) ([]domain.BookingGroup, pagination.Meta, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	// Rows arrive newest first, so groups form in latest-booking order and
	// each group's history is already newest first.
	var (
		groups  []domain.BookingGroup
		byEvent = make(map[string]int)
	)
	for _, ub := range bookings {
		idx, ok := byEvent[ub.Event.ID]
		if !ok {
			groups = append(groups, domain.BookingGroup{Event: ub.Event})
			idx = len(groups) - 1
			byEvent[ub.Event.ID] = idx
		}
		groups[idx].BookingHistory = append(groups[idx].BookingHistory, ub.Booking)
		groups[idx].TotalTickets += ub.Quantity
	}

	total := len(groups)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	page := groups[start:end]
	if page == nil {
		page = []domain.BookingGroup{}
	}

	return page, pagination.NewMeta(total, p), nil
}

// previousBookings reads the user's earlier bookings for the event inside the
// booking transaction, newest first.
func (s *BookingService) previousBookings(ctx context.Context, tx pgx.Tx, userID, eventID string) ([]domain.Booking, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, user_id, event_id, quantity, booking_date
		 FROM bookings
		 WHERE user_id = $1 AND event_id = $2
		 ORDER BY booking_date DESC`,
		userID, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("load previous bookings: %w", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.Quantity, &b.BookingDate); err != nil {
			return nil, fmt.Errorf("scan previous booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate previous bookings: %w", err)
	}

	return bookings, nil
}

// lockEvent loads the event row FOR UPDATE inside tx.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) (*domain.Event, error) {
	var e domain.Event
	err := tx.QueryRow(ctx, lockEventQuery, eventID).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Venue,
		&e.Quantity, &e.RemainingQuantity, &e.Price, &e.Category,
		&e.Image, &e.IsOpen, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	return &e, nil
}
