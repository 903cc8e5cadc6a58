package postgres

import (
	"context"
	"fmt"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/pkg/database"
)

// BookingRepository implements repository.BookingRepository using PostgreSQL.
// It is read-only; booking writes happen inside the booking service's
// transactions together with the inventory adjustment.
type BookingRepository struct {
	pool database.DBTX
}

// NewBookingRepository creates a new PostgreSQL-backed booking repository.
func NewBookingRepository(pool database.DBTX) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// ListByUser returns all bookings for the user joined with their events,
// ordered by booking date descending.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.UserBooking, error) {
	query := `
		SELECT b.id, b.user_id, b.event_id, b.quantity, b.booking_date,
		       e.id, e.name, e.description, e.date, e.venue, e.quantity, e.remaining_quantity,
		       e.price, e.category, COALESCE(e.image, ''), e.is_open, e.created_at, e.updated_at
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.UserBooking
	for rows.Next() {
		var ub domain.UserBooking
		err := rows.Scan(
			&ub.ID, &ub.UserID, &ub.EventID, &ub.Quantity, &ub.BookingDate,
			&ub.Event.ID, &ub.Event.Name, &ub.Event.Description, &ub.Event.Date, &ub.Event.Venue,
			&ub.Event.Quantity, &ub.Event.RemainingQuantity, &ub.Event.Price, &ub.Event.Category,
			&ub.Event.Image, &ub.Event.IsOpen, &ub.Event.CreatedAt, &ub.Event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user booking: %w", err)
		}
		bookings = append(bookings, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user bookings: %w", err)
	}

	return bookings, nil
}
