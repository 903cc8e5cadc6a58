package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/pkg/database"
	"github.com/nrehal/gatepass/pkg/pagination"
)

const eventColumns = `id, name, description, date, venue, quantity, remaining_quantity, price, category, COALESCE(image, ''), is_open, created_at, updated_at`

// EventRepository implements repository.EventRepository using PostgreSQL.
type EventRepository struct {
	pool database.DBTX
}

// NewEventRepository creates a new PostgreSQL-backed event repository.
func NewEventRepository(pool database.DBTX) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create inserts a new event into the catalog.
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, name, description, date, venue, quantity, remaining_quantity, price, category, image, is_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Name,
		e.Description,
		e.Date,
		e.Venue,
		e.Quantity,
		e.RemainingQuantity,
		e.Price,
		e.Category,
		e.Image,
		e.IsOpen,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

// GetDetail retrieves an event with its booking summaries.
func (r *EventRepository) GetDetail(ctx context.Context, id string) (*domain.EventDetail, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := r.bookingSummaries(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	detail := &domain.EventDetail{Event: *event, Bookings: bookings[id]}
	if detail.Bookings == nil {
		detail.Bookings = []domain.EventBooking{}
	}
	return detail, nil
}

// Update modifies an existing event.
func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	e.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE events
		SET name = $1, description = $2, date = $3, venue = $4, quantity = $5,
		    remaining_quantity = $6, price = $7, category = $8, image = NULLIF($9, ''), updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		e.Name,
		e.Description,
		e.Date,
		e.Venue,
		e.Quantity,
		e.RemainingQuantity,
		e.Price,
		e.Category,
		e.Image,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// Delete removes an event by its ID.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// ToggleStatus flips the is_open flag and returns the updated event.
func (r *EventRepository) ToggleStatus(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		UPDATE events
		SET is_open = NOT is_open, updated_at = $1
		WHERE id = $2
		RETURNING ` + eventColumns

	row := r.pool.QueryRow(ctx, query, time.Now().UTC(), id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("toggle event status: %w", err)
	}
	return e, nil
}

// List returns events ordered by date ascending, optionally filtered by
// category, with their booking summaries.
func (r *EventRepository) List(ctx context.Context, category string, p pagination.Params) ([]domain.EventDetail, int, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE ($1 = '' OR category = $1)
		ORDER BY date ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, category, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var (
		details  []domain.EventDetail
		eventIDs []string
	)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event row: %w", err)
		}
		details = append(details, domain.EventDetail{Event: *e, Bookings: []domain.EventBooking{}})
		eventIDs = append(eventIDs, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE ($1 = '' OR category = $1)`, category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	if len(eventIDs) > 0 {
		summaries, err := r.bookingSummaries(ctx, eventIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range details {
			if s, ok := summaries[details[i].ID]; ok {
				details[i].Bookings = s
			}
		}
	}

	return details, total, nil
}

// ListUpcoming returns open future events ordered by date ascending, each
// annotated with whether viewerID has booked it.
func (r *EventRepository) ListUpcoming(ctx context.Context, viewerID, category string, p pagination.Params) ([]domain.UpcomingEvent, int, error) {
	query := `
		SELECT ` + eventColumns + `,
		       ($1 <> '' AND EXISTS(SELECT 1 FROM bookings b WHERE b.event_id = events.id AND b.user_id::text = $1)) AS is_booked
		FROM events
		WHERE date > NOW() AND is_open = TRUE AND ($2 = '' OR category = $2)
		ORDER BY date ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, viewerID, category, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []domain.UpcomingEvent
	for rows.Next() {
		var (
			e        domain.Event
			isBooked bool
		)
		err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Date, &e.Venue,
			&e.Quantity, &e.RemainingQuantity, &e.Price, &e.Category,
			&e.Image, &e.IsOpen, &e.CreatedAt, &e.UpdatedAt,
			&isBooked,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan upcoming event: %w", err)
		}
		events = append(events, domain.UpcomingEvent{Event: e, IsBooked: isBooked})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate upcoming events: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE date > NOW() AND is_open = TRUE AND ($1 = '' OR category = $1)`,
		category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count upcoming events: %w", err)
	}

	return events, total, nil
}

// Categories returns the distinct event categories sorted ascending.
func (r *EventRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM events ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// bookingSummaries loads booking summaries with booker identity for the given
// events, keyed by event ID.
func (r *EventRepository) bookingSummaries(ctx context.Context, eventIDs []string) (map[string][]domain.EventBooking, error) {
	query := `
		SELECT b.event_id, b.id, b.quantity, b.booking_date,
		       u.id, u.user_name, u.first_name, u.last_name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.event_id = ANY($1)
		ORDER BY b.booking_date DESC`

	rows, err := r.pool.Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("load booking summaries: %w", err)
	}
	defer rows.Close()

	summaries := make(map[string][]domain.EventBooking)
	for rows.Next() {
		var (
			eventID string
			b       domain.EventBooking
		)
		err := rows.Scan(
			&eventID, &b.ID, &b.Quantity, &b.BookingDate,
			&b.User.ID, &b.User.UserName, &b.User.FirstName, &b.User.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking summary: %w", err)
		}
		summaries[eventID] = append(summaries[eventID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking summaries: %w", err)
	}

	return summaries, nil
}

// scanEvent scans a single event row in eventColumns order.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.Venue,
		&e.Quantity,
		&e.RemainingQuantity,
		&e.Price,
		&e.Category,
		&e.Image,
		&e.IsOpen,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
