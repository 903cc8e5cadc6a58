package repository

import (
	"context"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// CreateWithDefaultRole inserts a new user and assigns the default USER
	// role in a single transaction. The created user's ID is set on the
	// passed struct. Returns domain.ErrDuplicateUser on email or user name
	// collision and domain.ErrRoleNotConfigured when the USER role row is
	// missing.
	CreateWithDefaultRole(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// IsUserNameTaken reports whether userName belongs to a user other than
	// excludeUserID.
	IsUserNameTaken(ctx context.Context, userName, excludeUserID string) (bool, error)

	// HasRole reports whether the user holds the named role.
	HasRole(ctx context.Context, userID, roleName string) (bool, error)

	// UpdateProfile updates the mutable profile fields and returns the
	// updated user.
	UpdateProfile(ctx context.Context, userID, userName, firstName, lastName string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// EventRepository defines the interface for event catalog persistence.
type EventRepository interface {
	// Create inserts a new event into the catalog.
	Create(ctx context.Context, event *domain.Event) error

	// GetByID retrieves an event by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// GetDetail retrieves an event with its booking summaries.
	GetDetail(ctx context.Context, id string) (*domain.EventDetail, error)

	// Update modifies an existing event.
	Update(ctx context.Context, event *domain.Event) error

	// Delete removes an event by its identifier.
	Delete(ctx context.Context, id string) error

	// ToggleStatus flips the is_open flag and returns the updated event.
	ToggleStatus(ctx context.Context, id string) (*domain.Event, error)

	// List returns events ordered by date ascending, optionally filtered by
	// category, with their booking summaries.
	List(ctx context.Context, category string, p pagination.Params) ([]domain.EventDetail, int, error)

	// ListUpcoming returns open future events ordered by date ascending.
	// When viewerID is non-empty each event is annotated with whether that
	// viewer has booked it.
	ListUpcoming(ctx context.Context, viewerID, category string, p pagination.Params) ([]domain.UpcomingEvent, int, error)

	// Categories returns the distinct event categories sorted ascending.
	Categories(ctx context.Context) ([]string, error)
}

// BookingRepository defines read-only booking lookups. Booking writes go
// through the booking service's own transactions because they must be atomic
// with the event inventory adjustment.
type BookingRepository interface {
	// ListByUser returns all bookings for the user joined with their events,
	// ordered by booking date descending.
	ListByUser(ctx context.Context, userID string) ([]domain.UserBooking, error)
}
