package domain

import (
	"net/http"

	apperrors "github.com/nrehal/gatepass/pkg/errors"
)

// Domain error variants returned by the services. Handlers map them to HTTP
// responses through the AppError status, so messages here are client-facing.
var (
	// ErrDuplicateUser covers both email and user name collisions at signup.
	ErrDuplicateUser = apperrors.New("USER_EXISTS", "user already exists", http.StatusBadRequest, apperrors.ErrAlreadyExists)

	// ErrInvalidCredentials is returned for unknown email AND wrong password,
	// with an identical message so the two cases cannot be distinguished.
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized, apperrors.ErrUnauthorized)

	ErrInvalidToken = apperrors.New("INVALID_TOKEN", "invalid or expired token", http.StatusUnauthorized, apperrors.ErrUnauthorized)

	// ErrRoleNotConfigured means the seeded USER role is missing, which is a
	// deployment fault rather than a client error.
	ErrRoleNotConfigured = apperrors.New("ROLE_NOT_CONFIGURED", "default role not configured", http.StatusInternalServerError, apperrors.ErrInternal)

	ErrUserNotFound  = apperrors.New("USER_NOT_FOUND", "user not found", http.StatusNotFound, apperrors.ErrNotFound)
	ErrUsernameTaken = apperrors.New("USERNAME_TAKEN", "user name is already taken", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrInvalidCurrentPassword = apperrors.New("INVALID_CURRENT_PASSWORD", "current password is incorrect", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrEventNotFound = apperrors.New("EVENT_NOT_FOUND", "event not found", http.StatusNotFound, apperrors.ErrNotFound)
	ErrEventClosed   = apperrors.New("EVENT_CLOSED", "event is not open for booking", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrQuantityLimit         = apperrors.New("QUANTITY_LIMIT", "cannot book more than 5 tickets at once", http.StatusBadRequest, apperrors.ErrInvalidInput)
	ErrInsufficientInventory = apperrors.New("INSUFFICIENT_INVENTORY", "not enough tickets available", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrBookingNotFound = apperrors.New("BOOKING_NOT_FOUND", "booking not found", http.StatusNotFound, apperrors.ErrNotFound)
	ErrNotBookingOwner = apperrors.New("NOT_BOOKING_OWNER", "you can only cancel your own bookings", http.StatusForbidden, apperrors.ErrForbidden)
)
