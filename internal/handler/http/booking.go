package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/pkg/pagination"
	"github.com/nrehal/gatepass/pkg/validator"
)

// BookingService is the slice of the booking service the HTTP layer depends on.
type BookingService interface {
	CreateBooking(ctx context.Context, userID, eventID string, quantity int) (*domain.BookingConfirmation, error)
	CancelBooking(ctx context.Context, bookingID, userID string) error
	GetUserBookings(ctx context.Context, userID string, p pagination.Params) ([]domain.BookingGroup, pagination.Meta, error)
}

// BookingHandler handles ticket booking endpoints.
type BookingHandler struct {
	service BookingService
	logger  *slog.Logger
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(svc BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: svc, logger: logger}
}

// CreateBookingRequest is the JSON request body for booking tickets.
type CreateBookingRequest struct {
	EventID  string `json:"eventId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	confirmation, err := h.service.CreateBooking(r.Context(), user.ID, req.EventID, req.Quantity)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: confirmation})
}

// MyBookings handles GET /api/bookings/my-bookings
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	groups, meta, err := h.service.GetUserBookings(r.Context(), user.ID, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: groups, Pagination: &meta})
}

// Cancel handles DELETE /api/bookings/{id}
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	bookingID := chi.URLParam(r, "id")

	if err := h.service.CancelBooking(r.Context(), bookingID, user.ID); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": bookingID, "status": "cancelled"}})
}
