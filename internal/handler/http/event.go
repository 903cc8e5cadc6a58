package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/service"
	"github.com/nrehal/gatepass/pkg/pagination"
	"github.com/nrehal/gatepass/pkg/validator"
)

// EventService is the slice of the event service the HTTP layer depends on.
type EventService interface {
	CreateEvent(ctx context.Context, input service.CreateEventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id string, input service.UpdateEventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ToggleEventStatus(ctx context.Context, id string) (*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.EventDetail, error)
	ListEvents(ctx context.Context, category string, p pagination.Params) ([]domain.EventDetail, pagination.Meta, error)
	ListUpcomingEvents(ctx context.Context, viewerID, category string, p pagination.Params) ([]domain.UpcomingEvent, pagination.Meta, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// EventHandler handles catalog browsing and event administration.
type EventHandler struct {
	service EventService
	logger  *slog.Logger
}

// NewEventHandler creates a new event HTTP handler.
func NewEventHandler(svc EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: svc, logger: logger}
}

// CreateEventRequest is the JSON request body for event creation. Price is in
// the smallest currency unit (cents).
type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Venue       string    `json:"venue" validate:"required,min=1,max=200"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
	Price       int64     `json:"price" validate:"gte=0"`
	Category    string    `json:"category" validate:"required,min=1,max=100"`
	Image       string    `json:"image" validate:"omitempty,url"`
}

// UpdateEventRequest is the JSON request body for event updates. Absent fields
// keep their current value.
type UpdateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Venue       *string    `json:"venue" validate:"omitempty,min=1,max=200"`
	Quantity    *int       `json:"quantity" validate:"omitempty,gt=0"`
	Price       *int64     `json:"price" validate:"omitempty,gte=0"`
	Category    *string    `json:"category" validate:"omitempty,min=1,max=100"`
	Image       *string    `json:"image" validate:"omitempty,url"`
}

// ListUpcoming handles GET /api/events/upcoming. Anonymous requests see the
// same events; isBooked is only personalized when a viewer is resolved.
func (h *EventHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	viewerID := ""
	if user := UserFromContext(r.Context()); user != nil {
		viewerID = user.ID
	}

	events, meta, err := h.service.ListUpcomingEvents(r.Context(), viewerID, r.URL.Query().Get("category"), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: events, Pagination: &meta})
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, meta, err := h.service.ListEvents(r.Context(), r.URL.Query().Get("category"), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: events, Pagination: &meta})
}

// Categories handles GET /api/events/categories/all
func (h *EventHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: categories})
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: detail})
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateEventRequest
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

	input := service.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Venue:       req.Venue,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
	}

	event, err := h.service.CreateEvent(r.Context(), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: event})
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateEventRequest
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

	input := service.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Venue:       req.Venue,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
	}

	event, err := h.service.UpdateEvent(r.Context(), id, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: event})
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// ToggleStatus handles PUT /api/events/{id}/toggle-status
func (h *EventHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.service.ToggleEventStatus(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: event})
}
