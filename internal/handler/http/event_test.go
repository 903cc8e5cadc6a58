package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/service"
	"github.com/nrehal/gatepass/pkg/pagination"
)

func sampleCatalogEvent() domain.Event {
	now := time.Now().UTC()
	return domain.Event{
		ID:                "660e8400-e29b-41d4-a716-446655440002",
		Name:              "Go Conference",
		Description:       "Two days of talks",
		Date:              now.Add(30 * 24 * time.Hour),
		Venue:             "City Hall",
		Quantity:          100,
		RemainingQuantity: 80,
		Price:             4999,
		Category:          "conference",
		IsOpen:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// eventRouter registers the handlers with URL params the way the real router
// does, so chi.URLParam resolves in tests.
func eventRouter(handler *EventHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/upcoming", handler.ListUpcoming)
		r.Get("/", handler.List)
		r.Get("/categories/all", handler.Categories)
		r.Get("/{id}", handler.Get)
		r.Post("/", handler.Create)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
		r.Put("/{id}/toggle-status", handler.ToggleStatus)
	})
	return r
}

func TestListEvents_ReturnsPaginationEnvelope(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	detail := domain.EventDetail{Event: sampleCatalogEvent(), Bookings: []domain.EventBooking{}}
	meta := pagination.Meta{Total: 1, Page: 1, Limit: 10, TotalPages: 1}
	eventSvc.On("ListEvents", mock.Anything, "conference", pagination.Params{Page: 1, Limit: 10, Offset: 0}).
		Return([]domain.EventDetail{detail}, meta, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events/?category=conference&page=1&limit=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestListUpcoming_AnonymousViewer(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	upcoming := domain.UpcomingEvent{Event: sampleCatalogEvent(), IsBooked: false}
	meta := pagination.Meta{Total: 1, Page: 1, Limit: 20, TotalPages: 1}
	// Anonymous requests pass an empty viewer id.
	eventSvc.On("ListUpcomingEvents", mock.Anything, "", "", mock.AnythingOfType("pagination.Params")).
		Return([]domain.UpcomingEvent{upcoming}, meta, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events/upcoming", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	eventSvc.AssertExpectations(t)
}

func TestListUpcoming_AuthenticatedViewer(t *testing.T) {
	eventSvc := new(mockEventService)
	handler := NewEventHandler(eventSvc, handlerTestLogger())

	upcoming := domain.UpcomingEvent{Event: sampleCatalogEvent(), IsBooked: true}
	meta := pagination.Meta{Total: 1, Page: 1, Limit: 20, TotalPages: 1}
	eventSvc.On("ListUpcomingEvents", mock.Anything, samplePublicUser().ID, "", mock.AnythingOfType("pagination.Params")).
		Return([]domain.UpcomingEvent{upcoming}, meta, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events/upcoming", nil)
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.ListUpcoming(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isBooked":true`)
}

func TestListCategories(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	eventSvc.On("ListCategories", mock.Anything).Return([]string{"concert", "conference"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events/categories/all", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "concert")
	assert.Contains(t, rec.Body.String(), "conference")
}

func TestGetEvent_NotFound(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	eventSvc.On("GetEvent", mock.Anything, "missing-id").Return(nil, domain.ErrEventNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/events/missing-id", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EVENT_NOT_FOUND", resp.Error.Code)
}

func TestCreateEvent_Success(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	created := sampleCatalogEvent()
	eventSvc.On("CreateEvent", mock.Anything, mock.AnythingOfType("service.CreateEventInput")).
		Return(&created, nil)

	body, _ := json.Marshal(CreateEventRequest{
		Name:        "Go Conference",
		Description: "Two days of talks",
		Date:        time.Now().UTC().Add(30 * 24 * time.Hour),
		Venue:       "City Hall",
		Quantity:    100,
		Price:       4999,
		Category:    "conference",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/events/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
}

func TestCreateEvent_ValidationFailure(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	body, _ := json.Marshal(CreateEventRequest{
		Name:     "Go Conference",
		Quantity: 0,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/events/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	eventSvc.AssertNotCalled(t, "CreateEvent")
}

func TestUpdateEvent_PartialBody(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	updated := sampleCatalogEvent()
	updated.Name = "Go Conference 2027"

	eventSvc.On("UpdateEvent", mock.Anything, updated.ID, mock.MatchedBy(func(input service.UpdateEventInput) bool {
		return input.Name != nil && *input.Name == "Go Conference 2027" && input.Quantity == nil
	})).Return(&updated, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/events/"+updated.ID,
		bytes.NewReader([]byte(`{"name":"Go Conference 2027"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	eventSvc.AssertExpectations(t)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	eventSvc.On("DeleteEvent", mock.Anything, "missing-id").Return(domain.ErrEventNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/events/missing-id", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleEventStatus(t *testing.T) {
	eventSvc := new(mockEventService)
	router := eventRouter(NewEventHandler(eventSvc, handlerTestLogger()))

	toggled := sampleCatalogEvent()
	toggled.IsOpen = false
	eventSvc.On("ToggleEventStatus", mock.Anything, toggled.ID).Return(&toggled, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/events/"+toggled.ID+"/toggle-status", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isOpen":false`)
}
