package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/service"
)

// authedRequest injects an authenticated user directly, bypassing the cookie
// middleware which has its own tests.
func authedRequest(req *http.Request, user *domain.PublicUser) *http.Request {
	ctx := context.WithValue(req.Context(), userContextKey, user)
	return req.WithContext(ctx)
}

func TestUpdateProfile_Success(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	updated := samplePublicUser()
	updated.UserName = "janed"

	userSvc.On("UpdateProfile", mock.Anything, samplePublicUser().ID, service.UpdateProfileInput{
		UserName: "janed",
	}).Return(updated, nil)

	body, _ := json.Marshal(UpdateProfileRequest{UserName: "janed"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	userSvc.On("UpdateProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrUsernameTaken)

	body, _ := json.Marshal(UpdateProfileRequest{UserName: "taken"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "USERNAME_TAKEN", resp.Error.Code)
}

func TestUpdateProfile_Unauthenticated(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	body, _ := json.Marshal(UpdateProfileRequest{UserName: "janed"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userSvc.AssertNotCalled(t, "UpdateProfile")
}

func TestChangePassword_Success(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	userSvc.On("ChangePassword", mock.Anything, samplePublicUser().ID, "old-password", "new-password-1").
		Return(nil)

	body, _ := json.Marshal(ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-1",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/users/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	userSvc.AssertExpectations(t)
}

func TestChangePassword_ConfirmationMismatch(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	body, _ := json.Marshal(ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password-1",
		ConfirmPassword: "something-else",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/users/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	// Rejected before the service is involved.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	userSvc.AssertNotCalled(t, "ChangePassword")
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	userSvc := new(mockUserService)
	handler := NewUserHandler(userSvc, handlerTestLogger())

	userSvc.On("ChangePassword", mock.Anything, mock.Anything, "wrong", "new-password-1").
		Return(domain.ErrInvalidCurrentPassword)

	body, _ := json.Marshal(ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-1",
		ConfirmPassword: "new-password-1",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/users/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, samplePublicUser())
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CURRENT_PASSWORD", resp.Error.Code)
}
