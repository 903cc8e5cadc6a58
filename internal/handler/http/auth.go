package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/service"
	"github.com/nrehal/gatepass/pkg/validator"
)

// AuthService is the slice of the auth service the HTTP layer depends on.
type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	VerifyAccessToken(ctx context.Context, accessToken string) (*domain.PublicUser, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AuthHandler handles signup, login, logout and token refresh. Tokens are
// carried exclusively in cookies; response bodies never include them.
type AuthHandler struct {
	service AuthService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// SignupRequest is the JSON request body for user signup.
type SignupRequest struct {
	UserName  string `json:"userName" validate:"required,min=3,max=50"`
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Age       int    `json:"age" validate:"required,gte=13"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignupRequest
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

	input := service.SignupInput{
		UserName:  req.UserName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Age:       req.Age,
	}

	user, pair, err := h.service.Signup(r.Context(), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	setAuthCookies(w, h.cookies, pair)
	writeJSON(w, http.StatusCreated, response{Data: user.Public()})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
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

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	setAuthCookies(w, h.cookies, pair)
	writeJSON(w, http.StatusOK, response{Data: user.Public()})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w, h.cookies)
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "logged out"}})
}

// Refresh handles POST /api/auth/refresh. A missing or invalid refresh cookie
// clears both cookies so the client falls back to a clean logged-out state.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(refreshTokenCookie)
	if err != nil || c.Value == "" {
		clearAuthCookies(w, h.cookies)
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "INVALID_TOKEN", Message: "refresh token missing"},
		})
		return
	}

	pair, err := h.service.Refresh(r.Context(), c.Value)
	if err != nil {
		clearAuthCookies(w, h.cookies)
		writeAppError(w, r, err)
		return
	}

	setAuthCookies(w, h.cookies, pair)
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "refreshed"}})
}
