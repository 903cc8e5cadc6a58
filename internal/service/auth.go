package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrehal/gatepass/internal/auth"
	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/event"
	"github.com/nrehal/gatepass/internal/repository"
	apperrors "github.com/nrehal/gatepass/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements signup, login, and token lifecycle logic.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	logger     *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
	}
}

// SignupInput holds the parameters for registering a new user.
type SignupInput struct {
	UserName  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Age       int
}

// Signup registers a new user with the default USER role and issues a token
// pair. Email and user name collisions both map to domain.ErrDuplicateUser.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.UserName == "" {
		return nil, nil, apperrors.InvalidInput("user name is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		UserName:     input.UserName,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Age:          input.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// User row and role assignment are written in one transaction, so a
	// duplicate or missing-role failure leaves nothing behind.
	if err := s.userRepo.CreateWithDefaultRole(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password. Unknown email and
// wrong password return the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return user, tokens, nil
}

// Refresh validates a refresh token and reissues a full token pair for the
// embedded user. There is no server-side rotation state.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	tokens, err := s.generateTokenPair(userID)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.DebugContext(ctx, "token pair refreshed", slog.String("user_id", userID))

	return tokens, nil
}

// VerifyAccessToken validates an access token and resolves the user it was
// issued for.
func (s *AuthService) VerifyAccessToken(ctx context.Context, accessToken string) (*domain.PublicUser, error) {
	userID, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	pub := user.Public()
	return &pub, nil
}

// IsAdmin reports whether the user holds the ADMIN role.
func (s *AuthService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	isAdmin, err := s.userRepo.HasRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("check admin role: %w", err)
	}
	return isAdmin, nil
}

func (s *AuthService) generateTokenPair(userID string) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
