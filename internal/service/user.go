package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/internal/repository"
	apperrors "github.com/nrehal/gatepass/pkg/errors"
)

// UserService implements profile and password management.
type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UpdateProfileInput holds the parameters for updating a user's profile.
// Empty fields keep their current value.
type UpdateProfileInput struct {
	UserName  string
	FirstName string
	LastName  string
}

// UpdateProfile applies the given profile changes and returns the public view
// of the updated user. Choosing a user name held by a different user returns
// domain.ErrUsernameTaken.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.PublicUser, error) {
	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	userName := current.UserName
	if input.UserName != "" {
		userName = input.UserName
	}
	firstName := current.FirstName
	if input.FirstName != "" {
		firstName = input.FirstName
	}
	lastName := current.LastName
	if input.LastName != "" {
		lastName = input.LastName
	}

	if userName != current.UserName {
		taken, err := s.userRepo.IsUserNameTaken(ctx, userName, userID)
		if err != nil {
			return nil, fmt.Errorf("check user name availability: %w", err)
		}
		if taken {
			return nil, domain.ErrUsernameTaken
		}
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userID, userName, firstName, lastName)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))

	pub := updated.Public()
	return &pub, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. A wrong current password returns domain.ErrInvalidCurrentPassword.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.ErrInvalidCurrentPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID))

	return nil
}
