package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nrehal/gatepass/internal/domain"
	"github.com/nrehal/gatepass/pkg/database"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateWithDefaultRole inserts the user and assigns the seeded USER role in
// a single transaction, so a failed role assignment leaves no user row.
func (r *UserRepository) CreateWithDefaultRole(ctx context.Context, u *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin signup tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roleID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM roles WHERE role_name = $1`, domain.RoleUser,
	).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoleNotConfigured
		}
		return fmt.Errorf("look up default role: %w", err)
	}

	query := `
		INSERT INTO users (id, user_name, first_name, last_name, email, password_hash, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, query,
		u.ID,
		u.UserName,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.Age,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, u.ID, roleID,
	)
	if err != nil {
		return fmt.Errorf("assign default role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit signup tx: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, user_name, first_name, last_name, email, password_hash, age, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, user_name, first_name, last_name, email, password_hash, age, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.scanUser(ctx, query, email)
}

// IsUserNameTaken reports whether userName belongs to a user other than excludeUserID.
func (r *UserRepository) IsUserNameTaken(ctx context.Context, userName, excludeUserID string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_name = $1 AND id <> $2)`,
		userName, excludeUserID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check user name: %w", err)
	}
	return taken, nil
}

// HasRole reports whether the user holds the named role.
func (r *UserRepository) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.role_name = $2
		)`

	var has bool
	if err := r.pool.QueryRow(ctx, query, userID, roleName).Scan(&has); err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return has, nil
}

// UpdateProfile updates the mutable profile fields and returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, userName, firstName, lastName string) (*domain.User, error) {
	query := `
		UPDATE users
		SET user_name = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, user_name, first_name, last_name, email, password_hash, age, created_at, updated_at`

	var u domain.User
	err := r.pool.QueryRow(ctx, query,
		userName, firstName, lastName, time.Now().UTC(), userID,
	).Scan(
		&u.ID,
		&u.UserName,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Age,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return &u, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.UserName,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Age,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
