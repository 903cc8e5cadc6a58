package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrehal/gatepass/internal/domain"
	apperrors "github.com/nrehal/gatepass/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "u-1234",
		UserName:     "alice",
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        "alice@example.com",
		PasswordHash: "hash-abc",
		Age:          30,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userColumns() []string {
	return []string{
		"id", "user_name", "first_name", "last_name",
		"email", "password_hash", "age", "created_at", "updated_at",
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns()).AddRow(
		u.ID, u.UserName, u.FirstName, u.LastName,
		u.Email, u.PasswordHash, u.Age, u.CreatedAt, u.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// CreateWithDefaultRole
// ---------------------------------------------------------------------------

func TestUserRepository_CreateWithDefaultRole_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM roles WHERE role_name").
		WithArgs(domain.RoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("role-user"))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.UserName, u.FirstName, u.LastName,
			u.Email, u.PasswordHash, u.Age, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(u.ID, "role-user").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.CreateWithDefaultRole(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithDefaultRole_Duplicate(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM roles WHERE role_name").
		WithArgs(domain.RoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("role-user"))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.UserName, u.FirstName, u.LastName,
			u.Email, u.PasswordHash, u.Age, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))
	mock.ExpectRollback()

	err := repo.CreateWithDefaultRole(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithDefaultRole_MissingRole(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM roles WHERE role_name").
		WithArgs(domain.RoleUser).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateWithDefaultRole(context.Background(), sampleUser())
	assert.ErrorIs(t, err, domain.ErrRoleNotConfigured)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users\\s+WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users\\s+WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_HasRole(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u-1234", domain.RoleAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasRole(context.Background(), "u-1234", domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_IsUserNameTaken(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice", "u-other").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.IsUserNameTaken(context.Background(), "alice", "u-other")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

func TestUserRepository_UpdateProfile_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.UserName = "alice2"

	mock.ExpectQuery("UPDATE users").
		WithArgs("alice2", u.FirstName, u.LastName, pgxmock.AnyArg(), u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.UpdateProfile(context.Background(), u.ID, "alice2", u.FirstName, u.LastName)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_UserNameCollision(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE users").
		WithArgs("taken", "Alice", "Smith", pgxmock.AnyArg(), "u-1234").
		WillReturnError(errors.New("ERROR: duplicate key value (SQLSTATE 23505)"))

	_, err := repo.UpdateProfile(context.Background(), "u-1234", "taken", "Alice", "Smith")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("new-hash", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "missing", "new-hash")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
