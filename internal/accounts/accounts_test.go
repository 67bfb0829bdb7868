package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var createdAt = time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, bcrypt.MinCost), mock
}

func credentialRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "password_hash", "full_name", "email", "phone", "address", "is_admin", "created_at",
	})
}

func userRow(hash string) *pgxmock.Rows {
	return credentialRows().
		AddRow(int64(7), "asha", hash, "Asha Rao", "asha@example.com", "9999999999", "Pune", false, createdAt)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing username", models.RegisterRequest{Password: "secret1"}},
		{"missing password", models.RegisterRequest{Username: "asha"}},
		{"short username", models.RegisterRequest{Username: "as", Password: "secret1"}},
		{"short password", models.RegisterRequest{Username: "asha", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			_, err := repo.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_Success(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("asha", pgxmock.AnyArg(), "Asha Rao", "asha@example.com", "9999999999", "Pune").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))

	user, err := repo.Register(context.Background(), models.RegisterRequest{
		Username: " asha ", Password: "secret1", FullName: "Asha Rao",
		Email: "asha@example.com", Phone: "9999999999", Address: "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "asha", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("asha", pgxmock.AnyArg(), "", "", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Register(context.Background(), models.RegisterRequest{Username: "asha", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery("FROM users").WithArgs("asha").WillReturnRows(userRow(string(hash)))

		user, err := repo.Authenticate(context.Background(), "asha", "secret1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "Asha Rao", user.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery("FROM users").WithArgs("asha").WillReturnRows(userRow(string(hash)))

		_, err := repo.Authenticate(context.Background(), "asha", "wrong-password")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery("FROM users").WithArgs("ghost").WillReturnRows(credentialRows())

		_, err := repo.Authenticate(context.Background(), "ghost", "secret1")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateProfile(t *testing.T) {
	repo, mock := newTestRepository(t)
	profile := models.Profile{FullName: "Asha R.", Email: "a@example.com", Phone: "1", Address: "Goa"}

	mock.ExpectExec("UPDATE users").
		WithArgs("Asha R.", "a@example.com", "1", "Goa", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users").
		WithArgs("Asha R.", "a@example.com", "1", "Goa", int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdateProfile(context.Background(), 7, profile))
	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), 404, profile), apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)
	mock.ExpectQuery("FROM users").WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "username", "full_name", "email", "phone", "address", "is_admin", "created_at",
		}))

	_, err := repo.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDemoUsers(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("admin", pgxmock.AnyArg(), "Admin User", "admin@example.com", "1234567890", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("user", pgxmock.AnyArg(), "Regular User", "user@example.com", "0987654321", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, repo.SeedDemoUsers(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
