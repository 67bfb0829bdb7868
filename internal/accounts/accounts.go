// Package accounts stores users and verifies their credentials.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/ledger"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

type seedUser struct {
	models.User
	Password string
}

var demoUsers = []seedUser{
	{User: models.User{Username: "admin", FullName: "Admin User", Email: "admin@example.com", Phone: "1234567890", IsAdmin: true}, Password: "admin123"},
	{User: models.User{Username: "user", FullName: "Regular User", Email: "user@example.com", Phone: "0987654321"}, Password: "user123"},
}

// Repository handles user persistence
type Repository struct {
	db   ledger.DBTX
	cost int
}

// NewRepository creates a new repository. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewRepository(db ledger.DBTX, cost int) *Repository {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Repository{db: db, cost: cost}
}

// Register creates a user and returns it with its new id
func (r *Repository) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	if len(req.Username) < MinUsernameLength {
		return nil, apperr.Validation("username must be at least %d characters long", MinUsernameLength)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters long", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), r.cost)
	if err != nil {
		return nil, apperr.Storage("failed to hash password", err)
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, full_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, user.Username, string(hash), user.FullName, user.Email, user.Phone, user.Address).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.New(apperr.KindConflict, "username %s already exists", user.Username)
		}
		return nil, apperr.Storage("failed to create user", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair
func (r *Repository) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, full_name, email, phone, address, is_admin, created_at
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(
		&user.ID, &user.Username, &hash, &user.FullName, &user.Email,
		&user.Phone, &user.Address, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid username or password")
		}
		return nil, apperr.Storage("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid username or password")
	}
	return &user, nil
}

// GetProfile returns a user by id
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, full_name, email, phone, address, is_admin, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Username, &user.FullName, &user.Email,
		&user.Phone, &user.Address, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user %d not found", userID)
		}
		return nil, apperr.Storage("failed to get user", err)
	}
	return &user, nil
}

// UpdateProfile overwrites the editable profile fields
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, p models.Profile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET full_name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5
	`, p.FullName, p.Email, p.Phone, p.Address, userID)
	if err != nil {
		return apperr.Storage("failed to update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}

// SeedDemoUsers inserts the demo admin and regular accounts when they are missing.
func (r *Repository) SeedDemoUsers(ctx context.Context) error {
	for _, u := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), r.cost)
		if err != nil {
			return apperr.Storage("failed to hash password", err)
		}
		_, err = r.db.Exec(ctx, `
			INSERT INTO users (username, password_hash, full_name, email, phone, is_admin)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (username) DO NOTHING
		`, u.Username, string(hash), u.FullName, u.Email, u.Phone, u.IsAdmin)
		if err != nil {
			return apperr.Storage("failed to seed user "+u.Username, err)
		}
	}
	return nil
}
