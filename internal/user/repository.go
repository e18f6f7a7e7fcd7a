package user

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"inspections-server/internal/shared/database"
	"inspections-server/internal/shared/errors"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing user repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	logger := r.logger.With("component", "user_repository", "operation", "get_by_id", "user_id", id)

	query := `
		SELECT id, email, display_name, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("user %d not found", id)
		}
		logger.Error("Failed to get user", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("user with email %s not found", email)
		}
		r.logger.Error("Failed to find user by email", "error", err)
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, email, displayName string, avatarURL *string) (*User, error) {
	logger := r.logger.With("component", "user_repository", "operation", "create", "email", email)
	logger.Debug("Creating user")

	query := `
		INSERT INTO users (email, display_name, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, avatar_url, created_at, updated_at
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, email, displayName, avatarURL).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Debug("User created successfully", "user_id", u.ID)
	return &u, nil
}
