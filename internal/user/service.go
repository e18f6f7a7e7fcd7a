package user

import (
	"context"
	"fmt"
	"log/slog"

	"inspections-server/internal/shared/errors"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing user service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetUserByID(ctx context.Context, id int) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// FindOrCreateUserByOAuth resolves an OAuth identity to a local account,
// creating one on first login.
func (s *Service) FindOrCreateUserByOAuth(ctx context.Context, provider, providerUserID, email, displayName string, avatarURL *string) (*User, error) {
	logger := s.logger.With(
		"component", "user_service",
		"operation", "find_or_create_oauth",
		"provider", provider,
		"email", email,
	)

	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil && errors.GetType(err) != errors.ErrorTypeNotFound {
		logger.Error("Database error checking for user by email", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if u != nil {
		logger.Debug("Found existing user by email", "user_id", u.ID)
		return u, nil
	}

	logger.Info("No existing user found, creating new user from OAuth identity")

	u, err = s.repo.CreateUser(ctx, email, displayName, avatarURL)
	if err != nil {
		logger.Error("Failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", "user_id", u.ID, "provider", provider)
	return u, nil
}
