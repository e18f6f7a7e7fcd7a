package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"
)

func (s *Store) GetLevelsByProjectID(ctx context.Context, ownerID int, projectID string) ([]inspection.Level, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_levels_by_project", "project_id", projectID)

	query := `
		SELECT id, name, project_id, user_id, created_at
		FROM levels
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to query levels", "error", err)
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var levels []inspection.Level
	for rows.Next() {
		var l inspection.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.ProjectID, &l.UserID, &l.CreatedAt); err != nil {
			logger.Error("Failed to scan level row", "error", err)
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, l)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating levels: %w", err)
	}

	return levels, nil
}

// CreateLevel inserts via a SELECT against the parent row, so a project that
// is missing, foreign, or owned by someone else yields no row instead of a
// stray insert.
func (s *Store) CreateLevel(ctx context.Context, ownerID int, projectID string, in inspection.LevelInput) (*inspection.Level, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "create_level", "project_id", projectID)
	logger.Debug("Creating level")

	query := `
		INSERT INTO levels (name, project_id, user_id)
		SELECT $1, p.id, p.user_id
		FROM projects p
		WHERE p.id = $2 AND p.user_id = $3
		RETURNING id, name, project_id, user_id, created_at
	`

	var l inspection.Level
	err := s.db.QueryRowContext(ctx, query, in.Name, projectID, ownerID).Scan(
		&l.ID,
		&l.Name,
		&l.ProjectID,
		&l.UserID,
		&l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	if err != nil {
		logger.Error("Failed to create level", "error", err)
		return nil, fmt.Errorf("failed to create level: %w", err)
	}

	logger.Debug("Level created", "level_id", l.ID)
	return &l, nil
}

func (s *Store) UpdateLevel(ctx context.Context, ownerID int, projectID, levelID string, in inspection.LevelInput) (*inspection.Level, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "update_level", "level_id", levelID)

	query := `
		UPDATE levels
		SET name = $1
		WHERE id = $2 AND project_id = $3 AND user_id = $4
		RETURNING id, name, project_id, user_id, created_at
	`

	var l inspection.Level
	err := s.db.QueryRowContext(ctx, query, in.Name, levelID, projectID, ownerID).Scan(
		&l.ID,
		&l.Name,
		&l.ProjectID,
		&l.UserID,
		&l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}
	if err != nil {
		logger.Error("Failed to update level", "error", err)
		return nil, fmt.Errorf("failed to update level: %w", err)
	}

	return &l, nil
}

func (s *Store) DeleteLevel(ctx context.Context, ownerID int, projectID, levelID string) error {
	logger := s.logger.With("component", "inspection_store", "operation", "delete_level", "level_id", levelID)

	query := `
		DELETE FROM levels
		WHERE id = $1 AND project_id = $2 AND user_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, levelID, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to delete level", "error", err)
		return fmt.Errorf("failed to delete level: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return errors.NotFoundf("level with id %s not found", levelID)
	}

	logger.Debug("Level deleted")
	return nil
}
