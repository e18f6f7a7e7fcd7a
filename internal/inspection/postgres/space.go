package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"
)

func (s *Store) GetSpacesByLevelID(ctx context.Context, ownerID int, projectID, levelID string) ([]inspection.SpaceRoom, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_spaces_by_level", "level_id", levelID)

	query := `
		SELECT sp.id, sp.name, sp.level_id, sp.user_id, sp.created_at
		FROM spaces sp
		JOIN levels l ON l.id = sp.level_id
		WHERE sp.level_id = $1 AND l.project_id = $2 AND sp.user_id = $3
		ORDER BY sp.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, levelID, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to query spaces", "error", err)
		return nil, fmt.Errorf("failed to query spaces: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var spaces []inspection.SpaceRoom
	for rows.Next() {
		var sp inspection.SpaceRoom
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.LevelID, &sp.UserID, &sp.CreatedAt); err != nil {
			logger.Error("Failed to scan space row", "error", err)
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating spaces: %w", err)
	}

	return spaces, nil
}

// CreateSpace inserts via a SELECT against the parent level, verifying the
// whole project/level/owner chain in one statement.
func (s *Store) CreateSpace(ctx context.Context, ownerID int, projectID, levelID string, in inspection.SpaceInput) (*inspection.SpaceRoom, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "create_space", "level_id", levelID)
	logger.Debug("Creating space")

	query := `
		INSERT INTO spaces (name, level_id, user_id)
		SELECT $1, l.id, l.user_id
		FROM levels l
		WHERE l.id = $2 AND l.project_id = $3 AND l.user_id = $4
		RETURNING id, name, level_id, user_id, created_at
	`

	var sp inspection.SpaceRoom
	err := s.db.QueryRowContext(ctx, query, in.Name, levelID, projectID, ownerID).Scan(
		&sp.ID,
		&sp.Name,
		&sp.LevelID,
		&sp.UserID,
		&sp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}
	if err != nil {
		logger.Error("Failed to create space", "error", err)
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	logger.Debug("Space created", "space_id", sp.ID)
	return &sp, nil
}

func (s *Store) UpdateSpace(ctx context.Context, ownerID int, projectID, spaceID string, in inspection.SpaceInput) (*inspection.SpaceRoom, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "update_space", "space_id", spaceID)

	query := `
		UPDATE spaces sp
		SET name = $1
		FROM levels l
		WHERE sp.id = $2 AND sp.level_id = l.id AND l.project_id = $3 AND sp.user_id = $4
		RETURNING sp.id, sp.name, sp.level_id, sp.user_id, sp.created_at
	`

	var sp inspection.SpaceRoom
	err := s.db.QueryRowContext(ctx, query, in.Name, spaceID, projectID, ownerID).Scan(
		&sp.ID,
		&sp.Name,
		&sp.LevelID,
		&sp.UserID,
		&sp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("space with id %s not found", spaceID)
	}
	if err != nil {
		logger.Error("Failed to update space", "error", err)
		return nil, fmt.Errorf("failed to update space: %w", err)
	}

	return &sp, nil
}

func (s *Store) DeleteSpace(ctx context.Context, ownerID int, projectID, spaceID string) error {
	logger := s.logger.With("component", "inspection_store", "operation", "delete_space", "space_id", spaceID)

	query := `
		DELETE FROM spaces sp
		USING levels l
		WHERE sp.id = $1 AND sp.level_id = l.id AND l.project_id = $2 AND sp.user_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, spaceID, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to delete space", "error", err)
		return fmt.Errorf("failed to delete space: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return errors.NotFoundf("space with id %s not found", spaceID)
	}

	logger.Debug("Space deleted")
	return nil
}
