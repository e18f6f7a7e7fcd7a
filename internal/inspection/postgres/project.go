package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"
)

func (s *Store) ListProjects(ctx context.Context, ownerID int) ([]inspection.Project, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "list_projects", "user_id", ownerID)
	logger.Debug("Listing projects")

	query := `
		SELECT id, location, building_characteristics, user_id, created_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		logger.Error("Failed to query projects", "error", err)
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var projects []inspection.Project
	for rows.Next() {
		var p inspection.Project
		err := rows.Scan(&p.ID, &p.Location, &p.BuildingCharacteristics, &p.UserID, &p.CreatedAt)
		if err != nil {
			logger.Error("Failed to scan project row", "error", err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	logger.Debug("Projects listed", "count", len(projects))
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, ownerID int, projectID string) (*inspection.Project, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_project", "project_id", projectID)

	query := `
		SELECT id, location, building_characteristics, user_id, created_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`

	var p inspection.Project
	err := s.db.QueryRowContext(ctx, query, projectID, ownerID).Scan(
		&p.ID,
		&p.Location,
		&p.BuildingCharacteristics,
		&p.UserID,
		&p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	if err != nil {
		logger.Error("Failed to get project", "error", err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, ownerID int, in inspection.ProjectInput) (*inspection.Project, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "create_project", "user_id", ownerID)
	logger.Debug("Creating project")

	query := `
		INSERT INTO projects (location, building_characteristics, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, location, building_characteristics, user_id, created_at
	`

	var p inspection.Project
	err := s.db.QueryRowContext(ctx, query, in.Location, in.BuildingCharacteristics, ownerID).Scan(
		&p.ID,
		&p.Location,
		&p.BuildingCharacteristics,
		&p.UserID,
		&p.CreatedAt,
	)
	if err != nil {
		logger.Error("Failed to create project", "error", err)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logger.Debug("Project created", "project_id", p.ID)
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, ownerID int, projectID string, in inspection.ProjectInput) (*inspection.Project, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "update_project", "project_id", projectID)

	query := `
		UPDATE projects
		SET location = $1, building_characteristics = $2
		WHERE id = $3 AND user_id = $4
		RETURNING id, location, building_characteristics, user_id, created_at
	`

	var p inspection.Project
	err := s.db.QueryRowContext(ctx, query, in.Location, in.BuildingCharacteristics, projectID, ownerID).Scan(
		&p.ID,
		&p.Location,
		&p.BuildingCharacteristics,
		&p.UserID,
		&p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	if err != nil {
		logger.Error("Failed to update project", "error", err)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &p, nil
}

func (s *Store) DeleteProject(ctx context.Context, ownerID int, projectID string) error {
	logger := s.logger.With("component", "inspection_store", "operation", "delete_project", "project_id", projectID)

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to delete project", "error", err)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return errors.NotFoundf("project with id %s not found", projectID)
	}

	logger.Debug("Project deleted")
	return nil
}
