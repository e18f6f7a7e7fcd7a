package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"
)

func (s *Store) GetObservationsBySpaceID(ctx context.Context, ownerID int, projectID, spaceID string) ([]inspection.Observation, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_observations_by_space", "space_id", spaceID)

	query := `
		SELECT o.id, o.text, o.location_in_space, o.photos, o.space_id, o.user_id, o.created_at
		FROM observations o
		JOIN spaces sp ON sp.id = o.space_id
		JOIN levels l ON l.id = sp.level_id
		WHERE o.space_id = $1 AND l.project_id = $2 AND o.user_id = $3
		ORDER BY o.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, spaceID, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to query observations", "error", err)
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var observations []inspection.Observation
	for rows.Next() {
		var obs inspection.Observation
		if err := rows.Scan(&obs.ID, &obs.Text, &obs.LocationInSpace, pq.Array(&obs.Photos), &obs.SpaceID, &obs.UserID, &obs.CreatedAt); err != nil {
			logger.Error("Failed to scan observation row", "error", err)
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if obs.Photos == nil {
			obs.Photos = []string{}
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return observations, nil
}

func (s *Store) GetObservation(ctx context.Context, ownerID int, projectID, observationID string) (*inspection.Observation, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_observation", "observation_id", observationID)

	query := `
		SELECT o.id, o.text, o.location_in_space, o.photos, o.space_id, o.user_id, o.created_at
		FROM observations o
		JOIN spaces sp ON sp.id = o.space_id
		JOIN levels l ON l.id = sp.level_id
		WHERE o.id = $1 AND l.project_id = $2 AND o.user_id = $3
	`

	var obs inspection.Observation
	err := s.db.QueryRowContext(ctx, query, observationID, projectID, ownerID).Scan(
		&obs.ID,
		&obs.Text,
		&obs.LocationInSpace,
		pq.Array(&obs.Photos),
		&obs.SpaceID,
		&obs.UserID,
		&obs.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("observation with id %s not found", observationID)
	}
	if err != nil {
		logger.Error("Failed to get observation", "error", err)
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}

	if obs.Photos == nil {
		obs.Photos = []string{}
	}
	return &obs, nil
}

// CreateObservation inserts via a SELECT against the parent space, verifying
// the whole project/level/space/owner chain in one statement.
func (s *Store) CreateObservation(ctx context.Context, ownerID int, projectID, levelID, spaceID, text, locationInSpace string, photoURLs []string) (*inspection.Observation, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "create_observation", "space_id", spaceID)
	logger.Debug("Creating observation")

	if photoURLs == nil {
		photoURLs = []string{}
	}

	query := `
		INSERT INTO observations (text, location_in_space, photos, space_id, user_id)
		SELECT $1, $2, $3, sp.id, sp.user_id
		FROM spaces sp
		JOIN levels l ON l.id = sp.level_id
		WHERE sp.id = $4 AND sp.level_id = $5 AND l.project_id = $6 AND sp.user_id = $7
		RETURNING id, text, location_in_space, photos, space_id, user_id, created_at
	`

	var obs inspection.Observation
	err := s.db.QueryRowContext(ctx, query, text, locationInSpace, pq.Array(photoURLs), spaceID, levelID, projectID, ownerID).Scan(
		&obs.ID,
		&obs.Text,
		&obs.LocationInSpace,
		pq.Array(&obs.Photos),
		&obs.SpaceID,
		&obs.UserID,
		&obs.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("space with id %s not found", spaceID)
	}
	if err != nil {
		logger.Error("Failed to create observation", "error", err)
		return nil, fmt.Errorf("failed to create observation: %w", err)
	}

	if obs.Photos == nil {
		obs.Photos = []string{}
	}
	logger.Debug("Observation created", "observation_id", obs.ID)
	return &obs, nil
}

func (s *Store) UpdateObservation(ctx context.Context, ownerID int, projectID, observationID string, upd inspection.ObservationUpdate) (*inspection.Observation, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "update_observation", "observation_id", observationID)

	query := `
		UPDATE observations o
		SET text = $1, location_in_space = $2
		FROM spaces sp
		JOIN levels l ON l.id = sp.level_id
		WHERE o.id = $3 AND o.space_id = sp.id AND l.project_id = $4 AND o.user_id = $5
		RETURNING o.id, o.text, o.location_in_space, o.photos, o.space_id, o.user_id, o.created_at
	`

	var obs inspection.Observation
	err := s.db.QueryRowContext(ctx, query, upd.Text, upd.LocationInSpace, observationID, projectID, ownerID).Scan(
		&obs.ID,
		&obs.Text,
		&obs.LocationInSpace,
		pq.Array(&obs.Photos),
		&obs.SpaceID,
		&obs.UserID,
		&obs.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("observation with id %s not found", observationID)
	}
	if err != nil {
		logger.Error("Failed to update observation", "error", err)
		return nil, fmt.Errorf("failed to update observation: %w", err)
	}

	if obs.Photos == nil {
		obs.Photos = []string{}
	}
	return &obs, nil
}

func (s *Store) DeleteObservation(ctx context.Context, ownerID int, projectID, observationID string) error {
	logger := s.logger.With("component", "inspection_store", "operation", "delete_observation", "observation_id", observationID)

	query := `
		DELETE FROM observations o
		USING spaces sp
		JOIN levels l ON l.id = sp.level_id
		WHERE o.id = $1 AND o.space_id = sp.id AND l.project_id = $2 AND o.user_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, observationID, projectID, ownerID)
	if err != nil {
		logger.Error("Failed to delete observation", "error", err)
		return fmt.Errorf("failed to delete observation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return errors.NotFoundf("observation with id %s not found", observationID)
	}

	logger.Debug("Observation deleted")
	return nil
}
