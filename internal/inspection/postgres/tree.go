package postgres

import (
	"context"

	"inspections-server/internal/inspection"
)

// GetProjectTree assembles the full project subtree for export. Children are
// fetched level by level; project trees are small enough that the extra round
// trips do not matter.
func (s *Store) GetProjectTree(ctx context.Context, ownerID int, projectID string) (*inspection.Project, error) {
	logger := s.logger.With("component", "inspection_store", "operation", "get_project_tree", "project_id", projectID)
	logger.Debug("Assembling project tree")

	project, err := s.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	levels, err := s.GetLevelsByProjectID(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	for i := range levels {
		spaces, err := s.GetSpacesByLevelID(ctx, ownerID, projectID, levels[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range spaces {
			observations, err := s.GetObservationsBySpaceID(ctx, ownerID, projectID, spaces[j].ID)
			if err != nil {
				return nil, err
			}
			spaces[j].Observations = observations
		}
		levels[i].Spaces = spaces
	}

	project.Levels = levels
	return project, nil
}
