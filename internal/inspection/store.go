package inspection

import (
	"context"
)

// Store is the abstract repository over the project tree. Two implementations
// exist: the multi-table postgres store (children fetched on demand by foreign
// key) and the single-blob local store (whole tree under one key). Which one
// backs the API is a configuration choice, made at startup.
//
// Contract shared by both:
//   - every operation is scoped to the owner and to the parent chain the
//     caller names: a child id that exists but hangs off another owner or
//     another parent is a not-found error, never a hit
//   - projects are listed newest first, children oldest first
//   - creates never produce orphans: a missing parent is a not-found error
//   - every method returns a typed application error, never panics
type Store interface {
	ListProjects(ctx context.Context, ownerID int) ([]Project, error)
	GetProject(ctx context.Context, ownerID int, projectID string) (*Project, error)
	CreateProject(ctx context.Context, ownerID int, in ProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, ownerID int, projectID string, in ProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, ownerID int, projectID string) error

	GetLevelsByProjectID(ctx context.Context, ownerID int, projectID string) ([]Level, error)
	CreateLevel(ctx context.Context, ownerID int, projectID string, in LevelInput) (*Level, error)
	UpdateLevel(ctx context.Context, ownerID int, projectID, levelID string, in LevelInput) (*Level, error)
	DeleteLevel(ctx context.Context, ownerID int, projectID, levelID string) error

	GetSpacesByLevelID(ctx context.Context, ownerID int, projectID, levelID string) ([]SpaceRoom, error)
	CreateSpace(ctx context.Context, ownerID int, projectID, levelID string, in SpaceInput) (*SpaceRoom, error)
	UpdateSpace(ctx context.Context, ownerID int, projectID, spaceID string, in SpaceInput) (*SpaceRoom, error)
	DeleteSpace(ctx context.Context, ownerID int, projectID, spaceID string) error

	GetObservationsBySpaceID(ctx context.Context, ownerID int, projectID, spaceID string) ([]Observation, error)
	GetObservation(ctx context.Context, ownerID int, projectID, observationID string) (*Observation, error)
	CreateObservation(ctx context.Context, ownerID int, projectID, levelID, spaceID, text, locationInSpace string, photoURLs []string) (*Observation, error)
	UpdateObservation(ctx context.Context, ownerID int, projectID, observationID string, upd ObservationUpdate) (*Observation, error)
	DeleteObservation(ctx context.Context, ownerID int, projectID, observationID string) error

	// GetProjectTree returns one project with its full Level/Space/Observation
	// subtree embedded, for export.
	GetProjectTree(ctx context.Context, ownerID int, projectID string) (*Project, error)
}
