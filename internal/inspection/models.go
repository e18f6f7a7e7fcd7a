package inspection

import (
	"time"
)

// Default location tags offered for new observations. location_in_space is an
// open string: anything else ("Window", "Escalier"...) is equally valid and
// grouping is by exact string equality.
const (
	LocationFloor   = "floor"
	LocationWall    = "wall"
	LocationCeiling = "ceiling"
)

// Project is a top-level inspected building record, identified by its postal
// address. Levels is populated only by the local single-blob backend and by
// the project tree export; the multi-table backend fetches levels on demand.
type Project struct {
	ID                      string    `json:"id"`
	Location                string    `json:"location"`
	BuildingCharacteristics string    `json:"building_characteristics"`
	UserID                  int       `json:"user_id,omitempty"`
	Levels                  []Level   `json:"levels,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// Level is a floor/story grouping within a Project.
type Level struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ProjectID string      `json:"project_id,omitempty"`
	UserID    int         `json:"user_id,omitempty"`
	Spaces    []SpaceRoom `json:"spaces,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// SpaceRoom is a room or area within a Level.
type SpaceRoom struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	LevelID      string        `json:"level_id,omitempty"`
	UserID       int           `json:"user_id,omitempty"`
	Observations []Observation `json:"observations,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Observation is a text note with zero or more attached photos, tagged to a
// location within a SpaceRoom. Photos holds public URLs, never raw data.
type Observation struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	LocationInSpace string    `json:"location_in_space"`
	Photos          []string  `json:"photos"`
	SpaceID         string    `json:"space_id,omitempty"`
	UserID          int       `json:"user_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProjectInput carries the user-entered fields of a project form.
type ProjectInput struct {
	Location                string `json:"location"`
	BuildingCharacteristics string `json:"building_characteristics"`
}

// LevelInput carries the user-entered fields of a level form.
type LevelInput struct {
	Name string `json:"name"`
}

// SpaceInput carries the user-entered fields of a space form.
type SpaceInput struct {
	Name string `json:"name"`
}

// ObservationInput carries the user-entered fields of an observation form.
// Photos are inline base64 data URLs; the service uploads them and stores the
// resulting public URLs on the row.
type ObservationInput struct {
	Text            string   `json:"text"`
	LocationInSpace string   `json:"location_in_space"`
	Photos          []string `json:"photos"`
}

// ObservationUpdate overwrites the updatable fields of one observation.
type ObservationUpdate struct {
	Text            string `json:"text"`
	LocationInSpace string `json:"location_in_space"`
}

// GroupObservationsByLocation partitions observations by their exact
// location_in_space tag, for display.
func GroupObservationsByLocation(observations []Observation) map[string][]Observation {
	groups := make(map[string][]Observation)
	for _, obs := range observations {
		groups[obs.LocationInSpace] = append(groups[obs.LocationInSpace], obs)
	}
	return groups
}
