package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupObservationsByLocation(t *testing.T) {
	observations := []Observation{
		{ID: "o1", LocationInSpace: LocationFloor},
		{ID: "o2", LocationInSpace: LocationWall},
		{ID: "o3", LocationInSpace: LocationCeiling},
		{ID: "o4", LocationInSpace: "Window"},
		{ID: "o5", LocationInSpace: LocationWall},
	}

	groups := GroupObservationsByLocation(observations)

	require.Len(t, groups, 4)
	assert.Len(t, groups[LocationFloor], 1)
	assert.Len(t, groups[LocationWall], 2)
	assert.Len(t, groups[LocationCeiling], 1)
	assert.Len(t, groups["Window"], 1)

	// Order within a group follows input order.
	assert.Equal(t, "o2", groups[LocationWall][0].ID)
	assert.Equal(t, "o5", groups[LocationWall][1].ID)
}

func TestGroupObservationsByLocationEmpty(t *testing.T) {
	groups := GroupObservationsByLocation(nil)
	assert.Empty(t, groups)
}
