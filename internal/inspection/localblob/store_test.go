package localblob

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := &MemoryKV{}
	return NewStore(kv, slog.Default()), kv
}

func TestProjectCRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	created, err := store.CreateProject(ctx, 1, inspection.ProjectInput{
		Location:                "12 Rue A",
		BuildingCharacteristics: "brick, 1920",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "12 Rue A", created.Location)
	assert.Equal(t, "brick, 1920", created.BuildingCharacteristics)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := store.GetProject(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	updated, err := store.UpdateProject(ctx, 1, created.ID, inspection.ProjectInput{
		Location:                "14 Rue A",
		BuildingCharacteristics: "brick, 1920, renovated",
	})
	require.NoError(t, err)
	assert.Equal(t, "14 Rue A", updated.Location)

	require.NoError(t, store.DeleteProject(ctx, 1, created.ID))

	_, err = store.GetProject(ctx, 1, created.ID)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
}

func TestListProjectsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "first"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "second"})
	require.NoError(t, err)

	projects, err := store.ListProjects(ctx, 1)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)
}

func TestNestedCRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	project, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "12 Rue A"})
	require.NoError(t, err)

	level, err := store.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, level.ProjectID)

	space, err := store.CreateSpace(ctx, 1, project.ID, level.ID, inspection.SpaceInput{Name: "Salon"})
	require.NoError(t, err)
	assert.Equal(t, level.ID, space.LevelID)

	obs, err := store.CreateObservation(ctx, 1, project.ID, level.ID, space.ID, "crack near window", inspection.LocationWall, nil)
	require.NoError(t, err)
	assert.Equal(t, "crack near window", obs.Text)
	assert.Equal(t, inspection.LocationWall, obs.LocationInSpace)
	assert.NotNil(t, obs.Photos)
	assert.Empty(t, obs.Photos)

	levels, err := store.GetLevelsByProjectID(ctx, 1, project.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)

	spaces, err := store.GetSpacesByLevelID(ctx, 1, project.ID, level.ID)
	require.NoError(t, err)
	require.Len(t, spaces, 1)

	observations, err := store.GetObservationsBySpaceID(ctx, 1, project.ID, space.ID)
	require.NoError(t, err)
	require.Len(t, observations, 1)

	updatedObs, err := store.UpdateObservation(ctx, 1, project.ID, obs.ID, inspection.ObservationUpdate{
		Text:            "crack widened",
		LocationInSpace: inspection.LocationCeiling,
	})
	require.NoError(t, err)
	assert.Equal(t, "crack widened", updatedObs.Text)
	assert.Equal(t, inspection.LocationCeiling, updatedObs.LocationInSpace)

	require.NoError(t, store.DeleteObservation(ctx, 1, project.ID, obs.ID))
	observations, err = store.GetObservationsBySpaceID(ctx, 1, project.ID, space.ID)
	require.NoError(t, err)
	assert.Empty(t, observations)

	require.NoError(t, store.DeleteSpace(ctx, 1, project.ID, space.ID))
	require.NoError(t, store.DeleteLevel(ctx, 1, project.ID, level.ID))
}

func TestCreateUnderMissingParent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	project, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "12 Rue A"})
	require.NoError(t, err)
	level, err := store.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)

	_, err = store.CreateLevel(ctx, 1, "no-such-project", inspection.LevelInput{Name: "R+0"})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = store.CreateSpace(ctx, 1, project.ID, "no-such-level", inspection.SpaceInput{Name: "Salon"})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = store.CreateObservation(ctx, 1, project.ID, level.ID, "no-such-space", "text", inspection.LocationFloor, nil)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
}

func TestChildLookupsScopedToNamedProject(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	other, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "8 Rue B"})
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "12 Rue A"})
	require.NoError(t, err)
	level, err := store.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)
	space, err := store.CreateSpace(ctx, 1, project.ID, level.ID, inspection.SpaceInput{Name: "Salon"})
	require.NoError(t, err)
	obs, err := store.CreateObservation(ctx, 1, project.ID, level.ID, space.ID, "crack", inspection.LocationWall, nil)
	require.NoError(t, err)

	// Real ids addressed through the wrong project never resolve.
	_, err = store.UpdateLevel(ctx, 1, other.ID, level.ID, inspection.LevelInput{Name: "hijacked"})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	err = store.DeleteSpace(ctx, 1, other.ID, space.ID)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = store.GetObservation(ctx, 1, other.ID, obs.ID)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = store.CreateObservation(ctx, 1, other.ID, level.ID, space.ID, "misfiled", inspection.LocationFloor, nil)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	// Nothing was renamed or removed along the way.
	levels, err := store.GetLevelsByProjectID(ctx, 1, project.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "R+0", levels[0].Name)

	spaces, err := store.GetSpacesByLevelID(ctx, 1, project.ID, level.ID)
	require.NoError(t, err)
	require.Len(t, spaces, 1)

	observations, err := store.GetObservationsBySpaceID(ctx, 1, project.ID, space.ID)
	require.NoError(t, err)
	require.Len(t, observations, 1)
}

func TestTreeSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := &MemoryKV{}
	store := NewStore(kv, slog.Default())

	project, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "12 Rue A"})
	require.NoError(t, err)
	level, err := store.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)
	space, err := store.CreateSpace(ctx, 1, project.ID, level.ID, inspection.SpaceInput{Name: "Salon"})
	require.NoError(t, err)
	_, err = store.CreateObservation(ctx, 1, project.ID, level.ID, space.ID, "crack near window", inspection.LocationWall, []string{"http://blobs/a.jpg"})
	require.NoError(t, err)

	// A fresh store over the same KV sees the identical tree.
	reloaded := NewStore(kv, slog.Default())
	tree, err := reloaded.GetProjectTree(ctx, 1, project.ID)
	require.NoError(t, err)
	require.Len(t, tree.Levels, 1)
	require.Len(t, tree.Levels[0].Spaces, 1)
	require.Len(t, tree.Levels[0].Spaces[0].Observations, 1)
	assert.Equal(t, []string{"http://blobs/a.jpg"}, tree.Levels[0].Spaces[0].Observations[0].Photos)
}

func TestStorageFullKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	kv := &MemoryKV{}
	store := NewStore(kv, slog.Default())

	project, err := store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "12 Rue A"})
	require.NoError(t, err)

	// Cap the quota below what any further write would need.
	stored, found, err := kv.Get()
	require.NoError(t, err)
	require.True(t, found)
	kv.Quota = len(stored)

	_, err = store.CreateProject(ctx, 1, inspection.ProjectInput{Location: "this will not fit anymore"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeStorageFull, errors.GetType(err))

	// The previously stored tree is intact.
	projects, err := store.ListProjects(ctx, 1)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)
}

func TestCorruptValueStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := &MemoryKV{}
	require.NoError(t, kv.Set([]byte("not json at all")))

	store := NewStore(kv, slog.Default())
	projects, err := store.ListProjects(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestFileKVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir+"/inspections.json", slog.Default())
	require.NoError(t, err)

	_, found, err := kv.Get()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set([]byte(`[{"id":"p1"}]`)))

	data, found, err := kv.Get()
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(data))
}
