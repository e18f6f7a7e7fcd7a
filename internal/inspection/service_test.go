package inspection_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"testing"

	"inspections-server/internal/inspection"
	"inspections-server/internal/inspection/localblob"
	"inspections-server/internal/shared/blob"
	"inspections-server/internal/shared/config"
	"inspections-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const photoBaseURL = "http://localhost:8080/blobs"

func newTestService(t *testing.T, uploadPolicy string) (*inspection.Service, *blob.Memory) {
	t.Helper()

	store := localblob.NewStore(&localblob.MemoryKV{}, slog.Default())
	photos := blob.NewMemory(photoBaseURL)

	svc := inspection.NewService(store, photos, nil, inspection.ServiceConfig{
		UploadPolicy: uploadPolicy,
		PhotoBaseURL: photoBaseURL,
	}, slog.Default())

	return svc, photos
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestInspectionWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.PhotoPolicyAbort)

	project, err := svc.CreateProject(ctx, 1, inspection.ProjectInput{
		Location:                "12 Rue A",
		BuildingCharacteristics: "brick, 1920",
	})
	require.NoError(t, err)

	level, err := svc.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)

	space, err := svc.CreateSpace(ctx, 1, project.ID, level.ID, inspection.SpaceInput{Name: "Salon"})
	require.NoError(t, err)

	obs, err := svc.CreateObservation(ctx, 1, project.ID, level.ID, space.ID, inspection.ObservationInput{
		Text:            "crack near window",
		LocationInSpace: inspection.LocationWall,
	})
	require.NoError(t, err)
	assert.Equal(t, "crack near window", obs.Text)
	assert.Equal(t, inspection.LocationWall, obs.LocationInSpace)
	assert.Empty(t, obs.Photos)

	observations, err := svc.ListObservations(ctx, 1, project.ID, space.ID)
	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, obs.ID, observations[0].ID)

	levels, err := svc.ListLevels(ctx, 1, project.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, level.ID, levels[0].ID)

	require.NoError(t, svc.DeleteObservation(ctx, 1, project.ID, obs.ID))

	observations, err = svc.ListObservations(ctx, 1, project.ID, space.ID)
	require.NoError(t, err)
	assert.Empty(t, observations)

	require.NoError(t, svc.DeleteSpace(ctx, 1, project.ID, space.ID))

	spaces, err := svc.ListSpaces(ctx, 1, project.ID, level.ID)
	require.NoError(t, err)
	assert.Empty(t, spaces)
}

func TestCreateObservationDefaultsLocationToFloor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.PhotoPolicyAbort)

	project, level, space := seedTree(t, svc)

	obs, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text: "damp patch",
	})
	require.NoError(t, err)
	assert.Equal(t, inspection.LocationFloor, obs.LocationInSpace)
}

func TestValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.PhotoPolicyAbort)

	_, err := svc.CreateProject(ctx, 1, inspection.ProjectInput{Location: "   "})
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	project, level, space := seedTree(t, svc)

	_, err = svc.CreateLevel(ctx, 1, project, inspection.LevelInput{Name: ""})
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	_, err = svc.CreateSpace(ctx, 1, project, level, inspection.SpaceInput{Name: ""})
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	_, err = svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{Text: "  "})
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
}

func TestCreateObservationUploadsPhotos(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicyAbort)

	project, level, space := seedTree(t, svc)

	obs, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text:            "crack near window",
		LocationInSpace: inspection.LocationWall,
		Photos: []string{
			dataURL("image/jpeg", []byte("jpeg bytes")),
			dataURL("image/png", []byte("png bytes")),
		},
	})
	require.NoError(t, err)
	require.Len(t, obs.Photos, 2)
	assert.Equal(t, 2, photos.Len())

	// Stored values are public URLs under the configured base, not raw data.
	for _, u := range obs.Photos {
		key, ok := blob.KeyFromURL(u, photoBaseURL)
		require.True(t, ok)
		_, rc, err := photos.Get(ctx, key)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
	}
}

func TestPhotoPolicySkipKeepsSuccessfulUploads(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicySkip)
	photos.FailAfter = 1

	project, level, space := seedTree(t, svc)

	obs, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text: "moisture on ceiling",
		Photos: []string{
			dataURL("image/jpeg", []byte("first")),
			dataURL("image/jpeg", []byte("second")),
		},
	})
	require.NoError(t, err)
	assert.Len(t, obs.Photos, 1)
	assert.Equal(t, 1, photos.Len())
}

func TestPhotoPolicyAbortRollsBackUploads(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicyAbort)
	photos.FailAfter = 1

	project, level, space := seedTree(t, svc)

	_, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text: "moisture on ceiling",
		Photos: []string{
			dataURL("image/jpeg", []byte("first")),
			dataURL("image/jpeg", []byte("second")),
		},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExternal, errors.GetType(err))

	// No observation row and no orphaned objects remain.
	observations, listErr := svc.ListObservations(ctx, 1, project, space)
	require.NoError(t, listErr)
	assert.Empty(t, observations)
	assert.Equal(t, 0, photos.Len())
}

func TestCreateObservationCompensatesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicyAbort)

	project, level, _ := seedTree(t, svc)

	_, err := svc.CreateObservation(ctx, 1, project, level, "no-such-space", inspection.ObservationInput{
		Text:   "orphan",
		Photos: []string{dataURL("image/jpeg", []byte("photo"))},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
	assert.Equal(t, 0, photos.Len())
}

func TestDeleteCascadesRemovePhotos(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicyAbort)

	project, level, space := seedTree(t, svc)

	_, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text:   "crack",
		Photos: []string{dataURL("image/jpeg", []byte("one"))},
	})
	require.NoError(t, err)

	secondSpace, err := svc.CreateSpace(ctx, 1, project, level, inspection.SpaceInput{Name: "Cuisine"})
	require.NoError(t, err)
	_, err = svc.CreateObservation(ctx, 1, project, level, secondSpace.ID, inspection.ObservationInput{
		Text:   "stain",
		Photos: []string{dataURL("image/jpeg", []byte("two"))},
	})
	require.NoError(t, err)
	require.Equal(t, 2, photos.Len())

	// Deleting one space removes only its photos.
	require.NoError(t, svc.DeleteSpace(ctx, 1, project, space))
	assert.Equal(t, 1, photos.Len())

	// Deleting the project removes everything beneath it.
	require.NoError(t, svc.DeleteProject(ctx, 1, project))
	assert.Equal(t, 0, photos.Len())

	_, err = svc.GetProject(ctx, 1, project)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
}

func TestDeleteLevelCascadesRemovePhotos(t *testing.T) {
	ctx := context.Background()
	svc, photos := newTestService(t, config.PhotoPolicyAbort)

	project, level, space := seedTree(t, svc)

	_, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text:   "crack",
		Photos: []string{dataURL("image/jpeg", []byte("one"))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, photos.Len())

	require.NoError(t, svc.DeleteLevel(ctx, 1, project, level))
	assert.Equal(t, 0, photos.Len())
}

func TestExportProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.PhotoPolicyAbort)

	project, level, space := seedTree(t, svc)
	_, err := svc.CreateObservation(ctx, 1, project, level, space, inspection.ObservationInput{
		Text:            "crack near window",
		LocationInSpace: inspection.LocationWall,
	})
	require.NoError(t, err)

	data, err := svc.ExportProject(ctx, 1, project)
	require.NoError(t, err)

	var tree inspection.Project
	require.NoError(t, json.Unmarshal(data, &tree))
	assert.Equal(t, project, tree.ID)
	assert.Equal(t, "12 Rue A", tree.Location)
	require.Len(t, tree.Levels, 1)
	require.Len(t, tree.Levels[0].Spaces, 1)
	require.Len(t, tree.Levels[0].Spaces[0].Observations, 1)
	assert.Equal(t, "crack near window", tree.Levels[0].Spaces[0].Observations[0].Text)
}

// seedTree creates one project/level/space and returns their ids.
func seedTree(t *testing.T, svc *inspection.Service) (projectID, levelID, spaceID string) {
	t.Helper()
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, 1, inspection.ProjectInput{
		Location:                "12 Rue A",
		BuildingCharacteristics: "brick, 1920",
	})
	require.NoError(t, err)

	level, err := svc.CreateLevel(ctx, 1, project.ID, inspection.LevelInput{Name: "R+0"})
	require.NoError(t, err)

	space, err := svc.CreateSpace(ctx, 1, project.ID, level.ID, inspection.SpaceInput{Name: "Salon"})
	require.NoError(t, err)

	return project.ID, level.ID, space.ID
}

func TestMutationsRejectWrongParentProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.PhotoPolicyAbort)

	other, err := svc.CreateProject(ctx, 1, inspection.ProjectInput{Location: "8 Rue B"})
	require.NoError(t, err)

	projectID, levelID, spaceID := seedTree(t, svc)

	// Addressing a real space through an unrelated project must not touch it.
	err = svc.DeleteSpace(ctx, 1, other.ID, spaceID)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	spaces, err := svc.ListSpaces(ctx, 1, projectID, levelID)
	require.NoError(t, err)
	require.Len(t, spaces, 1)
	assert.Equal(t, spaceID, spaces[0].ID)

	_, err = svc.UpdateLevel(ctx, 1, other.ID, levelID, inspection.LevelInput{Name: "hijacked"})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	levels, err := svc.ListLevels(ctx, 1, projectID)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "R+0", levels[0].Name)

	_, err = svc.CreateObservation(ctx, 1, other.ID, levelID, spaceID, inspection.ObservationInput{Text: "misfiled"})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	observations, err := svc.ListObservations(ctx, 1, projectID, spaceID)
	require.NoError(t, err)
	assert.Empty(t, observations)
}
