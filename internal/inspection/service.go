package inspection

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inspections-server/internal/shared/blob"
	"inspections-server/internal/shared/config"
	"inspections-server/internal/shared/errors"
	sharedredis "inspections-server/internal/shared/redis"

	"github.com/google/uuid"
)

// ServiceConfig holds the service-level knobs that are decided by
// configuration rather than by the store.
type ServiceConfig struct {
	// UploadPolicy decides what a single failed photo upload does to the
	// observation create: config.PhotoPolicyAbort or config.PhotoPolicySkip.
	UploadPolicy string
	// PhotoBaseURL is the public base under which photo objects are served;
	// deletion reverse-parses object keys from stored URLs against it.
	PhotoBaseURL string
}

// Service orchestrates the inspection store, the photo blob store and the
// export cache. All multi-step sequences (upload photos then insert row,
// delete photos then delete row) are ordered independent calls with
// best-effort compensation, never transactions.
type Service struct {
	store  Store
	photos blob.Store
	cache  *sharedredis.Client
	cfg    ServiceConfig
	logger *slog.Logger
}

func NewService(store Store, photos blob.Store, cache *sharedredis.Client, cfg ServiceConfig, logger *slog.Logger) *Service {
	logger.Debug("Initializing inspection service",
		"upload_policy", cfg.UploadPolicy,
		"export_cache", cache != nil,
	)

	return &Service{
		store:  store,
		photos: photos,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// ---- Projects ----

func (s *Service) ListProjects(ctx context.Context, ownerID int) ([]Project, error) {
	return s.store.ListProjects(ctx, ownerID)
}

func (s *Service) GetProject(ctx context.Context, ownerID int, projectID string) (*Project, error) {
	return s.store.GetProject(ctx, ownerID, projectID)
}

func (s *Service) CreateProject(ctx context.Context, ownerID int, in ProjectInput) (*Project, error) {
	if strings.TrimSpace(in.Location) == "" {
		return nil, errors.Validation("project location cannot be empty")
	}
	return s.store.CreateProject(ctx, ownerID, in)
}

func (s *Service) UpdateProject(ctx context.Context, ownerID int, projectID string, in ProjectInput) (*Project, error) {
	if strings.TrimSpace(in.Location) == "" {
		return nil, errors.Validation("project location cannot be empty")
	}

	project, err := s.store.UpdateProject(ctx, ownerID, projectID, in)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return project, nil
}

// DeleteProject removes a project and its whole subtree, photo objects
// included.
func (s *Service) DeleteProject(ctx context.Context, ownerID int, projectID string) error {
	tree, err := s.store.GetProjectTree(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	s.deletePhotoURLs(ctx, collectProjectPhotoURLs(tree))

	if err := s.store.DeleteProject(ctx, ownerID, projectID); err != nil {
		return err
	}

	s.invalidateExport(ctx, projectID)
	return nil
}

// ---- Levels ----

func (s *Service) ListLevels(ctx context.Context, ownerID int, projectID string) ([]Level, error) {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.store.GetLevelsByProjectID(ctx, ownerID, projectID)
}

func (s *Service) CreateLevel(ctx context.Context, ownerID int, projectID string, in LevelInput) (*Level, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Validation("level name cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	level, err := s.store.CreateLevel(ctx, ownerID, projectID, in)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return level, nil
}

func (s *Service) UpdateLevel(ctx context.Context, ownerID int, projectID, levelID string, in LevelInput) (*Level, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Validation("level name cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	level, err := s.store.UpdateLevel(ctx, ownerID, projectID, levelID, in)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return level, nil
}

// DeleteLevel removes a level and cascades to its spaces, observations and
// their photo objects.
func (s *Service) DeleteLevel(ctx context.Context, ownerID int, projectID, levelID string) error {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return err
	}

	spaces, err := s.store.GetSpacesByLevelID(ctx, ownerID, projectID, levelID)
	if err != nil {
		return err
	}
	for _, space := range spaces {
		s.deleteSpacePhotos(ctx, ownerID, projectID, space.ID)
	}

	if err := s.store.DeleteLevel(ctx, ownerID, projectID, levelID); err != nil {
		return err
	}

	s.invalidateExport(ctx, projectID)
	return nil
}

// ---- Spaces ----

func (s *Service) ListSpaces(ctx context.Context, ownerID int, projectID, levelID string) ([]SpaceRoom, error) {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.store.GetSpacesByLevelID(ctx, ownerID, projectID, levelID)
}

func (s *Service) CreateSpace(ctx context.Context, ownerID int, projectID, levelID string, in SpaceInput) (*SpaceRoom, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Validation("space name cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	space, err := s.store.CreateSpace(ctx, ownerID, projectID, levelID, in)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return space, nil
}

func (s *Service) UpdateSpace(ctx context.Context, ownerID int, projectID, spaceID string, in SpaceInput) (*SpaceRoom, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Validation("space name cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	space, err := s.store.UpdateSpace(ctx, ownerID, projectID, spaceID, in)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return space, nil
}

// DeleteSpace removes a space and cascades to its observations and their
// photo objects.
func (s *Service) DeleteSpace(ctx context.Context, ownerID int, projectID, spaceID string) error {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return err
	}

	s.deleteSpacePhotos(ctx, ownerID, projectID, spaceID)

	if err := s.store.DeleteSpace(ctx, ownerID, projectID, spaceID); err != nil {
		return err
	}

	s.invalidateExport(ctx, projectID)
	return nil
}

// ---- Observations ----

func (s *Service) ListObservations(ctx context.Context, ownerID int, projectID, spaceID string) ([]Observation, error) {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.store.GetObservationsBySpaceID(ctx, ownerID, projectID, spaceID)
}

// CreateObservation uploads the inline photos, then inserts the row with the
// resulting public URLs. A failed individual upload is handled per the
// configured policy; a failed insert rolls back whatever was uploaded.
func (s *Service) CreateObservation(ctx context.Context, ownerID int, projectID, levelID, spaceID string, in ObservationInput) (*Observation, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, errors.Validation("observation text cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	location := strings.TrimSpace(in.LocationInSpace)
	if location == "" {
		location = LocationFloor
	}

	photoURLs, err := s.uploadPhotos(ctx, ownerID, projectID, levelID, spaceID, in.Photos)
	if err != nil {
		return nil, err
	}

	obs, err := s.store.CreateObservation(ctx, ownerID, projectID, levelID, spaceID, strings.TrimSpace(in.Text), location, photoURLs)
	if err != nil {
		// The row never landed; do not leave its photos behind.
		s.deletePhotoURLs(ctx, photoURLs)
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return obs, nil
}

func (s *Service) UpdateObservation(ctx context.Context, ownerID int, projectID, observationID string, upd ObservationUpdate) (*Observation, error) {
	if strings.TrimSpace(upd.Text) == "" {
		return nil, errors.Validation("observation text cannot be empty")
	}
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(upd.LocationInSpace) == "" {
		upd.LocationInSpace = LocationFloor
	}

	obs, err := s.store.UpdateObservation(ctx, ownerID, projectID, observationID, upd)
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, projectID)
	return obs, nil
}

// DeleteObservation removes the observation's photo objects first, then the
// row, as the hosted original does.
func (s *Service) DeleteObservation(ctx context.Context, ownerID int, projectID, observationID string) error {
	if _, err := s.store.GetProject(ctx, ownerID, projectID); err != nil {
		return err
	}

	obs, err := s.store.GetObservation(ctx, ownerID, projectID, observationID)
	if err != nil {
		return err
	}

	s.deletePhotoURLs(ctx, obs.Photos)

	if err := s.store.DeleteObservation(ctx, ownerID, projectID, observationID); err != nil {
		return err
	}

	s.invalidateExport(ctx, projectID)
	return nil
}

// ---- Photo orchestration ----

func (s *Service) uploadPhotos(ctx context.Context, ownerID int, projectID, levelID, spaceID string, payloads []string) ([]string, error) {
	logger := s.logger.With(
		"component", "inspection_service",
		"operation", "upload_photos",
		"space_id", spaceID,
		"photo_count", len(payloads),
	)

	var urls []string
	for i, payload := range payloads {
		photo, err := decodeDataURL(payload)
		if err == nil {
			key := fmt.Sprintf("users/%d/projects/%s/levels/%s/spaces/%s/%s.%s",
				ownerID, projectID, levelID, spaceID, uuid.NewString(), photo.ext)
			_, err = s.photos.Put(ctx, key, bytes.NewReader(photo.data), blob.PutOptions{ContentType: photo.contentType})
			if err == nil {
				urls = append(urls, s.photos.PublicURL(key))
				continue
			}
		}

		if s.cfg.UploadPolicy == config.PhotoPolicySkip {
			logger.Warn("Photo upload failed, skipping", "photo_index", i, "error", err)
			continue
		}

		logger.Error("Photo upload failed, aborting observation create", "photo_index", i, "error", err)
		s.deletePhotoURLs(ctx, urls)
		return nil, errors.WrapExternal("photo upload failed", err)
	}

	return urls, nil
}

// deletePhotoURLs best-effort removes photo objects referenced by stored
// URLs. Failures are logged and never block the caller.
func (s *Service) deletePhotoURLs(ctx context.Context, urls []string) {
	logger := s.logger.With("component", "inspection_service", "operation", "delete_photos")

	for _, u := range urls {
		key, ok := blob.KeyFromURL(u, s.cfg.PhotoBaseURL)
		if !ok {
			logger.Warn("Cannot derive photo key from URL, leaving object behind", "url", u)
			continue
		}
		if err := s.photos.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete photo object", "key", key, "error", err)
		}
	}
}

func (s *Service) deleteSpacePhotos(ctx context.Context, ownerID int, projectID, spaceID string) {
	observations, err := s.store.GetObservationsBySpaceID(ctx, ownerID, projectID, spaceID)
	if err != nil {
		s.logger.Warn("Failed to list observations for photo cleanup", "space_id", spaceID, "error", err)
		return
	}
	for _, obs := range observations {
		s.deletePhotoURLs(ctx, obs.Photos)
	}
}

func collectProjectPhotoURLs(tree *Project) []string {
	var urls []string
	for _, level := range tree.Levels {
		for _, space := range level.Spaces {
			for _, obs := range space.Observations {
				urls = append(urls, obs.Photos...)
			}
		}
	}
	return urls
}
