package inspection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	exportCachePrefix = "inspections:export:"
	exportCacheTTL    = 10 * time.Minute
)

// ExportProject renders the full project tree as indented JSON, suitable for
// download. Results are cached per project until the next mutation under it.
func (s *Service) ExportProject(ctx context.Context, ownerID int, projectID string) ([]byte, error) {
	logger := s.logger.With(
		"component", "inspection_service",
		"operation", "export_project",
		"project_id", projectID,
	)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, exportCachePrefix+projectID).Bytes()
		if err == nil {
			logger.Debug("Export served from cache")
			return cached, nil
		}
		if err != redis.Nil {
			logger.Warn("Export cache read failed", "error", err)
		}
	}

	tree, err := s.store.GetProjectTree(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, exportCachePrefix+projectID, data, exportCacheTTL).Err(); err != nil {
			logger.Warn("Export cache write failed", "error", err)
		}
	}

	return data, nil
}

func (s *Service) invalidateExport(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, exportCachePrefix+projectID).Err(); err != nil {
		s.logger.Warn("Export cache invalidation failed",
			"component", "inspection_service",
			"project_id", projectID,
			"error", err)
	}
}
