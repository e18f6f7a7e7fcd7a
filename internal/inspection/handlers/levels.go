package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"inspections-server/internal/inspection"
	"inspections-server/internal/middleware"
	"inspections-server/internal/shared/errors"
	"inspections-server/internal/shared/response"
)

// LevelHandler serves the level routes nested under a project.
type LevelHandler struct {
	service *inspection.Service
}

func NewLevelHandler(service *inspection.Service) *LevelHandler {
	return &LevelHandler{service: service}
}

// HandleLevels serves GET (list) and POST (create) on
// /api/projects/{projectID}/levels.
func (h *LevelHandler) HandleLevels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "levels")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	projectID := r.PathValue("projectID")
	if projectID == "" {
		response.Error(w, r, logger, errors.Validation("project ID is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		levels, err := h.service.ListLevels(ctx, claims.UserID, projectID)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		if levels == nil {
			levels = []inspection.Level{}
		}
		response.Success(w, http.StatusOK, levels)

	case http.MethodPost:
		var in inspection.LevelInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		level, err := h.service.CreateLevel(ctx, claims.UserID, projectID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusCreated, level)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}

// HandleLevel serves PUT and DELETE on
// /api/projects/{projectID}/levels/{levelID}.
func (h *LevelHandler) HandleLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "level")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	projectID := r.PathValue("projectID")
	levelID := r.PathValue("levelID")
	if projectID == "" || levelID == "" {
		response.Error(w, r, logger, errors.Validation("project ID and level ID are required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var in inspection.LevelInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		level, err := h.service.UpdateLevel(ctx, claims.UserID, projectID, levelID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, level)

	case http.MethodDelete:
		if err := h.service.DeleteLevel(ctx, claims.UserID, projectID, levelID); err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusNoContent, nil)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}
