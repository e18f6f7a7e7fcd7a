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

// SpaceHandler serves the space routes nested under a level.
type SpaceHandler struct {
	service *inspection.Service
}

func NewSpaceHandler(service *inspection.Service) *SpaceHandler {
	return &SpaceHandler{service: service}
}

// HandleSpaces serves GET (list) and POST (create) on
// /api/projects/{projectID}/levels/{levelID}/spaces.
func (h *SpaceHandler) HandleSpaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "spaces")

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
	case http.MethodGet:
		spaces, err := h.service.ListSpaces(ctx, claims.UserID, projectID, levelID)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		if spaces == nil {
			spaces = []inspection.SpaceRoom{}
		}
		response.Success(w, http.StatusOK, spaces)

	case http.MethodPost:
		var in inspection.SpaceInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		space, err := h.service.CreateSpace(ctx, claims.UserID, projectID, levelID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusCreated, space)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}

// HandleSpace serves PUT and DELETE on
// /api/projects/{projectID}/spaces/{spaceID}.
func (h *SpaceHandler) HandleSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "space")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	projectID := r.PathValue("projectID")
	spaceID := r.PathValue("spaceID")
	if projectID == "" || spaceID == "" {
		response.Error(w, r, logger, errors.Validation("project ID and space ID are required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var in inspection.SpaceInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		space, err := h.service.UpdateSpace(ctx, claims.UserID, projectID, spaceID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, space)

	case http.MethodDelete:
		if err := h.service.DeleteSpace(ctx, claims.UserID, projectID, spaceID); err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusNoContent, nil)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}
