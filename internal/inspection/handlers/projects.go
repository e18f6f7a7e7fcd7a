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

// ProjectHandler serves the /api/projects collection and item routes.
type ProjectHandler struct {
	service *inspection.Service
}

func NewProjectHandler(service *inspection.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// HandleProjects serves GET (list) and POST (create) on /api/projects.
func (h *ProjectHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "projects")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		projects, err := h.service.ListProjects(ctx, claims.UserID)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		if projects == nil {
			projects = []inspection.Project{}
		}
		response.Success(w, http.StatusOK, projects)

	case http.MethodPost:
		var in inspection.ProjectInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		project, err := h.service.CreateProject(ctx, claims.UserID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusCreated, project)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}

// HandleProject serves GET, PUT and DELETE on /api/projects/{projectID}.
func (h *ProjectHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "project")

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
		project, err := h.service.GetProject(ctx, claims.UserID, projectID)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, project)

	case http.MethodPut:
		var in inspection.ProjectInput
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		project, err := h.service.UpdateProject(ctx, claims.UserID, projectID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, project)

	case http.MethodDelete:
		if err := h.service.DeleteProject(ctx, claims.UserID, projectID); err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusNoContent, nil)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}
