package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"inspections-server/internal/inspection"
	"inspections-server/internal/middleware"
	"inspections-server/internal/shared/errors"
	"inspections-server/internal/shared/response"
)

// ExportHandler serves the project JSON download.
type ExportHandler struct {
	service *inspection.Service
}

func NewExportHandler(service *inspection.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// HandleExport serves GET on /api/projects/{projectID}/export, returning the
// full project tree as a downloadable JSON document.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "export_project")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	projectID := r.PathValue("projectID")
	if projectID == "" {
		response.Error(w, r, logger, errors.Validation("project ID is required"))
		return
	}

	data, err := h.service.ExportProject(ctx, claims.UserID, projectID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=project-%s.json", projectID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write export body", "error", err)
	}
}
