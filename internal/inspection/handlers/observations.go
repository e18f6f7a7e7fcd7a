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

// ObservationHandler serves the observation routes nested under a space.
type ObservationHandler struct {
	service *inspection.Service
}

func NewObservationHandler(service *inspection.Service) *ObservationHandler {
	return &ObservationHandler{service: service}
}

// HandleObservations serves GET (list) and POST (create) on
// /api/projects/{projectID}/levels/{levelID}/spaces/{spaceID}/observations.
func (h *ObservationHandler) HandleObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "observations")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	projectID := r.PathValue("projectID")
	levelID := r.PathValue("levelID")
	spaceID := r.PathValue("spaceID")
	if projectID == "" || levelID == "" || spaceID == "" {
		response.Error(w, r, logger, errors.Validation("project ID, level ID and space ID are required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		observations, err := h.service.ListObservations(ctx, claims.UserID, projectID, spaceID)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		if observations == nil {
			observations = []inspection.Observation{}
		}
		response.Success(w, http.StatusOK, observations)

	case http.MethodPost:
		var in inspection.ObservationInput
		// Photos arrive inline as base64 data URLs, so this body is much
		// larger than the other inputs.
		r.Body = http.MaxBytesReader(w, r.Body, 32<<20) // 32 MB
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		obs, err := h.service.CreateObservation(ctx, claims.UserID, projectID, levelID, spaceID, in)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusCreated, obs)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}

// HandleObservation serves PUT and DELETE on
// /api/projects/{projectID}/observations/{observationID}.
func (h *ObservationHandler) HandleObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "observation")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	projectID := r.PathValue("projectID")
	observationID := r.PathValue("observationID")
	if projectID == "" || observationID == "" {
		response.Error(w, r, logger, errors.Validation("project ID and observation ID are required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var upd inspection.ObservationUpdate
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}

		obs, err := h.service.UpdateObservation(ctx, claims.UserID, projectID, observationID, upd)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, obs)

	case http.MethodDelete:
		if err := h.service.DeleteObservation(ctx, claims.UserID, projectID, observationID); err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusNoContent, nil)

	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}
