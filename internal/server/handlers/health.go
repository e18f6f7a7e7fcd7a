package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"inspections-server/internal/shared/database"
	"inspections-server/internal/shared/response"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Backend   string `json:"backend"`
	Database  string `json:"database,omitempty"`
}

type HealthHandler struct {
	db      *database.DB
	backend string
}

// NewHealthHandler reports liveness. db is nil when the server runs on the
// local single-blob backend.
func NewHealthHandler(db *database.DB, backend string) *HealthHandler {
	return &HealthHandler{db: db, backend: backend}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Backend:   h.backend,
	}

	if h.db != nil {
		resp.Database = "connected"
		if err := h.db.Ping(); err != nil {
			logger.Warn("Database ping failed", "error", err)
			resp.Database = "disconnected"
		}
	}

	response.Success(w, http.StatusOK, resp)
}
