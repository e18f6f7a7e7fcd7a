package handlers

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"inspections-server/internal/middleware"
	"inspections-server/internal/shared/blob"
	"inspections-server/internal/shared/errors"
	"inspections-server/internal/shared/response"
)

// PhotoHandler streams stored photo objects on GET /photos/{key...}. It backs
// the URLs the filesystem blob driver hands out; the S3 driver serves its
// objects from the bucket directly and never routes through here.
type PhotoHandler struct {
	photos blob.Store
}

func NewPhotoHandler(photos blob.Store) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

func (h *PhotoHandler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "photo")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	key := r.PathValue("key")
	if key == "" {
		response.Error(w, r, logger, errors.Validation("photo key is required"))
		return
	}

	// Keys are namespaced by owner; a session only reads its own objects.
	if !strings.HasPrefix(key, fmt.Sprintf("users/%d/", claims.UserID)) {
		response.Error(w, r, logger, errors.Forbidden("access denied"))
		return
	}

	info, body, err := h.photos.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, blob.ErrNotFound) {
			response.Error(w, r, logger, errors.NotFoundf("photo %s not found", key))
			return
		}
		response.Error(w, r, logger, errors.WrapExternal("failed to read photo", err))
		return
	}
	defer func() {
		if err := body.Close(); err != nil {
			logger.Error("Failed to close photo body", "error", err)
		}
	}()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.Error("Failed to stream photo body", "key", key, "error", err)
	}
}
