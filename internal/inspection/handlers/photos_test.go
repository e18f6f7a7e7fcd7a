package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"inspections-server/internal/inspection/handlers"
	"inspections-server/internal/middleware"
	"inspections-server/internal/shared/blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPhotoServer(t *testing.T) (*http.ServeMux, *blob.Memory) {
	t.Helper()

	photos := blob.NewMemory("http://localhost:8080/photos")
	handler := handlers.NewPhotoHandler(photos)

	mux := http.NewServeMux()
	mux.Handle("/photos/{key...}", middleware.LocalUserMiddleware(http.HandlerFunc(handler.HandlePhoto)))
	return mux, photos
}

func TestServePhoto(t *testing.T) {
	mux, photos := newPhotoServer(t)

	key := "users/1/projects/p1/levels/l1/spaces/s1/photo.jpg"
	payload := []byte("jpeg bytes")
	_, err := photos.Put(context.Background(), key, bytes.NewReader(payload), blob.PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/photos/"+key, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestServePhotoMissingObject(t *testing.T) {
	mux, _ := newPhotoServer(t)

	req := httptest.NewRequest(http.MethodGet, "/photos/users/1/projects/p1/levels/l1/spaces/s1/gone.jpg", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServePhotoForeignOwnerKey(t *testing.T) {
	mux, photos := newPhotoServer(t)

	// An object that exists but belongs to a different user namespace.
	key := "users/2/projects/p9/levels/l9/spaces/s9/photo.jpg"
	_, err := photos.Put(context.Background(), key, bytes.NewReader([]byte("private")), blob.PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/photos/"+key, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServePhotoRejectsNonGET(t *testing.T) {
	mux, _ := newPhotoServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/photos/users/1/projects/p1/levels/l1/spaces/s1/photo.jpg", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
