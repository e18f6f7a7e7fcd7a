package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir(), "http://localhost:8080/photos")
	require.NoError(t, err)

	info, err := store.Put(ctx, "users/1/projects/p1/photo.jpg", strings.NewReader("jpegbytes"), PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)

	got, rc, err := store.Get(ctx, "users/1/projects/p1/photo.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
	assert.Equal(t, "image/jpeg", got.ContentType)

	require.NoError(t, store.Delete(ctx, "users/1/projects/p1/photo.jpg"))
	_, _, err = store.Get(ctx, "users/1/projects/p1/photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemPutRejectsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir(), "http://localhost:8080/photos")
	require.NoError(t, err)

	_, err = store.Put(ctx, "a/b.png", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "a/b.png", strings.NewReader("y"), PutOptions{})
	assert.Error(t, err)
}

func TestFilesystemRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir(), "http://localhost:8080/photos")
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "/abs/path", "a/../../b"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir(), "http://localhost:8080/photos/")
	require.NoError(t, err)

	url := store.PublicURL("users/1/projects/p1/photo.jpg")
	assert.Equal(t, "http://localhost:8080/photos/users/1/projects/p1/photo.jpg", url)

	key, ok := KeyFromURL(url, "http://localhost:8080/photos")
	require.True(t, ok)
	assert.Equal(t, "users/1/projects/p1/photo.jpg", key)

	_, ok = KeyFromURL("https://elsewhere.example/x.jpg", "http://localhost:8080/photos")
	assert.False(t, ok)
}
