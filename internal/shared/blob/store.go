// Package blob stores observation photo objects. Keys are slash-separated
// paths namespaced by owner/project/level/space; the selected driver decides
// where the bytes live.
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Driver identifies a blob backend driver.
type Driver string

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem Driver = "fs"
	// DriverS3 is the S3-compatible driver.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory test driver.
	DriverMemory Driver = "memory"
)

// ErrNotFound indicates the requested object does not exist.
var ErrNotFound = errors.New("blob not found")

// PutOptions configures a blob write.
type PutOptions struct {
	ContentType string
}

// Info describes stored blob metadata.
type Info struct {
	Key         string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// Store is the interface for photo storage backends.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// PublicURL derives the URL under which a stored object is served.
	PublicURL(key string) string
}

// KeyFromURL reverse-parses an object key out of a public URL produced by
// PublicURL with the given base. Deletion is the only path that needs this:
// rows store URLs, not keys.
func KeyFromURL(publicURL, baseURL string) (string, bool) {
	base := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(publicURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, base)
	if key == "" {
		return "", false
	}
	return key, true
}
