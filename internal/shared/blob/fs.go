package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Filesystem implements Store on a local directory. Keys map to relative file
// paths under the root; a sidecar file (`<name>.meta`) keeps the content type.
// Not concurrent-writer safe beyond per-file creation.
type Filesystem struct {
	root    string
	baseURL string
}

// NewFilesystem returns a filesystem blob store rooted at path, creating it if needed.
func NewFilesystem(root, baseURL string) (*Filesystem, error) {
	if root == "" {
		root = "./photodata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *Filesystem) Driver() Driver { return DriverFilesystem }

// sanitizeKey forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

func (f *Filesystem) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(f.root, k)
	metaPath = dataPath + ".meta"
	return
}

type metaFile struct {
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Filesystem) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}

	// Stream to a temp file, then move into place atomically.
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, copyErr := io.Copy(tmp, r)
	if copyErr != nil {
		_ = tmp.Close()
		return Info{}, copyErr
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}

	now := time.Now().UTC()
	mf := metaFile{ContentType: opts.ContentType, Size: size, CreatedAt: now}
	raw, err := json.Marshal(mf)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return Info{}, err
	}

	return Info{Key: key, Size: size, ContentType: opts.ContentType, CreatedAt: now}, nil
}

func (f *Filesystem) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, nil, ErrNotFound
		}
		return Info{}, nil, err
	}

	info := Info{Key: key}
	if st, err := file.Stat(); err == nil {
		info.Size = st.Size()
	}
	if raw, err := os.ReadFile(metaPath); err == nil {
		var mf metaFile
		if json.Unmarshal(raw, &mf) == nil {
			info.ContentType = mf.ContentType
			info.CreatedAt = mf.CreatedAt
		}
	}

	return info, file, nil
}

func (f *Filesystem) Delete(ctx context.Context, key string) error {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dataPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	_ = os.Remove(metaPath)
	return nil
}

func (f *Filesystem) PublicURL(key string) string {
	return f.baseURL + "/" + key
}
