package localblob

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"inspections-server/internal/shared/errors"
)

// KV is the single-value persistence slot backing the local store. The whole
// project tree serializes into one value under one implicit key.
type KV interface {
	// Get returns the stored value. found is false when nothing has been
	// stored yet; that is not an error.
	Get() (data []byte, found bool, err error)
	// Set overwrites the stored value. A full device surfaces as a
	// storage_full application error, anything else as internal.
	Set(data []byte) error
}

// FileKV persists the value as a single file, written atomically via a temp
// file in the same directory.
type FileKV struct {
	path   string
	logger *slog.Logger
}

func NewFileKV(path string, logger *slog.Logger) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapInternal("failed to create local storage directory", err)
	}
	return &FileKV{
		path:   path,
		logger: logger.With("component", "localblob_kv", "path", path),
	}, nil
}

func (kv *FileKV) Get() ([]byte, bool, error) {
	data, err := os.ReadFile(kv.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WrapInternal("failed to read local storage", err)
	}
	return data, true, nil
}

func (kv *FileKV) Set(data []byte) error {
	tmp := kv.path + ".tmp"

	err := os.WriteFile(tmp, data, 0o644)
	if err == nil {
		err = os.Rename(tmp, kv.path)
	}
	if err != nil {
		os.Remove(tmp)
		if stderrors.Is(err, syscall.ENOSPC) {
			kv.logger.Error("Local storage device is full", "error", err)
			return errors.WrapStorageFull("local storage is full", err)
		}
		kv.logger.Error("Failed to write local storage", "error", err)
		return errors.WrapInternal("failed to write local storage", err)
	}
	return nil
}

// MemoryKV is an in-process KV with an optional byte quota, used in tests to
// exercise the storage-full path without filling a real disk.
type MemoryKV struct {
	data  []byte
	found bool
	// Quota caps the value size when positive; Set past it fails storage_full.
	Quota int
}

func (kv *MemoryKV) Get() ([]byte, bool, error) {
	if !kv.found {
		return nil, false, nil
	}
	cp := make([]byte, len(kv.data))
	copy(cp, kv.data)
	return cp, true, nil
}

func (kv *MemoryKV) Set(data []byte) error {
	if kv.Quota > 0 && len(data) > kv.Quota {
		return errors.StorageFull(fmt.Sprintf("value of %d bytes exceeds quota of %d", len(data), kv.Quota))
	}
	kv.data = make([]byte, len(data))
	copy(kv.data, data)
	kv.found = true
	return nil
}
