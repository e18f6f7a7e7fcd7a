package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Store used by tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string

	// FailKeys marks keys whose Put should fail, for exercising the
	// partial-upload policies.
	FailKeys map[string]bool

	// FailAfter, when positive, makes every Put past the first N objects
	// fail. Useful when keys are generated and cannot be predicted.
	FailAfter int
}

type memoryObject struct {
	data []byte
	info Info
}

// NewMemory returns an empty in-memory blob store.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string]memoryObject),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	if _, err := sanitizeKey(key); err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailKeys[key] {
		return Info{}, fmt.Errorf("simulated upload failure for %s", key)
	}
	if m.FailAfter > 0 && len(m.objects) >= m.FailAfter {
		return Info{}, fmt.Errorf("simulated upload failure for %s", key)
	}
	if _, exists := m.objects[key]; exists {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	m.objects[key] = memoryObject{data: data, info: info}
	return info, nil
}

func (m *Memory) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return m.baseURL + "/" + key
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Keys returns the stored keys, unordered.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
