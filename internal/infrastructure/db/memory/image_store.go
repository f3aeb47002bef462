package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ImageStore keeps uploaded objects in memory. It stands in for the object
// store when the service runs without one.
type ImageStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewImageStore(baseURL string) *ImageStore {
	return &ImageStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (s *ImageStore) Upload(_ context.Context, key, _ string, _ int64, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return s.baseURL + "/" + key, nil
}

func (s *ImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key is currently stored.
func (s *ImageStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}
