package storagesvc

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

// MemoryStore is a FileStorage kept in memory, for tests.
type MemoryStore struct {
	mu            sync.RWMutex
	publicBaseURL string
	objects       map[string][]byte // {bucket/name: content}
}

var _ core.FileStorage = (*MemoryStore)(nil)

func NewMemoryStore(publicBaseURL string) *MemoryStore {
	return &MemoryStore{publicBaseURL: publicBaseURL, objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, bucket, name string, body io.Reader, _ string) (string, error) {
	if !validName(bucket) || !validName(name) {
		return "", ErrInvalidName
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(err, "reading object")
	}
	s.mu.Lock()
	s.objects[bucket+"/"+name] = content
	s.mu.Unlock()
	return s.publicBaseURL + "/" + bucket + "/" + name, nil
}

func (s *MemoryStore) Remove(_ context.Context, bucket, name string) error {
	s.mu.Lock()
	delete(s.objects, bucket+"/"+name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ObjectName(bucket, publicURL string) (string, bool) {
	fs := FileSystemStore{publicBaseURL: s.publicBaseURL}
	return fs.ObjectName(bucket, publicURL)
}

func (s *MemoryStore) Object(bucket, name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[bucket+"/"+name]
	return content, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
