package assetcache

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

// MemoryStorage 进程内存储，重启即丢失
type MemoryStorage struct {
	mu         sync.RWMutex
	partitions map[string]*memoryCacheStore
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage ...
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{partitions: map[string]*memoryCacheStore{}}
}

// Open ...
func (s *MemoryStorage) Open(_ context.Context, name string) (CacheStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.partitions[name]
	if !ok {
		store = &memoryCacheStore{entries: map[string]*Response{}}
		s.partitions[name] = store
	}
	return store, nil
}

// Keys ...
func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Keys(s.partitions), nil
}

// Delete ...
func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.partitions[name]
	delete(s.partitions, name)
	return ok, nil
}

type memoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*Response
}

func (c *memoryCacheStore) Match(_ context.Context, key string) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key], nil
}

func (c *memoryCacheStore) Put(_ context.Context, key string, resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resp
	return nil
}
