package repository

import (
	"context"
	"sync"
)

// MockCache is an in-process CacheRepository used when no Redis is configured.
type MockCache struct {
	mu   sync.RWMutex
	Data map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string]string),
	}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Data[key] = value
	return nil
}
