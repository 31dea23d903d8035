package storage

import (
	"context"
	"sync"
)

// Memory keeps blobs in process. Locators use the memory:// scheme.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Store(_ context.Context, ownerID, category string, data []byte, ext string) (string, error) {
	key, err := objectKey(ownerID, category, ext)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.blobs[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return "memory://" + key, nil
}

// Get returns the blob behind a locator returned by Store.
func (m *Memory) Get(locator string) ([]byte, bool) {
	const scheme = "memory://"
	if len(locator) <= len(scheme) {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[locator[len(scheme):]]
	return b, ok
}

// Len reports how many blobs are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
