package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. With a non-zero Quota it rejects writes
// that would push the total stored bytes past the limit, the way browser
// storage does.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int
}

// NewMemory returns an empty Memory backend. quota is the byte limit across
// all keys and values; zero means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{values: make(map[string]string), quota: quota}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key, or returns ErrQuotaExceeded.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		used := 0
		for k, v := range m.values {
			if k == key {
				continue
			}
			used += len(k) + len(v)
		}
		if used+len(key)+len(value) > m.quota {
			return ErrQuotaExceeded
		}
	}

	m.values[key] = value
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// SetQuota changes the byte limit. Existing values are kept even if they
// already exceed the new limit.
func (m *Memory) SetQuota(quota int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = quota
}
