package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemorySnapshots keeps snapshots in process memory. It serves single-process
// deployments and the memory storage driver.
type MemorySnapshots struct {
	items *gocache.Cache
}

// NewMemorySnapshots creates an in-process snapshot cache.
func NewMemorySnapshots(ttl time.Duration) *MemorySnapshots {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &MemorySnapshots{items: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a cached snapshot.
func (ms *MemorySnapshots) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := ms.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Set stores a snapshot with the default TTL.
func (ms *MemorySnapshots) Set(_ context.Context, key string, body []byte) {
	ms.items.SetDefault(key, body)
}

// InvalidateAll removes every snapshot.
func (ms *MemorySnapshots) InvalidateAll(context.Context) {
	ms.items.Flush()
}
