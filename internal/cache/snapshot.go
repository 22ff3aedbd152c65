// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// snapshot.go caches serialised public API responses. A snapshot is the
// exact response body, so a hit skips both the document copy and the JSON
// and markdown rendering. Every document change drops all snapshots.
package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// snapshotKeyPrefix is the Valkey key prefix for cached snapshots.
	snapshotKeyPrefix = "folio:snapshot:"

	// DefaultSnapshotTTL is how long a snapshot stays cached.
	DefaultSnapshotTTL = 5 * time.Minute

	// PortfolioKey is the snapshot key of the full public portfolio.
	PortfolioKey = "portfolio"
)

// Snapshots stores response bodies by key. Failures are logged and treated
// as misses; a cache must never fail a request.
type Snapshots interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateAll(ctx context.Context)
}

// QueryKey returns the snapshot key for a path and its query parameters.
// Parameters are sorted so equivalent queries share one key.
func QueryKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// ValkeySnapshots keeps snapshots in Valkey so several server processes
// share them.
type ValkeySnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeySnapshots creates a snapshot cache backed by the given Valkey client.
func NewValkeySnapshots(client *redis.Client, ttl time.Duration) *ValkeySnapshots {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &ValkeySnapshots{client: client, ttl: ttl}
}

// Get retrieves a cached snapshot.
func (vs *ValkeySnapshots) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := vs.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("snapshot cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("snapshot cache hit", "key", key)
	return val, true
}

// Set stores a snapshot with the configured TTL.
func (vs *ValkeySnapshots) Set(ctx context.Context, key string, body []byte) {
	if err := vs.client.Set(ctx, snapshotKeyPrefix+key, body, vs.ttl).Err(); err != nil {
		slog.Warn("snapshot cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all snapshots by scanning for the prefix.
func (vs *ValkeySnapshots) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := vs.client.Scan(ctx, cursor, snapshotKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("snapshot cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := vs.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("snapshot cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("snapshot cache cleared", "deleted", deleted)
	}
}
