// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, snapshotKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

// exerciseSnapshots runs the shared behaviour checks against any Snapshots.
func exerciseSnapshots(t *testing.T, s Snapshots) {
	t.Helper()
	ctx := context.Background()

	if data, ok := s.Get(ctx, PortfolioKey); ok || data != nil {
		t.Error("expected cache miss")
	}

	body := []byte(`{"personalInfo":{"name":"Ada"}}`)
	s.Set(ctx, PortfolioKey, body)
	s.Set(ctx, "/api/skills", []byte("[]"))

	data, ok := s.Get(ctx, PortfolioKey)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}

	s.InvalidateAll(ctx)
	for _, key := range []string{PortfolioKey, "/api/skills"} {
		if _, ok := s.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}
}

func TestMemorySnapshots(t *testing.T) {
	exerciseSnapshots(t, NewMemorySnapshots(time.Minute))
}

func TestValkeySnapshots(t *testing.T) {
	client := testValkeyClient(t)
	exerciseSnapshots(t, NewValkeySnapshots(client, time.Minute))
}

func TestNewValkeySnapshotsDefaultTTL(t *testing.T) {
	vs := NewValkeySnapshots(nil, 0)
	if vs.ttl != DefaultSnapshotTTL {
		t.Errorf("expected DefaultSnapshotTTL (%v), got %v", DefaultSnapshotTTL, vs.ttl)
	}
}

func TestQueryKey(t *testing.T) {
	tests := []struct {
		path  string
		query url.Values
		want  string
	}{
		{"/api/projects", nil, "/api/projects"},
		{"/api/projects", url.Values{"featured": {"true"}}, "/api/projects?featured=true"},
		{"/api/projects", url.Values{"featured": {"true"}, "category": {"web"}}, "/api/projects?category=web&featured=true"},
	}
	for _, tt := range tests {
		if got := QueryKey(tt.path, tt.query); got != tt.want {
			t.Errorf("QueryKey(%q, %v) = %q, want %q", tt.path, tt.query, got, tt.want)
		}
	}
}
