// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultValkeyPrefix namespaces portfolio keys in a shared Valkey instance.
const DefaultValkeyPrefix = "folio:"

// Valkey is a Backend on a Valkey (Redis-compatible) server. Keys never
// expire.
type Valkey struct {
	client *redis.Client
	prefix string
}

// NewValkey creates a Valkey backend. An empty prefix selects
// DefaultValkeyPrefix.
func NewValkey(client *redis.Client, prefix string) *Valkey {
	if prefix == "" {
		prefix = DefaultValkeyPrefix
	}
	return &Valkey{client: client, prefix: prefix}
}

// Get reads a key. A missing key is reported with ok=false.
func (v *Valkey) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := v.client.Get(ctx, v.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes a key without expiry.
func (v *Valkey) Set(ctx context.Context, key, value string) error {
	if err := v.client.Set(ctx, v.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (v *Valkey) Delete(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, v.prefix+key).Err(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}
