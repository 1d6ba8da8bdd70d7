// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dedup implements Discovery's duplicate-insert guard
// (SPEC_FULL.md §13): a Redis-backed idempotency cache, repurposing the
// teacher's Redis client (originally used for auth tokens) rather than
// dropping it.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is kept comfortably longer than Discovery's own tick period so a key
// set on one tick still guards the next (SPEC_FULL.md §13).
const TTL = time.Hour

const keyPrefix = "cereal:discovery:seen:"

// Cache guards against re-inserting a chapter a provider has already
// reported, without requiring a database uniqueness constraint (spec.md
// §9). A nil or unreachable Redis client degrades Cache to a no-op: every
// key looks unseen, matching spec.md's documented tolerance for duplicates
// rather than treating a missing cache as a hard failure.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New constructs a [Cache]. client may be nil.
func New(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// SeenOrMark reports whether key has already been marked within the TTL
// window; if not, it marks it and returns false. Discovery calls this once
// per candidate NewChapter before the per-book insert transaction
// (SPEC_FULL.md §13).
func (c *Cache) SeenOrMark(ctx context.Context, key string) bool {
	if c.client == nil {
		return false
	}

	set, err := c.client.SetNX(ctx, keyPrefix+key, 1, TTL).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "dedup cache unreachable, treating key as unseen", "error", err)
		return false
	}
	return !set
}
