package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"courseplatform/backend/catalog"

	"github.com/redis/go-redis/v9"
)

const catalogKey = "catalog:snapshot"

// RedisSnapshotCache keeps the catalog snapshot in redis as JSON.
type RedisSnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotCache(rdb *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSnapshotCache) Get(ctx context.Context) (*catalog.Snapshot, error) {
	val, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap catalog.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		// A snapshot we cannot read is treated as a miss and overwritten.
		return nil, nil
	}
	return &snap, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKey, data, c.ttl).Err()
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}
