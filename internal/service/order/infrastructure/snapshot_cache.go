// internal/service/order/infrastructure/snapshot_cache.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "vesta/internal/pkg/redis"
)

const snapshotCacheTTL = 24 * time.Hour

// RedisSnapshotCache 是 statemachine.Cache 的 Redis 实现
type RedisSnapshotCache struct {
	client *pkgredis.Client
}

func NewRedisSnapshotCache(client *pkgredis.Client) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

func snapshotKey(machine, entityID string) string {
	return fmt.Sprintf("statemachine:snapshot:%s:%s", machine, entityID)
}

func (c *RedisSnapshotCache) Get(ctx context.Context, machine, entityID string) ([]byte, error) {
	data, err := c.client.Get(ctx, snapshotKey(machine, entityID))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisSnapshotCache) Put(ctx context.Context, machine, entityID string, data []byte) error {
	return c.client.Set(ctx, snapshotKey(machine, entityID), data, snapshotCacheTTL)
}

func (c *RedisSnapshotCache) Del(ctx context.Context, machine, entityID string) error {
	return c.client.Del(ctx, snapshotKey(machine, entityID))
}
