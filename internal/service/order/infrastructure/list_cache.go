// internal/service/order/infrastructure/list_cache.go
package infrastructure

import (
	"context"
	"time"

	pkgredis "vesta/internal/pkg/redis"
	"vesta/internal/service/order/application"
)

// RedisListCache 把通用的 cache-aside 批量读取适配到应用层的 ListCache 端口
type RedisListCache struct {
	client *pkgredis.Client
}

func NewRedisListCache(client *pkgredis.Client) *RedisListCache {
	return &RedisListCache{client: client}
}

func (c *RedisListCache) BatchGet(ctx context.Context, keyPrefix string, ids []string, loader application.BatchLoader, ttl time.Duration) ([]application.OrderSimple, error) {
	return pkgredis.BatchGet[application.OrderSimple](ctx, c.client, keyPrefix, ids, pkgredis.BatchLoader[application.OrderSimple](loader), ttl)
}
