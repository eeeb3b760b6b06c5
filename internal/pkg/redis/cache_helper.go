// internal/pkg/redis/cache_helper.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// BatchLoader 在缓存未命中时从底层存储加载数据。
// 入参是未命中的 id 列表，返回 id -> 数据 的映射；
// 查不到的 id 直接不出现在结果里。
type BatchLoader[T any] func(ctx context.Context, missedIDs []string) (map[string]T, error)

// BatchGet 是列表页渲染用的 cache-aside 批量读取：
// 先用 MGET 批量查缓存，未命中的部分调用 loader 回源，
// 回源结果用 pipeline 批量写回缓存（带 TTL），最后按入参 id 的顺序返回。
// 缓存故障只记录，不影响读取结果。
func BatchGet[T any](ctx context.Context, c *Client, keyPrefix string, ids []string, loader BatchLoader[T], ttl time.Duration) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + ":" + id
	}

	hit := make(map[string]T, len(ids))
	var missed []string

	values, err := c.MGet(ctx, keys...)
	if err != nil && !errors.Is(err, Nil) {
		// 缓存整体不可用时退化为全量回源
		missed = ids
	} else {
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				missed = append(missed, ids[i])
				continue
			}
			var out T
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				missed = append(missed, ids[i])
				continue
			}
			hit[ids[i]] = out
		}
	}

	if len(missed) > 0 {
		loaded, err := loader(ctx, missed)
		if err != nil {
			return nil, fmt.Errorf("cache batch loader failed: %w", err)
		}

		pipe := c.GetClient().Pipeline()
		for id, v := range loaded {
			hit[id] = v
			if data, err := json.Marshal(v); err == nil {
				pipe.Set(ctx, keyPrefix+":"+id, data, ttl)
			}
		}
		// 写回失败不影响本次结果
		_, _ = pipe.Exec(ctx)
	}

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := hit[id]; ok {
			result = append(result, v)
		}
	}
	return result, nil
}
