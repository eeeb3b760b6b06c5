// internal/statemachine/store.go
package statemachine

import (
	"context"
	"time"
)

// Record 是一条已持久化的快照版本。
// 快照不可变：每次事件产生一个 Version 递增的新记录，从不原地修改。
type Record struct {
	Machine   string
	EntityID  string
	Version   int64
	Status    Status
	Data      []byte
	CreatedAt time.Time
}

// Store 是快照的持久化存储，按 (machine, entityID) 分区。
// 实现方必须保证 (machine, entityID, version) 的唯一性：
// Save 写入已存在的版本号时返回 ErrConcurrentModification，
// 这是引擎对单实体并发事件做乐观串行化的基础。
type Store interface {
	// Load 返回实体的最新快照版本，没有任何快照时返回 ErrNotFound
	Load(ctx context.Context, machine, entityID string) (*Record, error)

	// Save 追加一个新的快照版本
	Save(ctx context.Context, record *Record) error
}

// Cache 是最新快照的快速读缓存。
// 缓存故障不能影响状态机的正确性，引擎对 Cache 的错误只记录不传播。
type Cache interface {
	// Get 返回缓存的快照数据，未命中时返回 (nil, nil)
	Get(ctx context.Context, machine, entityID string) ([]byte, error)
	Put(ctx context.Context, machine, entityID string, data []byte) error
	Del(ctx context.Context, machine, entityID string) error
}
