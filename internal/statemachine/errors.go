// internal/statemachine/errors.go
package statemachine

import "errors"

var (
	// ErrNotFound 实体还没有任何快照
	ErrNotFound = errors.New("statemachine: snapshot not found")

	// ErrInvalidTransition 转换表中不存在 (当前状态, 事件) 对应的条目
	ErrInvalidTransition = errors.New("statemachine: invalid transition")

	// ErrConcurrentModification 乐观校验失败：并发事件竞争同一实体时输掉的一方。
	// 调用方应重新读取当前状态后重试。
	ErrConcurrentModification = errors.New("statemachine: concurrent modification")
)
