// internal/statemachine/machine.go
package statemachine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vesta/internal/pkg/logger"
)

// Snapshot 约束了引擎可以驱动的快照类型。
// Merge 的约定：patch 中的非零值字段覆盖当前快照中的对应字段。
type Snapshot[T any] interface {
	Status() Status
	WithStatus(status Status) T
	Merge(patch T) T
}

// PostProcessor 是状态机级别的后置钩子，每次成功转换后执行一次。
// 典型用途：把快照回写到查询模型、发领域通知。
type PostProcessor[T any] func(ctx context.Context, snapshot T) error

// Machine 是通用的状态机引擎：加载、校验、合并、持久化全部走注入的
// Table / Store / Cache，业务实体只需要实现 Snapshot 接口。
type Machine[T Snapshot[T]] struct {
	table       *Table[T]
	store       Store
	cache       Cache
	postProcess PostProcessor[T]
	tracer      trace.Tracer
}

// New 创建一个引擎实例，postProcess 可以为 nil
func New[T Snapshot[T]](table *Table[T], store Store, cache Cache, postProcess PostProcessor[T]) *Machine[T] {
	return &Machine[T]{
		table:       table,
		store:       store,
		cache:       cache,
		postProcess: postProcess,
		tracer:      otel.Tracer("statemachine/" + table.Name()),
	}
}

// Name 返回状态机名称
func (m *Machine[T]) Name() string { return m.table.Name() }

// Init 写入实体的第一个快照。快照状态必须等于表声明的初始状态；
// 实体已存在时返回 ErrConcurrentModification。
func (m *Machine[T]) Init(ctx context.Context, entityID string, snapshot T) error {
	if snapshot.Status() != m.table.Initial() {
		return errors.Wrapf(ErrInvalidTransition,
			"machine %q: initial snapshot must have status %s, got %s",
			m.table.Name(), m.table.Initial(), snapshot.Status())
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal initial snapshot")
	}
	record := &Record{
		Machine:   m.table.Name(),
		EntityID:  entityID,
		Version:   1,
		Status:    snapshot.Status(),
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := m.store.Save(ctx, record); err != nil {
		return err
	}
	m.putCache(ctx, entityID, data)
	return nil
}

// CurrentSnapshot 读最新快照：先查缓存，未命中回源到持久存储并回填缓存
func (m *Machine[T]) CurrentSnapshot(ctx context.Context, entityID string) (T, error) {
	var zero T

	data, err := m.cache.Get(ctx, m.table.Name(), entityID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("entity_id", entityID).Msg("snapshot cache read failed, falling back to store")
	}
	if data != nil {
		var snap T
		if err := json.Unmarshal(data, &snap); err == nil {
			return snap, nil
		}
		// 缓存内容损坏按未命中处理
		logger.Ctx(ctx).Warn().Str("entity_id", entityID).Msg("corrupt snapshot in cache, reloading from store")
	}

	record, err := m.store.Load(ctx, m.table.Name(), entityID)
	if err != nil {
		return zero, err
	}
	var snap T
	if err := json.Unmarshal(record.Data, &snap); err != nil {
		return zero, errors.Wrapf(err, "unmarshal snapshot of entity %s", entityID)
	}
	m.putCache(ctx, entityID, record.Data)
	return snap, nil
}

// FreshSnapshot 绕过缓存直接读持久存储，并把结果刷回缓存。
// 用于"刚刚发生的状态变更必须立刻可见"的读取。
func (m *Machine[T]) FreshSnapshot(ctx context.Context, entityID string) (T, error) {
	var zero T
	record, err := m.store.Load(ctx, m.table.Name(), entityID)
	if err != nil {
		return zero, err
	}
	var snap T
	if err := json.Unmarshal(record.Data, &snap); err != nil {
		return zero, errors.Wrapf(err, "unmarshal snapshot of entity %s", entityID)
	}
	m.putCache(ctx, entityID, record.Data)
	return snap, nil
}

// ChangeStatus 用事件驱动一次状态转换：
// 读取当前快照 -> 查转换表 -> 合并 patch -> 以读到的版本为条件持久化新版本
// -> 刷新缓存 -> 执行钩子。并发事件竞争同一实体时最多一个成功，
// 输掉的一方拿到 ErrConcurrentModification。
func (m *Machine[T]) ChangeStatus(ctx context.Context, actorID, entityID string, event Event, patch T) (T, error) {
	var zero T

	ctx, span := m.tracer.Start(ctx, "statemachine.ChangeStatus", trace.WithAttributes(
		attribute.String("statemachine.name", m.table.Name()),
		attribute.String("statemachine.entity_id", entityID),
		attribute.String("statemachine.event", string(event)),
	))
	defer span.End()

	record, err := m.store.Load(ctx, m.table.Name(), entityID)
	if err != nil {
		return zero, err
	}

	transition, err := m.table.Next(record.Status, event)
	if err != nil {
		return zero, err
	}

	var current T
	if err := json.Unmarshal(record.Data, &current); err != nil {
		return zero, errors.Wrapf(err, "unmarshal snapshot of entity %s", entityID)
	}

	next := current.Merge(patch).WithStatus(transition.To)
	data, err := json.Marshal(next)
	if err != nil {
		return zero, errors.Wrap(err, "marshal next snapshot")
	}

	// 新版本号在读到的版本上加一；版本冲突即乐观校验失败
	newRecord := &Record{
		Machine:   m.table.Name(),
		EntityID:  entityID,
		Version:   record.Version + 1,
		Status:    transition.To,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := m.store.Save(ctx, newRecord); err != nil {
		return zero, err
	}

	m.putCache(ctx, entityID, data)

	logger.Ctx(ctx).Info().
		Str("machine", m.table.Name()).
		Str("entity_id", entityID).
		Str("actor_id", actorID).
		Str("event", string(event)).
		Str("from", string(record.Status)).
		Str("to", string(transition.To)).
		Msg("state transition applied")

	// 钩子失败只记录：转换本身已持久化，副作用由补偿或人工对账兜底
	if transition.Hook != nil {
		if err := transition.Hook(ctx, next); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("entity_id", entityID).Str("event", string(event)).
				Msg("transition hook failed after persisted transition")
		}
	}
	if m.postProcess != nil {
		if err := m.postProcess(ctx, next); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("entity_id", entityID).
				Msg("post-processor failed after persisted transition")
		}
	}

	return next, nil
}

func (m *Machine[T]) putCache(ctx context.Context, entityID string, data []byte) {
	if err := m.cache.Put(ctx, m.table.Name(), entityID, data); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("entity_id", entityID).Msg("snapshot cache write failed")
	}
}
