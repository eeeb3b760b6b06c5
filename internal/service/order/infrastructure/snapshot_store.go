// internal/service/order/infrastructure/snapshot_store.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vesta/internal/statemachine"
)

// GormSnapshotStore 是 statemachine.Store 的 GORM 实现。
// 每个版本一行，(machine, entity_id, version) 唯一索引把并发写冲突
// 翻译成 ErrConcurrentModification。
type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

func (s *GormSnapshotStore) Load(ctx context.Context, machine, entityID string) (*statemachine.Record, error) {
	var model StateSnapshotModel
	err := s.db.WithContext(ctx).
		Where("machine = ? AND entity_id = ?", machine, entityID).
		Order("version DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, statemachine.ErrNotFound
		}
		return nil, err
	}
	return &statemachine.Record{
		Machine:   model.Machine,
		EntityID:  model.EntityID,
		Version:   model.Version,
		Status:    statemachine.Status(model.Status),
		Data:      model.Data,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (s *GormSnapshotStore) Save(ctx context.Context, record *statemachine.Record) error {
	err := s.db.WithContext(ctx).Create(&StateSnapshotModel{
		Machine:   record.Machine,
		EntityID:  record.EntityID,
		Version:   record.Version,
		Status:    string(record.Status),
		Data:      record.Data,
		CreatedAt: record.CreatedAt,
	}).Error
	if err != nil {
		// 需要 gorm.Config.TranslateError 开启错误翻译
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return statemachine.ErrConcurrentModification
		}
		return err
	}
	return nil
}
