// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"vesta/internal/service/order/domain"
)

// GormOrdersRepository 是 domain.OrdersRepository 的 GORM 实现
type GormOrdersRepository struct {
	db *gorm.DB
}

func NewGormOrdersRepository(db *gorm.DB) *GormOrdersRepository {
	return &GormOrdersRepository{db: db}
}

func (r *GormOrdersRepository) Save(ctx context.Context, order *domain.Orders) error {
	return r.db.WithContext(ctx).Create(fromDomainOrder(order)).Error
}

func (r *GormOrdersRepository) FindByID(ctx context.Context, id string) (*domain.Orders, error) {
	var model OrdersModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrdersRepository) BatchQuery(ctx context.Context, ids []string) ([]*domain.Orders, error) {
	var models []*OrdersModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Orders, len(models))
	for i, m := range models {
		orders[i] = toDomainOrder(m)
	}
	return orders, nil
}

// PageQueryIDs 覆盖索引查询：只取 id 列，按 sort_by 倒序滚动
func (r *GormOrdersRepository) PageQueryIDs(ctx context.Context, userID string, status *domain.OrderStatus, sortBy *int64, pageSize int) ([]string, error) {
	query := r.db.WithContext(ctx).Model(&OrdersModel{}).
		Select("id").
		Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("orders_status = ?", string(*status))
	}
	if sortBy != nil {
		query = query.Where("sort_by < ?", *sortBy)
	}

	var ids []string
	err := query.Order("sort_by DESC").Limit(pageSize).Pluck("id", &ids).Error
	return ids, err
}

// SyncFromSnapshot 把快照中的可见状态回写到订单行
func (r *GormOrdersRepository) SyncFromSnapshot(ctx context.Context, snapshot domain.OrderSnapshot) error {
	updates := map[string]interface{}{
		"orders_status": string(snapshot.OrdersStatus),
		"pay_status":    string(snapshot.PayStatus),
		"update_time":   time.Now(),
	}
	if snapshot.RefundStatus != "" {
		updates["refund_status"] = string(snapshot.RefundStatus)
	}
	if snapshot.TradingOrderNo != "" {
		updates["trading_order_no"] = snapshot.TradingOrderNo
	}
	if snapshot.RealPayAmount != 0 {
		updates["real_pay_amount"] = snapshot.RealPayAmount
	}
	return r.db.WithContext(ctx).Model(&OrdersModel{}).
		Where("id = ?", snapshot.ID).
		Updates(updates).Error
}

func (r *GormOrdersRepository) UpdateRefundStatus(ctx context.Context, id string, status domain.RefundStatus) error {
	return r.db.WithContext(ctx).Model(&OrdersModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"refund_status": string(status),
			"update_time":   time.Now(),
		}).Error
}

// GormOrdersCanceledRepository 是 domain.OrdersCanceledRepository 的 GORM 实现
type GormOrdersCanceledRepository struct {
	db *gorm.DB
}

func NewGormOrdersCanceledRepository(db *gorm.DB) *GormOrdersCanceledRepository {
	return &GormOrdersCanceledRepository{db: db}
}

func (r *GormOrdersCanceledRepository) Save(ctx context.Context, record *domain.OrdersCanceled) error {
	model := OrdersCanceledModel{
		OrderID:       record.OrderID,
		CancellerID:   record.CancellerID,
		CancellerName: record.CancellerName,
		CancellerType: string(record.CancellerType),
		CancelReason:  record.CancelReason,
		CancelTime:    record.CancelTime,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	record.ID = int64(model.ID)
	return nil
}

func (r *GormOrdersCanceledRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&OrdersCanceledModel{}).Error
}

// GormOrdersRefundRepository 是 domain.OrdersRefundRepository 的 GORM 实现
type GormOrdersRefundRepository struct {
	db *gorm.DB
}

func NewGormOrdersRefundRepository(db *gorm.DB) *GormOrdersRefundRepository {
	return &GormOrdersRefundRepository{db: db}
}

func (r *GormOrdersRefundRepository) Save(ctx context.Context, record *domain.OrdersRefund) error {
	model := OrdersRefundModel{
		OrderID:        record.OrderID,
		TradingOrderNo: record.TradingOrderNo,
		RealPayAmount:  record.RealPayAmount,
		RefundStatus:   string(record.RefundStatus),
		CreateTime:     record.CreateTime,
		UpdateTime:     record.UpdateTime,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	record.ID = int64(model.ID)
	return nil
}

func (r *GormOrdersRefundRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.OrdersRefund, error) {
	var model OrdersRefundModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainRefund(&model), nil
}

func (r *GormOrdersRefundRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&OrdersRefundModel{}).Error
}

func (r *GormOrdersRefundRepository) UpdateStatus(ctx context.Context, orderID string, status domain.RefundStatus) error {
	return r.db.WithContext(ctx).Model(&OrdersRefundModel{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"refund_status": string(status),
			"update_time":   time.Now(),
		}).Error
}

func (r *GormOrdersRefundRepository) ListPending(ctx context.Context, olderThan int64, limit int) ([]*domain.OrdersRefund, error) {
	var models []*OrdersRefundModel
	err := r.db.WithContext(ctx).
		Where("refund_status <> ?", string(domain.RefundStatusRefunded)).
		Where("create_time < ?", time.UnixMilli(olderThan)).
		Order("create_time ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]*domain.OrdersRefund, len(models))
	for i, m := range models {
		records[i] = toDomainRefund(m)
	}
	return records, nil
}
