// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"vesta/internal/service/order/domain"
)

// OrdersModel 对应数据库中的 orders 表
type OrdersModel struct {
	ID             string  `gorm:"primaryKey;size:64"`
	UserID         string  `gorm:"size:64;index:idx_user_sort"`
	OrdersStatus   string  `gorm:"size:32;index"`
	PayStatus      string  `gorm:"size:32"`
	RefundStatus   string  `gorm:"size:32"`
	DiscountAmount *float64 `gorm:"type:decimal(10,2)"`
	TradingOrderNo string  `gorm:"size:64"`
	RealPayAmount  float64 `gorm:"type:decimal(10,2)"`
	SortBy         int64   `gorm:"index:idx_user_sort"` // 创建时间毫秒值，滚动分页游标
	CreateTime     time.Time
	UpdateTime     time.Time
}

func (OrdersModel) TableName() string {
	return "orders"
}

// OrdersCanceledModel 对应数据库中的 orders_canceled 表，只追加
type OrdersCanceledModel struct {
	ID            uint   `gorm:"primaryKey"`
	OrderID       string `gorm:"column:order_id;size:64;index"`
	CancellerID   string `gorm:"size:64"`
	CancellerName string `gorm:"size:64"`
	CancellerType string `gorm:"size:16"`
	CancelReason  string `gorm:"size:255"`
	CancelTime    time.Time
}

func (OrdersCanceledModel) TableName() string {
	return "orders_canceled"
}

// OrdersRefundModel 对应数据库中的 orders_refund 表
type OrdersRefundModel struct {
	ID             uint   `gorm:"primaryKey"`
	OrderID        string `gorm:"column:order_id;size:64;uniqueIndex"`
	TradingOrderNo string `gorm:"size:64"`
	RealPayAmount  float64 `gorm:"type:decimal(10,2)"`
	RefundStatus   string  `gorm:"size:32;index"`
	CreateTime     time.Time
	UpdateTime     time.Time
}

func (OrdersRefundModel) TableName() string {
	return "orders_refund"
}

// StateSnapshotModel 对应数据库中的 state_snapshot 表。
// (machine, entity_id, version) 的唯一索引是状态机乐观并发校验的落点。
type StateSnapshotModel struct {
	ID        uint   `gorm:"primaryKey"`
	Machine   string `gorm:"size:32;uniqueIndex:uk_machine_entity_version"`
	EntityID  string `gorm:"column:entity_id;size:64;uniqueIndex:uk_machine_entity_version"`
	Version   int64  `gorm:"uniqueIndex:uk_machine_entity_version"`
	Status    string `gorm:"size:32"`
	Data      []byte `gorm:"type:json"`
	CreatedAt time.Time
}

func (StateSnapshotModel) TableName() string {
	return "state_snapshot"
}

// --- 模型与领域对象的转换 ---

func toDomainOrder(m *OrdersModel) *domain.Orders {
	return &domain.Orders{
		ID:             m.ID,
		UserID:         m.UserID,
		OrdersStatus:   domain.OrderStatus(m.OrdersStatus),
		PayStatus:      domain.PayStatus(m.PayStatus),
		RefundStatus:   domain.RefundStatus(m.RefundStatus),
		DiscountAmount: m.DiscountAmount,
		TradingOrderNo: m.TradingOrderNo,
		RealPayAmount:  m.RealPayAmount,
		CreateTime:     m.CreateTime,
		UpdateTime:     m.UpdateTime,
	}
}

func fromDomainOrder(o *domain.Orders) *OrdersModel {
	return &OrdersModel{
		ID:             o.ID,
		UserID:         o.UserID,
		OrdersStatus:   string(o.OrdersStatus),
		PayStatus:      string(o.PayStatus),
		RefundStatus:   string(o.RefundStatus),
		DiscountAmount: o.DiscountAmount,
		TradingOrderNo: o.TradingOrderNo,
		RealPayAmount:  o.RealPayAmount,
		SortBy:         o.CreateTime.UnixMilli(),
		CreateTime:     o.CreateTime,
		UpdateTime:     o.UpdateTime,
	}
}

func toDomainRefund(m *OrdersRefundModel) *domain.OrdersRefund {
	return &domain.OrdersRefund{
		ID:             int64(m.ID),
		OrderID:        m.OrderID,
		TradingOrderNo: m.TradingOrderNo,
		RealPayAmount:  m.RealPayAmount,
		RefundStatus:   domain.RefundStatus(m.RefundStatus),
		CreateTime:     m.CreateTime,
		UpdateTime:     m.UpdateTime,
	}
}
