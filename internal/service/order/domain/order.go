// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// Orders 是订单表的持久化记录，是取消编排时读取的权威当前状态。
// 它由状态机的后置钩子从快照同步，业务代码从不直接改它的状态字段。
type Orders struct {
	ID             string
	UserID         string
	OrdersStatus   OrderStatus
	PayStatus      PayStatus
	RefundStatus   RefundStatus
	DiscountAmount *float64
	TradingOrderNo string
	RealPayAmount  float64
	CreateTime     time.Time
	UpdateTime     time.Time
}

// NewOrder 工厂函数：创建一个待支付状态的新订单
func NewOrder(id, userID, tradingOrderNo string, discountAmount *float64) (*Orders, error) {
	if id == "" || userID == "" {
		return nil, errors.New("cannot create order with empty id or user id")
	}
	now := time.Now()
	return &Orders{
		ID:             id,
		UserID:         userID,
		OrdersStatus:   StatusUnpaid,
		PayStatus:      PayStatusNoPay,
		DiscountAmount: discountAmount,
		TradingOrderNo: tradingOrderNo,
		CreateTime:     now,
		UpdateTime:     now,
	}, nil
}

// Snapshot 构建订单的初始快照
func (o *Orders) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		ID:             o.ID,
		UserID:         o.UserID,
		OrdersStatus:   o.OrdersStatus,
		PayStatus:      o.PayStatus,
		RefundStatus:   o.RefundStatus,
		DiscountAmount: o.DiscountAmount,
		TradingOrderNo: o.TradingOrderNo,
		RealPayAmount:  o.RealPayAmount,
		CreateTime:     o.CreateTime,
	}
}

// OrdersCanceled 是取消订单的审计记录，只追加不修改。
// 每次进入补偿写入阶段的取消尝试产生一条。
// ID 由仓储在写入时填充，补偿只删除本次尝试产生的那一条。
type OrdersCanceled struct {
	ID            int64
	OrderID       string
	CancellerID   string
	CancellerName string
	CancellerType ActorType
	CancelReason  string
	CancelTime    time.Time
}

// OrdersRefund 是退款记录，仅在派单中阶段取消订单时创建，
// 驱动下游的退款执行与重试。
type OrdersRefund struct {
	ID             int64
	OrderID        string
	TradingOrderNo string
	RealPayAmount  float64
	RefundStatus   RefundStatus
	CreateTime     time.Time
	UpdateTime     time.Time
}
