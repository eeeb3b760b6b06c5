// internal/service/order/domain/snapshot.go
package domain

import (
	"time"

	"vesta/internal/statemachine"
)

// OrderSnapshot 是订单在事件历史中某个时间点的完整物化状态。
// 快照一旦写入不再修改：每个事件产生一个新快照。
type OrderSnapshot struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	OrdersStatus OrderStatus  `json:"ordersStatus"`
	PayStatus    PayStatus    `json:"payStatus"`
	RefundStatus RefundStatus `json:"refundStatus,omitempty"`

	// DiscountAmount 非空表示下单时使用了优惠券
	DiscountAmount *float64 `json:"discountAmount,omitempty"`

	CreateTime time.Time `json:"createTime"`

	CancellerID   string     `json:"cancellerId,omitempty"`
	CancellerType ActorType  `json:"cancellerType,omitempty"`
	CancelTime    *time.Time `json:"cancelTime,omitempty"`
	CancelReason  string     `json:"cancelReason,omitempty"`

	TradingOrderNo string  `json:"tradingOrderNo,omitempty"`
	RealPayAmount  float64 `json:"realPayAmount,omitempty"`
}

// Status 实现 statemachine.Snapshot
func (s OrderSnapshot) Status() statemachine.Status {
	return statemachine.Status(s.OrdersStatus)
}

// WithStatus 返回状态被替换后的快照副本
func (s OrderSnapshot) WithStatus(status statemachine.Status) OrderSnapshot {
	s.OrdersStatus = OrderStatus(status)
	return s
}

// Merge 把 patch 中的非零值字段合并进当前快照的副本并返回。
// 身份字段（ID、UserID、CreateTime）只在缺失时补齐。
func (s OrderSnapshot) Merge(patch OrderSnapshot) OrderSnapshot {
	if s.ID == "" {
		s.ID = patch.ID
	}
	if s.UserID == "" {
		s.UserID = patch.UserID
	}
	if s.CreateTime.IsZero() {
		s.CreateTime = patch.CreateTime
	}

	if patch.PayStatus != "" {
		s.PayStatus = patch.PayStatus
	}
	if patch.RefundStatus != "" {
		s.RefundStatus = patch.RefundStatus
	}
	if patch.DiscountAmount != nil {
		s.DiscountAmount = patch.DiscountAmount
	}
	if patch.CancellerID != "" {
		s.CancellerID = patch.CancellerID
	}
	if patch.CancellerType != "" {
		s.CancellerType = patch.CancellerType
	}
	if patch.CancelTime != nil {
		s.CancelTime = patch.CancelTime
	}
	if patch.CancelReason != "" {
		s.CancelReason = patch.CancelReason
	}
	if patch.TradingOrderNo != "" {
		s.TradingOrderNo = patch.TradingOrderNo
	}
	if patch.RealPayAmount != 0 {
		s.RealPayAmount = patch.RealPayAmount
	}
	return s
}
