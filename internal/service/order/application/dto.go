// internal/service/order/application/dto.go
package application

import (
	"context"
	"time"

	"vesta/internal/service/order/domain"
)

// PlaceOrderRequest 是下单请求的应用层 DTO
type PlaceOrderRequest struct {
	UserID         string   `json:"userId"`
	DiscountAmount *float64 `json:"discountAmount,omitempty"`
}

// PlaceOrderResponse 下单结果
type PlaceOrderResponse struct {
	OrderID      string             `json:"orderId"`
	OrdersStatus domain.OrderStatus `json:"ordersStatus"`
	CreateTime   time.Time          `json:"createTime"`
}

// OrderCancelRequest 是取消订单请求的应用层 DTO
type OrderCancelRequest struct {
	OrderID       string           `json:"orderId"`
	CancellerID   string           `json:"cancellerId"`
	CancellerName string           `json:"cancellerName"`
	CancellerType domain.ActorType `json:"cancellerType"`
	CancelReason  string           `json:"cancelReason"`
}

// OrderSimple 是列表页渲染用的精简订单视图
type OrderSimple struct {
	ID             string              `json:"id"`
	OrdersStatus   domain.OrderStatus  `json:"ordersStatus"`
	PayStatus      domain.PayStatus    `json:"payStatus"`
	DiscountAmount *float64            `json:"discountAmount,omitempty"`
	RefundStatus   domain.RefundStatus `json:"refundStatus,omitempty"`
	RealPayAmount  float64             `json:"realPayAmount,omitempty"`
	CreateTime     time.Time           `json:"createTime"`
	SortBy         int64               `json:"sortBy"`
}

// BatchLoader 在列表缓存未命中时回源查询
type BatchLoader func(ctx context.Context, missedIDs []string) (map[string]OrderSimple, error)

// ListCache 是列表页的 cache-aside 批量读取端口，由 Redis 适配器实现
type ListCache interface {
	BatchGet(ctx context.Context, keyPrefix string, ids []string, loader BatchLoader, ttl time.Duration) ([]OrderSimple, error)
}

func toOrderSimple(o *domain.Orders) OrderSimple {
	return OrderSimple{
		ID:             o.ID,
		OrdersStatus:   o.OrdersStatus,
		PayStatus:      o.PayStatus,
		DiscountAmount: o.DiscountAmount,
		RefundStatus:   o.RefundStatus,
		RealPayAmount:  o.RealPayAmount,
		CreateTime:     o.CreateTime,
		SortBy:         o.CreateTime.UnixMilli(),
	}
}
