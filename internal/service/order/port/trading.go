// internal/service/order/port/trading.go
package port

import (
	"context"

	"vesta/internal/service/order/domain"
)

// PayResult 是交易系统返回的权威支付结果
type PayResult struct {
	OrderID        string           `json:"orderId"`
	PayStatus      domain.PayStatus `json:"payStatus"`
	TradingOrderNo string           `json:"tradingOrderNo"`
	RealPayAmount  float64          `json:"realPayAmount"`
}

// TradingService 是交易/支付服务的出站端口
type TradingService interface {
	// GetPayResult 向交易系统确认订单的最新支付状态
	GetPayResult(ctx context.Context, orderID string) (*PayResult, error)

	// Refund 按交易单号发起退款
	Refund(ctx context.Context, tradingOrderNo string, amount float64) error
}
