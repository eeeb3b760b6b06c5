// internal/service/order/infrastructure/adapter/trading_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"vesta/internal/pkg/httpclient"
	"vesta/internal/service/order/port"
)

// TradingHTTPAdapter 是 port.TradingService 接口的 HTTP 实现
type TradingHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewTradingHTTPAdapter(client *httpclient.Client, baseURL string) *TradingHTTPAdapter {
	return &TradingHTTPAdapter{client: client, baseURL: baseURL}
}

// GetPayResult 查询交易系统中订单的权威支付结果
func (a *TradingHTTPAdapter) GetPayResult(ctx context.Context, orderID string) (*port.PayResult, error) {
	params := url.Values{}
	params.Set("orders_id", orderID)

	var resp port.PayResult
	if err := a.client.PostForm(ctx, a.baseURL+"/trading/pay_result", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refund 按交易单号发起退款
func (a *TradingHTTPAdapter) Refund(ctx context.Context, tradingOrderNo string, amount float64) error {
	params := url.Values{}
	params.Set("trading_order_no", tradingOrderNo)
	params.Set("refund_amount", strconv.FormatFloat(amount, 'f', 2, 64))
	return a.client.PostForm(ctx, a.baseURL+"/trading/refund", params, nil)
}
