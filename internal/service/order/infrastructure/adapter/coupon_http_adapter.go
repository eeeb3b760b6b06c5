// internal/service/order/infrastructure/adapter/coupon_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"vesta/internal/pkg/httpclient"
)

// CouponHTTPAdapter 是 port.CouponService 接口的 HTTP 实现，
// 调用优惠券服务暴露的预占查询 / 回退 / 核销接口。
type CouponHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewCouponHTTPAdapter(client *httpclient.Client, baseURL string) *CouponHTTPAdapter {
	return &CouponHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *CouponHTTPAdapter) GetCouponID(ctx context.Context, orderID string) (int64, error) {
	params := url.Values{}
	params.Set("orders_id", orderID)

	var resp struct {
		CouponID int64 `json:"couponId"`
	}
	if err := a.client.PostForm(ctx, a.baseURL+"/coupon/get_coupon_id", params, &resp); err != nil {
		return 0, err
	}
	return resp.CouponID, nil
}

func (a *CouponHTTPAdapter) UseBack(ctx context.Context, couponID int64, orderID, userID string) (bool, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(couponID, 10))
	params.Set("orders_id", orderID)
	params.Set("user_id", userID)

	var resp struct {
		Released bool `json:"released"`
	}
	if err := a.client.PostForm(ctx, a.baseURL+"/coupon/use_back", params, &resp); err != nil {
		return false, err
	}
	return resp.Released, nil
}

func (a *CouponHTTPAdapter) Use(ctx context.Context, couponID int64, orderID, userID string) error {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(couponID, 10))
	params.Set("orders_id", orderID)
	params.Set("user_id", userID)
	return a.client.PostForm(ctx, a.baseURL+"/coupon/use", params, nil)
}
