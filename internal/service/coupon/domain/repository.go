// internal/service/coupon/domain/repository.go
package domain

import "context"

// CouponRepository 定义了用户优惠券的持久化接口，由基础设施层实现
type CouponRepository interface {
	// FindByID 根据 id 查找优惠券，不存在时返回 ErrCouponNotFound
	FindByID(ctx context.Context, id int64) (*UserCoupon, error)

	// FindByOrderID 查找被某订单核销占用的优惠券，不存在时返回 ErrCouponNotFound
	FindByOrderID(ctx context.Context, orderID string) (*UserCoupon, error)

	// Save 保存优惠券的状态变更
	Save(ctx context.Context, coupon *UserCoupon) error
}
