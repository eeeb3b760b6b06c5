// internal/service/order/port/coupon.go
package port

import "context"

// CouponService 是优惠券服务的出站端口。
// 订单侧只读预占信息、做核销回退，从不直接改优惠券的状态。
type CouponService interface {
	// GetCouponID 根据订单 id 查询该订单预占的优惠券 id
	GetCouponID(ctx context.Context, orderID string) (int64, error)

	// UseBack 释放一张已核销的优惠券，使其回到可用状态。
	// 返回本次调用是否真正释放了券：重复回退是幂等空操作，返回 false，
	// 调用方回滚时不应再对其做逆向核销。
	UseBack(ctx context.Context, couponID int64, orderID, userID string) (bool, error)

	// Use 重新核销一张优惠券。UseBack 的逆操作，仅供 saga 回滚调用。
	Use(ctx context.Context, couponID int64, orderID, userID string) error
}
