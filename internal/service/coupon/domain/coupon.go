// internal/service/coupon/domain/coupon.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// UserCouponStatus 定义了用户优惠券的生命周期状态
type UserCouponStatus string

const (
	StatusUnused  UserCouponStatus = "UNUSED"  // 未使用
	StatusUsed    UserCouponStatus = "USED"    // 已核销（绑定到某个订单）
	StatusExpired UserCouponStatus = "EXPIRED" // 已过期
)

var (
	ErrCouponNotFound      = errors.New("coupon: not found")
	ErrCouponExpired       = errors.New("coupon: expired")
	ErrCouponAlreadyUsed   = errors.New("coupon: already used")
	ErrCouponStatusInvalid = errors.New("coupon: status does not allow this operation")
)

// UserCoupon 代表一个用户持有的一张具体的优惠券实例
type UserCoupon struct {
	ID             int64
	UserID         string
	Status         UserCouponStatus
	DiscountAmount float64

	// OrderID 非空表示这张券被该订单核销占用
	OrderID string

	ReceivedAt time.Time
	UsedAt     *time.Time
	ExpiredAt  time.Time
}

// Use 把优惠券核销到指定订单上
func (uc *UserCoupon) Use(orderID string) error {
	if uc.Status == StatusUsed {
		// 幂等：同一订单重复核销不算错误
		if uc.OrderID == orderID {
			return nil
		}
		return errors.Wrapf(ErrCouponAlreadyUsed, "coupon %d already bound to order %s", uc.ID, uc.OrderID)
	}
	if uc.Status != StatusUnused {
		return errors.Wrapf(ErrCouponStatusInvalid, "coupon %d status %s", uc.ID, uc.Status)
	}
	if time.Now().After(uc.ExpiredAt) {
		return errors.Wrapf(ErrCouponExpired, "coupon %d", uc.ID)
	}
	now := time.Now()
	uc.Status = StatusUsed
	uc.OrderID = orderID
	uc.UsedAt = &now
	return nil
}

// UseBack 释放一张已核销的优惠券，使其回到可用状态。
// 订单取消时由订单服务调用。返回值表示本次调用是否真正释放了券：
// 幂等的重复回退返回 false，调用方不应再对其做逆向核销。
func (uc *UserCoupon) UseBack(orderID string) (bool, error) {
	if uc.Status == StatusUnused {
		// 幂等：重复回退不算错误，但也没有释放任何东西
		return false, nil
	}
	if uc.Status != StatusUsed {
		return false, errors.Wrapf(ErrCouponStatusInvalid, "coupon %d status %s", uc.ID, uc.Status)
	}
	if uc.OrderID != orderID {
		return false, errors.Wrapf(ErrCouponStatusInvalid, "coupon %d bound to order %s, not %s", uc.ID, uc.OrderID, orderID)
	}
	uc.Status = StatusUnused
	uc.OrderID = ""
	uc.UsedAt = nil
	return true, nil
}
