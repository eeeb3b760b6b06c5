// internal/service/coupon/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"vesta/internal/service/coupon/domain"
)

// UserCouponModel 对应数据库中的 user_coupon 表
type UserCouponModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         string `gorm:"type:varchar(64);index"`
	Status         string `gorm:"type:varchar(16)"`
	DiscountAmount float64
	OrderID        sql.NullString `gorm:"type:varchar(64);index"`
	ReceivedAt     time.Time
	UsedAt         sql.NullTime
	ExpiredAt      time.Time
}

func (UserCouponModel) TableName() string {
	return "user_coupon"
}

func toDomainCoupon(model *UserCouponModel) *domain.UserCoupon {
	coupon := &domain.UserCoupon{
		ID:             model.ID,
		UserID:         model.UserID,
		Status:         domain.UserCouponStatus(model.Status),
		DiscountAmount: model.DiscountAmount,
		ReceivedAt:     model.ReceivedAt,
		ExpiredAt:      model.ExpiredAt,
	}
	if model.OrderID.Valid {
		coupon.OrderID = model.OrderID.String
	}
	if model.UsedAt.Valid {
		t := model.UsedAt.Time
		coupon.UsedAt = &t
	}
	return coupon
}

func fromDomainCoupon(coupon *domain.UserCoupon) *UserCouponModel {
	model := &UserCouponModel{
		ID:             coupon.ID,
		UserID:         coupon.UserID,
		Status:         string(coupon.Status),
		DiscountAmount: coupon.DiscountAmount,
		ReceivedAt:     coupon.ReceivedAt,
		ExpiredAt:      coupon.ExpiredAt,
	}
	if coupon.OrderID != "" {
		model.OrderID = sql.NullString{String: coupon.OrderID, Valid: true}
	}
	if coupon.UsedAt != nil {
		model.UsedAt = sql.NullTime{Time: *coupon.UsedAt, Valid: true}
	}
	return model
}
