// internal/service/coupon/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"database/sql"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"vesta/internal/service/coupon/domain"
)

// NewMysqlDB 初始化优惠券服务的数据库连接并迁移表结构
func NewMysqlDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open mysql connection")
	}
	if err := db.AutoMigrate(&UserCouponModel{}); err != nil {
		return nil, pkgerrors.Wrap(err, "auto migrate coupon tables")
	}
	return db, nil
}

// GormCouponRepository 是 CouponRepository 的 GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) FindByID(ctx context.Context, id int64) (*domain.UserCoupon, error) {
	var model UserCouponModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrapf(domain.ErrCouponNotFound, "coupon %d", id)
		}
		return nil, err
	}
	return toDomainCoupon(&model), nil
}

func (r *GormCouponRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.UserCoupon, error) {
	var model UserCouponModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrapf(domain.ErrCouponNotFound, "order %s", orderID)
		}
		return nil, err
	}
	return toDomainCoupon(&model), nil
}

func (r *GormCouponRepository) Save(ctx context.Context, coupon *domain.UserCoupon) error {
	updates := map[string]interface{}{
		"status":  string(coupon.Status),
		"used_at": sql.NullTime{},
	}
	if coupon.OrderID != "" {
		updates["order_id"] = coupon.OrderID
	} else {
		updates["order_id"] = sql.NullString{}
	}
	if coupon.UsedAt != nil {
		updates["used_at"] = sql.NullTime{Time: *coupon.UsedAt, Valid: true}
	}
	return r.db.WithContext(ctx).Model(&UserCouponModel{}).
		Where("id = ?", coupon.ID).
		Updates(updates).Error
}
