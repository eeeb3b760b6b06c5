// internal/service/coupon/application/service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vesta/internal/pkg/logger"
	"vesta/internal/service/coupon/domain"
)

// CouponApplicationService 承载优惠券的核销、回退和按订单查询。
// 回退和重新核销都是幂等的：订单侧的补偿序列可能重复调用。
type CouponApplicationService struct {
	couponRepo domain.CouponRepository
	tracer     trace.Tracer
}

func NewCouponApplicationService(repo domain.CouponRepository, tracer trace.Tracer) *CouponApplicationService {
	return &CouponApplicationService{couponRepo: repo, tracer: tracer}
}

// GetCouponIDByOrder 返回被某订单核销占用的优惠券 id
func (s *CouponApplicationService) GetCouponIDByOrder(ctx context.Context, orderID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.GetCouponIDByOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	coupon, err := s.couponRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return coupon.ID, nil
}

// UseBack 释放一张已核销的优惠券。返回本次是否真正释放了券，
// 幂等的重复回退返回 false。
func (s *CouponApplicationService) UseBack(ctx context.Context, couponID int64, orderID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "coupon.UseBack", trace.WithAttributes(
		attribute.Int64("coupon.id", couponID),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	released, err := coupon.UseBack(orderID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if !released {
		logger.Ctx(ctx).Info().Int64("coupon_id", couponID).Str("order_id", orderID).Msg("coupon already unused, nothing to release")
		return false, nil
	}
	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		span.RecordError(err)
		return false, err
	}

	logger.Ctx(ctx).Info().Int64("coupon_id", couponID).Str("order_id", orderID).Msg("coupon released")
	return true, nil
}

// Use 把优惠券核销到指定订单。UseBack 的逆操作，供订单侧补偿调用。
func (s *CouponApplicationService) Use(ctx context.Context, couponID int64, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "coupon.Use", trace.WithAttributes(
		attribute.Int64("coupon.id", couponID),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := coupon.Use(orderID); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Int64("coupon_id", couponID).Str("order_id", orderID).Msg("coupon used")
	return nil
}
