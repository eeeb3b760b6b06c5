// internal/service/order/application/refund_handler.go
package application

import (
	"context"
	"sync/atomic"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vesta/internal/pkg/logger"
	"vesta/internal/service/order/domain"
	"vesta/internal/service/order/port"
)

// 退款记录创建后超过这个时间仍未退款成功的，由重试扫描重新投递
const refundRetryAfter = 5 * time.Minute

// 重试扫描并发投递的上限
const retryDispatchConcurrency = 8

// RefundHandler 承载退款的异步执行路径：消费投递的退款请求、
// 调用交易系统退款，以及对滞留记录的周期性重试。
// 投递是至少一次语义，ExecuteRefund 对重复消息幂等。
type RefundHandler struct {
	ordersRepo domain.OrdersRepository
	refundRepo domain.OrdersRefundRepository
	trading    port.TradingService
	dispatcher port.RefundDispatcher
	tracer     trace.Tracer
}

func NewRefundHandler(
	ordersRepo domain.OrdersRepository,
	refundRepo domain.OrdersRefundRepository,
	trading port.TradingService,
	dispatcher port.RefundDispatcher,
	tracer trace.Tracer,
) *RefundHandler {
	return &RefundHandler{
		ordersRepo: ordersRepo, refundRepo: refundRepo,
		trading: trading, dispatcher: dispatcher, tracer: tracer,
	}
}

// ExecuteRefund 执行一笔退款并回写退款状态。
// 退款失败不向上传播为致命错误：记录状态后等待重试扫描。
func (h *RefundHandler) ExecuteRefund(ctx context.Context, orderID string) error {
	ctx, span := h.tracer.Start(ctx, "app.ExecuteRefund", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	record, err := h.refundRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(err, "load refund record")
	}
	if record == nil {
		// 消息重复或乱序时可能出现，无事可做
		logger.Ctx(ctx).Warn().Str("order_id", orderID).Msg("refund request without refund record, skipping")
		return nil
	}
	if record.RefundStatus == domain.RefundStatusRefunded {
		return nil
	}

	if err := h.trading.Refund(ctx, record.TradingOrderNo, record.RealPayAmount); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("refund execution failed")
		if err := h.refundRepo.UpdateStatus(ctx, orderID, domain.RefundStatusRefundFailed); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to mark refund as failed")
		}
		if err := h.ordersRepo.UpdateRefundStatus(ctx, orderID, domain.RefundStatusRefundFailed); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to sync refund status to order")
		}
		return nil
	}

	if err := h.refundRepo.UpdateStatus(ctx, orderID, domain.RefundStatusRefunded); err != nil {
		return pkgerrors.Wrap(err, "mark refund as refunded")
	}
	if err := h.ordersRepo.UpdateRefundStatus(ctx, orderID, domain.RefundStatusRefunded); err != nil {
		return pkgerrors.Wrap(err, "sync refund status to order")
	}

	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("refund completed")
	return nil
}

// RetryPendingRefunds 把滞留的退款记录重新投递到执行路径。
// 返回重新投递的数量。
func (h *RefundHandler) RetryPendingRefunds(ctx context.Context, limit int) (int, error) {
	ctx, span := h.tracer.Start(ctx, "app.RetryPendingRefunds")
	defer span.End()

	olderThan := time.Now().Add(-refundRetryAfter).UnixMilli()
	records, err := h.refundRepo.ListPending(ctx, olderThan, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "list pending refunds")
	}

	var dispatched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(retryDispatchConcurrency)
	for _, record := range records {
		orderID := record.OrderID
		g.Go(func() error {
			if err := h.dispatcher.Dispatch(gctx, orderID); err != nil {
				// 投递失败留给下一轮扫描
				logger.Ctx(gctx).Error().Err(err).Str("order_id", orderID).Msg("refund retry dispatch failed")
				return nil
			}
			dispatched.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(dispatched.Load()), err
	}
	if n := dispatched.Load(); n > 0 {
		logger.Ctx(ctx).Info().Int64("count", n).Msg("re-dispatched pending refunds")
	}
	return int(dispatched.Load()), nil
}
