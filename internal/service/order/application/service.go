// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vesta/internal/pkg/logger"
	"vesta/internal/service/order/application/saga"
	"vesta/internal/service/order/domain"
	"vesta/internal/service/order/port"
	"vesta/internal/statemachine"
)

// ReasonPayTimeoutCancel 是支付超时自动取消时写入的固定原因
const ReasonPayTimeoutCancel = "payment timeout, auto-cancelled"

// DefaultPayTimeout 创建订单后未支付的自动取消窗口
const DefaultPayTimeout = 15 * time.Minute

const (
	listPageSize    = 10
	listCachePrefix = "vesta:orders:simple"
	listCacheTTL    = 30 * time.Minute
)

// OrderApplicationService 负责订单生命周期的业务流程编排：
// 取消编排、支付超时对账、下单和列表查询。
type OrderApplicationService struct {
	machine      *statemachine.Machine[domain.OrderSnapshot]
	ordersRepo   domain.OrdersRepository
	canceledRepo domain.OrdersCanceledRepository
	refundRepo   domain.OrdersRefundRepository

	couponService    port.CouponService
	tradingService   port.TradingService
	refundDispatcher port.RefundDispatcher

	listCache  ListCache
	payTimeout time.Duration
	tracer     trace.Tracer
}

func NewOrderApplicationService(
	machine *statemachine.Machine[domain.OrderSnapshot],
	ordersRepo domain.OrdersRepository,
	canceledRepo domain.OrdersCanceledRepository,
	refundRepo domain.OrdersRefundRepository,
	couponService port.CouponService,
	tradingService port.TradingService,
	refundDispatcher port.RefundDispatcher,
	listCache ListCache,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		machine: machine, ordersRepo: ordersRepo,
		canceledRepo: canceledRepo, refundRepo: refundRepo,
		couponService: couponService, tradingService: tradingService,
		refundDispatcher: refundDispatcher, listCache: listCache,
		payTimeout: DefaultPayTimeout, tracer: tracer,
	}
}

// NewOrderStatusSync 返回状态机的后置钩子：把每个新快照回写到订单行，
// 保证取消编排读到的权威状态与快照一致。
func NewOrderStatusSync(repo domain.OrdersRepository) func(ctx context.Context, snapshot domain.OrderSnapshot) error {
	return func(ctx context.Context, snapshot domain.OrderSnapshot) error {
		return repo.SyncFromSnapshot(ctx, snapshot)
	}
}

// PlaceOrder 创建订单：生成 id，写订单行，并通过引擎写入初始快照
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()

	orderID := uuid.New().String()
	order, err := domain.NewOrder(orderID, req.UserID, "", req.DiscountAmount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.ordersRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save order")
		return nil, pkgerrors.Wrap(err, "save order")
	}
	if err := s.machine.Init(ctx, orderID, order.Snapshot()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to init order snapshot")
		return nil, pkgerrors.Wrap(err, "init order snapshot")
	}

	logger.Ctx(ctx).Info().Str("order_id", orderID).Str("user_id", req.UserID).Msg("order placed")
	return &PlaceOrderResponse{
		OrderID:      orderID,
		OrdersStatus: order.OrdersStatus,
		CreateTime:   order.CreateTime,
	}, nil
}

// Detail 返回订单详情。读取时惰性触发支付超时对账：
// 超过支付窗口仍未支付的订单会被自动取消，并返回绕过缓存的新快照。
func (s *OrderApplicationService) Detail(ctx context.Context, orderID string) (domain.OrderSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "app.OrderDetail", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	snapshot, err := s.machine.CurrentSnapshot(ctx, orderID)
	if err != nil {
		if pkgerrors.Is(err, statemachine.ErrNotFound) {
			return domain.OrderSnapshot{}, domain.ErrOrderNotFound
		}
		return domain.OrderSnapshot{}, err
	}

	return s.cancelIfPayOvertime(ctx, snapshot)
}

// cancelIfPayOvertime 检测支付超时的未支付订单。
// 先向交易系统确认权威支付结果：如果其实已经支付成功（超时检测与实际支付
// 的竞态），原样返回快照，绝不强行取消；仍未支付才走系统取消路径，
// 然后绕过缓存重新读取，保证取消结果立刻可见。
func (s *OrderApplicationService) cancelIfPayOvertime(ctx context.Context, snapshot domain.OrderSnapshot) (domain.OrderSnapshot, error) {
	if snapshot.OrdersStatus != domain.StatusUnpaid || time.Since(snapshot.CreateTime) < s.payTimeout {
		return snapshot, nil
	}

	payResult, err := s.tradingService.GetPayResult(ctx, snapshot.ID)
	if err != nil {
		// 交易系统不可用时不做取消决策，下次读取再查
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", snapshot.ID).
			Msg("could not confirm pay result, skipping overtime cancellation")
		return snapshot, nil
	}
	if payResult.PayStatus == domain.PayStatusPaySuccess {
		return snapshot, nil
	}

	cancelReq := &OrderCancelRequest{
		OrderID:       snapshot.ID,
		CancellerType: domain.ActorSystem,
		CancelReason:  ReasonPayTimeoutCancel,
	}
	if err := s.Cancel(ctx, cancelReq); err != nil {
		// 另一个并发请求可能已经完成了取消，读取最新快照即可
		if !pkgerrors.Is(err, domain.ErrUnsupportedCancellation) &&
			!pkgerrors.Is(err, statemachine.ErrConcurrentModification) {
			return domain.OrderSnapshot{}, pkgerrors.Wrap(err, "overtime cancellation")
		}
	}

	// 取消已更新了订单状态，必须绕过缓存重新读取快照
	return s.machine.FreshSnapshot(ctx, snapshot.ID)
}

// Cancel 取消订单：按 当前阶段 x 是否使用优惠券 选择补偿序列并执行。
// 只有待支付和派单中两个阶段支持取消。
func (s *OrderApplicationService) Cancel(ctx context.Context, req *OrderCancelRequest) error {
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("canceller.type", string(req.CancellerType)),
	))
	defer span.End()

	// 读订单行拿权威的当前状态与优惠信息，不读缓存快照
	order, err := s.ordersRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return pkgerrors.Wrap(err, "load order")
	}
	if order == nil {
		return pkgerrors.Wrapf(domain.ErrOrderNotFound, "order %s", req.OrderID)
	}

	span.SetAttributes(attribute.String("order.status", string(order.OrdersStatus)))

	var sg *saga.Saga
	withRefund := false
	switch order.OrdersStatus {
	case domain.StatusUnpaid:
		sg = s.buildCancelSaga(order, req, domain.EventCancel, false)
	case domain.StatusDispatching:
		withRefund = true
		sg = s.buildCancelSaga(order, req, domain.EventCloseDispatchingOrder, true)
	default:
		return pkgerrors.Wrapf(domain.ErrUnsupportedCancellation, "order %s status %s", order.ID, order.OrdersStatus)
	}

	if err := sg.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancellation saga failed")
		return err
	}

	if withRefund {
		// 退款请求异步投递：失败不回滚已提交的取消，由重试扫描兜底
		if err := s.refundDispatcher.Dispatch(ctx, order.ID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).
				Msg("refund dispatch failed, pending refund sweep will retry")
		}
	}

	logger.Ctx(ctx).Info().Str("order_id", order.ID).
		Str("canceller_type", string(req.CancellerType)).
		Str("reason", req.CancelReason).
		Msg("order cancelled")
	return nil
}

// buildCancelSaga 组装取消序列。步骤顺序刻意把不可补偿的状态转换放在
// 最后：它成功即整体成功，之前任何一步失败都能按逆序完整回退。
func (s *OrderApplicationService) buildCancelSaga(order *domain.Orders, req *OrderCancelRequest, event statemachine.Event, withRefund bool) *saga.Saga {
	var steps []saga.Step
	var canceledID, refundID int64

	if order.DiscountAmount != nil {
		var couponID int64
		var released bool
		steps = append(steps, saga.Step{
			Name: "release-coupon",
			Run: func(ctx context.Context) error {
				id, err := s.couponService.GetCouponID(ctx, order.ID)
				if err != nil {
					return pkgerrors.Wrap(err, "lookup coupon")
				}
				couponID = id
				released, err = s.couponService.UseBack(ctx, couponID, order.ID, order.UserID)
				return err
			},
			Compensate: func(ctx context.Context) error {
				// 只有本次真正释放了券才逆向核销。幂等的空操作说明
				// 券是别的取消尝试释放的，重新核销会吞掉人家的回退。
				if !released {
					return nil
				}
				return s.couponService.Use(ctx, couponID, order.ID, order.UserID)
			},
		})
	}

	steps = append(steps, saga.Step{
		Name: "save-cancel-record",
		Run: func(ctx context.Context) error {
			record := &domain.OrdersCanceled{
				OrderID:       order.ID,
				CancellerID:   req.CancellerID,
				CancellerName: req.CancellerName,
				CancellerType: req.CancellerType,
				CancelReason:  req.CancelReason,
				CancelTime:    time.Now(),
			}
			if err := s.canceledRepo.Save(ctx, record); err != nil {
				return err
			}
			canceledID = record.ID
			return nil
		},
		Compensate: func(ctx context.Context) error {
			// 按主键删，只回收本次写入的行。并发取消的赢家可能已
			// 提交了自己的审计记录，按 order_id 删会连它一起删掉。
			return s.canceledRepo.DeleteByID(ctx, canceledID)
		},
	})

	if withRefund {
		steps = append(steps, saga.Step{
			Name: "save-refund-record",
			Run: func(ctx context.Context) error {
				now := time.Now()
				record := &domain.OrdersRefund{
					OrderID:        order.ID,
					TradingOrderNo: order.TradingOrderNo,
					RealPayAmount:  order.RealPayAmount,
					RefundStatus:   domain.RefundStatusRefunding,
					CreateTime:     now,
					UpdateTime:     now,
				}
				if err := s.refundRepo.Save(ctx, record); err != nil {
					return err
				}
				refundID = record.ID
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.refundRepo.DeleteByID(ctx, refundID)
			},
		})
	}

	steps = append(steps, saga.Step{
		Name: "state-transition",
		Run: func(ctx context.Context) error {
			now := time.Now()
			patch := domain.OrderSnapshot{
				CancellerID:   req.CancellerID,
				CancellerType: req.CancellerType,
				CancelTime:    &now,
				CancelReason:  req.CancelReason,
			}
			if withRefund {
				patch.RefundStatus = domain.RefundStatusRefunding
			}
			_, err := s.machine.ChangeStatus(ctx, req.CancellerID, order.ID, event, patch)
			return err
		},
		// 转换是最后一步，之后没有可失败的本地动作，无需补偿
	})

	return saga.New("order-cancel", steps...)
}

// ConsumerQueryList 用户侧订单列表的滚动分页：
// 覆盖索引只查 id 列，再经 cache-aside 批量读取补全数据。
func (s *OrderApplicationService) ConsumerQueryList(ctx context.Context, userID string, status *domain.OrderStatus, sortBy *int64) ([]OrderSimple, error) {
	ctx, span := s.tracer.Start(ctx, "app.ConsumerQueryList")
	defer span.End()

	ids, err := s.ordersRepo.PageQueryIDs(ctx, userID, status, sortBy, listPageSize)
	if err != nil {
		span.RecordError(err)
		return nil, pkgerrors.Wrap(err, "page query order ids")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return s.listCache.BatchGet(ctx, listCachePrefix+":"+userID, ids, func(ctx context.Context, missedIDs []string) (map[string]OrderSimple, error) {
		orders, err := s.ordersRepo.BatchQuery(ctx, missedIDs)
		if err != nil {
			return nil, err
		}
		result := make(map[string]OrderSimple, len(orders))
		for _, o := range orders {
			result[o.ID] = toOrderSimple(o)
		}
		return result, nil
	}, listCacheTTL)
}
