package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"vesta/internal/service/order/domain"
	"vesta/internal/service/order/port"
	"vesta/internal/statemachine"
)

// ---- 状态机的内存后端 ----

type memSnapshotStore struct {
	mu      sync.Mutex
	records map[string][]*statemachine.Record
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{records: make(map[string][]*statemachine.Record)}
}

func (s *memSnapshotStore) Load(ctx context.Context, machine, entityID string) (*statemachine.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.records[machine+"/"+entityID]
	if len(versions) == 0 {
		return nil, statemachine.ErrNotFound
	}
	cp := *versions[len(versions)-1]
	return &cp, nil
}

func (s *memSnapshotStore) Save(ctx context.Context, record *statemachine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.Machine + "/" + record.EntityID
	for _, existing := range s.records[key] {
		if existing.Version == record.Version {
			return statemachine.ErrConcurrentModification
		}
	}
	cp := *record
	s.records[key] = append(s.records[key], &cp)
	return nil
}

type noopSnapshotCache struct{}

func (noopSnapshotCache) Get(ctx context.Context, machine, entityID string) ([]byte, error) {
	return nil, nil
}
func (noopSnapshotCache) Put(ctx context.Context, machine, entityID string, data []byte) error {
	return nil
}
func (noopSnapshotCache) Del(ctx context.Context, machine, entityID string) error { return nil }

// ---- 仓储与出站端口的测试替身 ----

type fakeOrdersRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Orders
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: make(map[string]*domain.Orders)}
}

func (r *fakeOrdersRepo) Save(ctx context.Context, order *domain.Orders) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrdersRepo) FindByID(ctx context.Context, id string) (*domain.Orders, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrdersRepo) BatchQuery(ctx context.Context, ids []string) ([]*domain.Orders, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Orders
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			cp := *o
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeOrdersRepo) PageQueryIDs(ctx context.Context, userID string, status *domain.OrderStatus, sortBy *int64, pageSize int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		if status != nil && o.OrdersStatus != *status {
			continue
		}
		ids = append(ids, id)
		if len(ids) == pageSize {
			break
		}
	}
	return ids, nil
}

func (r *fakeOrdersRepo) SyncFromSnapshot(ctx context.Context, snapshot domain.OrderSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[snapshot.ID]
	if !ok {
		return nil
	}
	o.OrdersStatus = snapshot.OrdersStatus
	o.PayStatus = snapshot.PayStatus
	if snapshot.RefundStatus != "" {
		o.RefundStatus = snapshot.RefundStatus
	}
	if snapshot.TradingOrderNo != "" {
		o.TradingOrderNo = snapshot.TradingOrderNo
	}
	if snapshot.RealPayAmount != 0 {
		o.RealPayAmount = snapshot.RealPayAmount
	}
	o.UpdateTime = time.Now()
	return nil
}

func (r *fakeOrdersRepo) UpdateRefundStatus(ctx context.Context, id string, status domain.RefundStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.RefundStatus = status
	}
	return nil
}

type fakeCanceledRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []*domain.OrdersCanceled
	saveErr error
}

func (r *fakeCanceledRepo) Save(ctx context.Context, record *domain.OrdersCanceled) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	record.ID = r.nextID
	cp := *record
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeCanceledRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

func (r *fakeCanceledRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeRefundRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*domain.OrdersRefund
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{records: make(map[string]*domain.OrdersRefund)}
}

func (r *fakeRefundRepo) Save(ctx context.Context, record *domain.OrdersRefund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.records[record.OrderID]; dup {
		return errors.New("duplicate refund record")
	}
	r.nextID++
	record.ID = r.nextID
	cp := *record
	r.records[record.OrderID] = &cp
	return nil
}

func (r *fakeRefundRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.OrdersRefund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRefundRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for orderID, rec := range r.records {
		if rec.ID == id {
			delete(r.records, orderID)
		}
	}
	return nil
}

func (r *fakeRefundRepo) UpdateStatus(ctx context.Context, orderID string, status domain.RefundStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[orderID]; ok {
		rec.RefundStatus = status
		rec.UpdateTime = time.Now()
	}
	return nil
}

func (r *fakeRefundRepo) ListPending(ctx context.Context, olderThan int64, limit int) ([]*domain.OrdersRefund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.OrdersRefund
	for _, rec := range r.records {
		if rec.RefundStatus == domain.RefundStatusRefunded {
			continue
		}
		if rec.CreateTime.UnixMilli() >= olderThan {
			continue
		}
		cp := *rec
		result = append(result, &cp)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

type fakeCouponService struct {
	mu       sync.Mutex
	couponID int64
	consumed bool // 券当前是否处于已核销状态
	useBacks int
	uses     int
}

func (c *fakeCouponService) GetCouponID(ctx context.Context, orderID string) (int64, error) {
	return c.couponID, nil
}

func (c *fakeCouponService) UseBack(ctx context.Context, couponID int64, orderID, userID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useBacks++
	if !c.consumed {
		return false, nil
	}
	c.consumed = false
	return true, nil
}

func (c *fakeCouponService) Use(ctx context.Context, couponID int64, orderID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uses++
	c.consumed = true
	return nil
}

type fakeTradingService struct {
	payResult *port.PayResult
	payErr    error
	refundErr error
	refunds   int
}

func (t *fakeTradingService) GetPayResult(ctx context.Context, orderID string) (*port.PayResult, error) {
	if t.payErr != nil {
		return nil, t.payErr
	}
	return t.payResult, nil
}

func (t *fakeTradingService) Refund(ctx context.Context, tradingOrderNo string, amount float64) error {
	if t.refundErr != nil {
		return t.refundErr
	}
	t.refunds++
	return nil
}

type fakeRefundDispatcher struct {
	mu       sync.Mutex
	orderIDs []string
}

func (d *fakeRefundDispatcher) Dispatch(ctx context.Context, orderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orderIDs = append(d.orderIDs, orderID)
	return nil
}

// passthroughListCache 不缓存，直接回源
type passthroughListCache struct{}

func (passthroughListCache) BatchGet(ctx context.Context, keyPrefix string, ids []string, loader BatchLoader, ttl time.Duration) ([]OrderSimple, error) {
	loaded, err := loader(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]OrderSimple, 0, len(ids))
	for _, id := range ids {
		if item, ok := loaded[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

// ---- 组装测试夹具 ----

type fixture struct {
	svc        *OrderApplicationService
	machine    *statemachine.Machine[domain.OrderSnapshot]
	ordersRepo *fakeOrdersRepo
	canceled   *fakeCanceledRepo
	refunds    *fakeRefundRepo
	coupon     *fakeCouponService
	trading    *fakeTradingService
	dispatcher *fakeRefundDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	table, err := domain.NewOrderTable()
	require.NoError(t, err)

	ordersRepo := newFakeOrdersRepo()
	machine := statemachine.New(table, newMemSnapshotStore(), noopSnapshotCache{}, NewOrderStatusSync(ordersRepo))

	f := &fixture{
		machine:    machine,
		ordersRepo: ordersRepo,
		canceled:   &fakeCanceledRepo{},
		refunds:    newFakeRefundRepo(),
		coupon:     &fakeCouponService{couponID: 42, consumed: true},
		trading:    &fakeTradingService{payResult: &port.PayResult{PayStatus: domain.PayStatusNoPay}},
		dispatcher: &fakeRefundDispatcher{},
	}
	f.svc = NewOrderApplicationService(
		machine, ordersRepo, f.canceled, f.refunds,
		f.coupon, f.trading, f.dispatcher,
		passthroughListCache{}, otel.Tracer("test"),
	)
	return f
}

// placeOrder 创建一个订单并返回 id，createdAgo 控制下单时刻
func (f *fixture) placeOrder(t *testing.T, discount *float64, createdAgo time.Duration) string {
	t.Helper()
	ctx := context.Background()

	order, err := domain.NewOrder("order-"+time.Now().Format("150405.000000000"), "user-1", "trade-001", discount)
	require.NoError(t, err)
	order.CreateTime = time.Now().Add(-createdAgo)
	order.RealPayAmount = 99.5
	require.NoError(t, f.ordersRepo.Save(ctx, order))
	require.NoError(t, f.machine.Init(ctx, order.ID, order.Snapshot()))
	return order.ID
}

// payOrder 把订单推进到派单中阶段
func (f *fixture) payOrder(t *testing.T, orderID string) {
	t.Helper()
	_, err := f.machine.ChangeStatus(context.Background(), "trading", orderID, domain.EventPay, domain.OrderSnapshot{
		PayStatus: domain.PayStatusPaySuccess,
	})
	require.NoError(t, err)
}

// ---- 测试 ----

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, &PlaceOrderRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, domain.StatusUnpaid, resp.OrdersStatus)

	snap, err := f.machine.CurrentSnapshot(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)

	row, err := f.ordersRepo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, domain.PayStatusNoPay, row.PayStatus)
}

func TestCancel_UnpaidWithoutDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 0)

	err := f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "user-1",
		CancellerType: domain.ActorConsumer,
		CancelReason:  "changed my mind",
	})
	require.NoError(t, err)

	// 没用优惠券就不碰优惠券服务
	assert.Equal(t, 0, f.coupon.useBacks)
	assert.Equal(t, 1, f.canceled.count())

	// 待支付取消不产生退款记录，也不投递退款
	rec, err := f.refunds.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, f.dispatcher.orderIDs)

	snap, err := f.machine.FreshSnapshot(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, snap.OrdersStatus)
	assert.Equal(t, domain.ActorConsumer, snap.CancellerType)
	assert.Equal(t, "changed my mind", snap.CancelReason)
	require.NotNil(t, snap.CancelTime)

	row, err := f.ordersRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, row.OrdersStatus)
}

func TestCancel_UnpaidWithDiscountReleasesCouponOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discount := 10.0
	orderID := f.placeOrder(t, &discount, 0)

	err := f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "user-1",
		CancellerType: domain.ActorConsumer,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.coupon.useBacks)
	assert.Equal(t, 0, f.coupon.uses)
	assert.Equal(t, 1, f.canceled.count())
}

func TestCancel_DispatchingCreatesRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 0)
	f.payOrder(t, orderID)

	err := f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "op-1",
		CancellerType: domain.ActorOperation,
		CancelReason:  "customer request",
	})
	require.NoError(t, err)

	rec, err := f.refunds.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.RefundStatusRefunding, rec.RefundStatus)
	assert.Equal(t, "trade-001", rec.TradingOrderNo)
	assert.Equal(t, 99.5, rec.RealPayAmount)

	assert.Equal(t, []string{orderID}, f.dispatcher.orderIDs)

	snap, err := f.machine.FreshSnapshot(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, snap.OrdersStatus)
	assert.Equal(t, domain.RefundStatusRefunding, snap.RefundStatus)
}

func TestCancel_UnsupportedPhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 0)
	f.payOrder(t, orderID)
	_, err := f.machine.ChangeStatus(ctx, "scheduler", orderID, domain.EventDispatch, domain.OrderSnapshot{})
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, &OrderCancelRequest{OrderID: orderID, CancellerType: domain.ActorConsumer})
	require.ErrorIs(t, err, domain.ErrUnsupportedCancellation)
	assert.Equal(t, 0, f.canceled.count())
}

func TestCancel_SecondAttemptRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 0)

	req := &OrderCancelRequest{OrderID: orderID, CancellerType: domain.ActorConsumer}
	require.NoError(t, f.svc.Cancel(ctx, req))

	err := f.svc.Cancel(ctx, req)
	require.ErrorIs(t, err, domain.ErrUnsupportedCancellation)

	// 第二次尝试不追加审计记录
	assert.Equal(t, 1, f.canceled.count())
}

func TestCancel_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Cancel(context.Background(), &OrderCancelRequest{OrderID: "missing"})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancel_RollbackRestoresCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discount := 10.0
	orderID := f.placeOrder(t, &discount, 0)

	// 审计记录写入失败触发整体回滚
	boom := errors.New("db unavailable")
	f.canceled.saveErr = boom

	err := f.svc.Cancel(ctx, &OrderCancelRequest{OrderID: orderID, CancellerType: domain.ActorConsumer})
	require.ErrorIs(t, err, boom)

	// 优惠券先被释放，回滚后重新核销
	assert.Equal(t, 1, f.coupon.useBacks)
	assert.Equal(t, 1, f.coupon.uses)
	assert.Equal(t, 0, f.canceled.count())

	// 状态未变，订单仍可再次取消
	snap, err := f.machine.FreshSnapshot(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)

	f.canceled.saveErr = nil
	require.NoError(t, f.svc.Cancel(ctx, &OrderCancelRequest{OrderID: orderID, CancellerType: domain.ActorConsumer}))
}

func TestCancel_TransitionFailureCompensatesAllSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discount := 10.0
	orderID := f.placeOrder(t, &discount, 0)
	f.payOrder(t, orderID)

	// 订单行声称还在派单中，但快照已被并发推进：转换步骤必然失败
	_, err := f.machine.ChangeStatus(ctx, "scheduler", orderID, domain.EventDispatch, domain.OrderSnapshot{})
	require.NoError(t, err)
	row, err := f.ordersRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	row.OrdersStatus = domain.StatusDispatching
	require.NoError(t, f.ordersRepo.Save(ctx, row))

	err = f.svc.Cancel(ctx, &OrderCancelRequest{OrderID: orderID, CancellerType: domain.ActorOperation})
	require.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	// 优惠券、审计记录、退款记录全部回退
	assert.Equal(t, 1, f.coupon.useBacks)
	assert.Equal(t, 1, f.coupon.uses)
	assert.Equal(t, 0, f.canceled.count())
	rec, err := f.refunds.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, f.dispatcher.orderIDs)
}

func TestCancel_LostRaceRollbackKeepsWinnersAuditRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 0)

	// 赢家先完成取消
	require.NoError(t, f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "user-1",
		CancellerType: domain.ActorConsumer,
	}))
	require.Equal(t, 1, f.canceled.count())

	// 输家读到的还是取消前的订单行：回写过期状态模拟这个交错
	row, err := f.ordersRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	row.OrdersStatus = domain.StatusUnpaid
	require.NoError(t, f.ordersRepo.Save(ctx, row))

	err = f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "op-1",
		CancellerType: domain.ActorOperation,
	})
	require.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	// 输家的回滚只删自己写的那条，赢家的审计记录原样保留
	require.Equal(t, 1, f.canceled.count())
	assert.Equal(t, "user-1", f.canceled.records[0].CancellerID)
}

func TestCancel_LostRaceRollbackLeavesCouponReleased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discount := 10.0
	orderID := f.placeOrder(t, &discount, 0)

	// 赢家取消并释放了优惠券
	require.NoError(t, f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "user-1",
		CancellerType: domain.ActorConsumer,
	}))
	require.Equal(t, 1, f.coupon.useBacks)
	require.False(t, f.coupon.consumed)

	// 输家基于过期的订单行再次取消
	row, err := f.ordersRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	row.OrdersStatus = domain.StatusUnpaid
	require.NoError(t, f.ordersRepo.Save(ctx, row))

	err = f.svc.Cancel(ctx, &OrderCancelRequest{
		OrderID:       orderID,
		CancellerID:   "op-1",
		CancellerType: domain.ActorOperation,
	})
	require.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	// 输家的回退是幂等空操作，回滚不得把券重新核销回已取消的订单
	assert.Equal(t, 0, f.coupon.uses)
	assert.False(t, f.coupon.consumed)
	assert.Equal(t, 1, f.canceled.count())
}

func TestDetail_ReturnsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, time.Minute)

	snap, err := f.svc.Detail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, snap.ID)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)
}

func TestDetail_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Detail(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDetail_PayOvertimeCancelsAsSystem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 20*time.Minute)

	snap, err := f.svc.Detail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, snap.OrdersStatus)
	assert.Equal(t, domain.ActorSystem, snap.CancellerType)
	assert.Equal(t, ReasonPayTimeoutCancel, snap.CancelReason)
	assert.Equal(t, 1, f.canceled.count())
}

func TestDetail_PayOvertimeButActuallyPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 20*time.Minute)

	// 交易系统说已支付：绝不强行取消
	f.trading.payResult = &port.PayResult{PayStatus: domain.PayStatusPaySuccess}

	snap, err := f.svc.Detail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)
	assert.Equal(t, 0, f.canceled.count())
}

func TestDetail_TradingUnreachableSkipsCancellation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 20*time.Minute)

	f.trading.payErr = errors.New("trading down")

	snap, err := f.svc.Detail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)
	assert.Equal(t, 0, f.canceled.count())
}

func TestDetail_WithinPayWindowNotCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, 10*time.Minute)

	snap, err := f.svc.Detail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, snap.OrdersStatus)
	assert.Equal(t, 0, f.canceled.count())
}

func TestConsumerQueryList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, nil, time.Minute)

	list, err := f.svc.ConsumerQueryList(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orderID, list[0].ID)
	assert.Equal(t, domain.StatusUnpaid, list[0].OrdersStatus)

	// 状态过滤
	cancelled := domain.StatusCancelled
	list, err = f.svc.ConsumerQueryList(ctx, "user-1", &cancelled, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	// 未知用户返回空
	list, err = f.svc.ConsumerQueryList(ctx, "nobody", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
