package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"vesta/internal/service/order/domain"
)

type refundFixture struct {
	handler    *RefundHandler
	ordersRepo *fakeOrdersRepo
	refunds    *fakeRefundRepo
	trading    *fakeTradingService
	dispatcher *fakeRefundDispatcher
}

func newRefundFixture() *refundFixture {
	f := &refundFixture{
		ordersRepo: newFakeOrdersRepo(),
		refunds:    newFakeRefundRepo(),
		trading:    &fakeTradingService{},
		dispatcher: &fakeRefundDispatcher{},
	}
	f.handler = NewRefundHandler(f.ordersRepo, f.refunds, f.trading, f.dispatcher, otel.Tracer("test"))
	return f
}

func (f *refundFixture) seedRefund(t *testing.T, orderID string, status domain.RefundStatus, age time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Add(-age)
	require.NoError(t, f.ordersRepo.Save(ctx, &domain.Orders{
		ID: orderID, UserID: "user-1",
		OrdersStatus: domain.StatusClosed,
		RefundStatus: status,
	}))
	require.NoError(t, f.refunds.Save(ctx, &domain.OrdersRefund{
		OrderID:        orderID,
		TradingOrderNo: "trade-" + orderID,
		RealPayAmount:  50,
		RefundStatus:   status,
		CreateTime:     now,
		UpdateTime:     now,
	}))
}

func TestExecuteRefund_Success(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.seedRefund(t, "o1", domain.RefundStatusRefunding, 0)

	require.NoError(t, f.handler.ExecuteRefund(ctx, "o1"))
	assert.Equal(t, 1, f.trading.refunds)

	rec, err := f.refunds.FindByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRefunded, rec.RefundStatus)

	row, err := f.ordersRepo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRefunded, row.RefundStatus)
}

func TestExecuteRefund_IdempotentOnRefunded(t *testing.T) {
	f := newRefundFixture()
	f.seedRefund(t, "o1", domain.RefundStatusRefunded, 0)

	// 已退款成功的重复消息不再调用交易系统
	require.NoError(t, f.handler.ExecuteRefund(context.Background(), "o1"))
	assert.Equal(t, 0, f.trading.refunds)
}

func TestExecuteRefund_MissingRecordIsSkipped(t *testing.T) {
	f := newRefundFixture()

	require.NoError(t, f.handler.ExecuteRefund(context.Background(), "no-such-order"))
	assert.Equal(t, 0, f.trading.refunds)
}

func TestExecuteRefund_FailureMarksRecordForRetry(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.seedRefund(t, "o1", domain.RefundStatusRefunding, 0)
	f.trading.refundErr = errors.New("trading down")

	// 失败不算致命：记状态等重试
	require.NoError(t, f.handler.ExecuteRefund(ctx, "o1"))

	rec, err := f.refunds.FindByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRefundFailed, rec.RefundStatus)

	row, err := f.ordersRepo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRefundFailed, row.RefundStatus)
}

func TestRetryPendingRefunds(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()

	f.seedRefund(t, "stale-failed", domain.RefundStatusRefundFailed, time.Hour)
	f.seedRefund(t, "stale-refunding", domain.RefundStatusRefunding, time.Hour)
	f.seedRefund(t, "fresh", domain.RefundStatusRefunding, 0)
	f.seedRefund(t, "done", domain.RefundStatusRefunded, time.Hour)

	count, err := f.handler.RetryPendingRefunds(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// 只有超过重试窗口且未成功的会被重新投递
	assert.ElementsMatch(t, []string{"stale-failed", "stale-refunding"}, f.dispatcher.orderIDs)
}
