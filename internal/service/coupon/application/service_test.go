package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"vesta/internal/service/coupon/domain"
)

type fakeCouponRepo struct {
	coupons map[int64]*domain.UserCoupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[int64]*domain.UserCoupon)}
}

func (r *fakeCouponRepo) FindByID(ctx context.Context, id int64) (*domain.UserCoupon, error) {
	c, ok := r.coupons[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCouponRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.UserCoupon, error) {
	for _, c := range r.coupons {
		if c.OrderID == orderID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCouponNotFound
}

func (r *fakeCouponRepo) Save(ctx context.Context, coupon *domain.UserCoupon) error {
	cp := *coupon
	r.coupons[coupon.ID] = &cp
	return nil
}

func newCouponFixture(used bool) (*CouponApplicationService, *fakeCouponRepo) {
	repo := newFakeCouponRepo()
	now := time.Now()
	coupon := &domain.UserCoupon{
		ID: 42, UserID: "user-1",
		Status:         domain.StatusUnused,
		DiscountAmount: 10,
		ReceivedAt:     now.Add(-24 * time.Hour),
		ExpiredAt:      now.Add(24 * time.Hour),
	}
	if used {
		coupon.Status = domain.StatusUsed
		coupon.OrderID = "order-1"
		coupon.UsedAt = &now
	}
	repo.coupons[coupon.ID] = coupon
	return NewCouponApplicationService(repo, otel.Tracer("test")), repo
}

func TestGetCouponIDByOrder(t *testing.T) {
	svc, _ := newCouponFixture(true)

	id, err := svc.GetCouponIDByOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = svc.GetCouponIDByOrder(context.Background(), "no-such-order")
	require.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestUseBack(t *testing.T) {
	svc, repo := newCouponFixture(true)
	ctx := context.Background()

	released, err := svc.UseBack(ctx, 42, "order-1")
	require.NoError(t, err)
	assert.True(t, released)

	c := repo.coupons[42]
	assert.Equal(t, domain.StatusUnused, c.Status)
	assert.Empty(t, c.OrderID)
	assert.Nil(t, c.UsedAt)

	// 重复回退幂等，但第二次没有释放任何东西
	released, err = svc.UseBack(ctx, 42, "order-1")
	require.NoError(t, err)
	assert.False(t, released)
}

func TestUseBack_WrongOrderRejected(t *testing.T) {
	svc, _ := newCouponFixture(true)

	_, err := svc.UseBack(context.Background(), 42, "someone-elses-order")
	require.ErrorIs(t, err, domain.ErrCouponStatusInvalid)
}

func TestUse(t *testing.T) {
	svc, repo := newCouponFixture(false)
	ctx := context.Background()

	require.NoError(t, svc.Use(ctx, 42, "order-2"))

	c := repo.coupons[42]
	assert.Equal(t, domain.StatusUsed, c.Status)
	assert.Equal(t, "order-2", c.OrderID)
	require.NotNil(t, c.UsedAt)

	// 同一订单重复核销幂等，换个订单则拒绝
	require.NoError(t, svc.Use(ctx, 42, "order-2"))
	err := svc.Use(ctx, 42, "order-3")
	require.ErrorIs(t, err, domain.ErrCouponAlreadyUsed)
}

func TestUse_ExpiredCoupon(t *testing.T) {
	svc, repo := newCouponFixture(false)
	repo.coupons[42].ExpiredAt = time.Now().Add(-time.Hour)

	err := svc.Use(context.Background(), 42, "order-2")
	require.ErrorIs(t, err, domain.ErrCouponExpired)
}
