// internal/service/order/port/refund.go
package port

import "context"

// RefundDispatcher 把退款请求投递到异步执行路径。
// 对调用方是 fire-and-forget：投递失败只记录，由退款重试兜底；
// 投递本身是至少一次语义，退款执行方需要幂等。
type RefundDispatcher interface {
	Dispatch(ctx context.Context, orderID string) error
}
