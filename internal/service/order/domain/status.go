// internal/service/order/domain/status.go
package domain

import "vesta/internal/statemachine"

// OrderStatus 定义了订单的生命周期状态
type OrderStatus string

const (
	StatusUnpaid         OrderStatus = "UNPAID"          // 待支付
	StatusDispatching    OrderStatus = "DISPATCHING"     // 派单中（已支付，等待分配服务人员）
	StatusPendingService OrderStatus = "PENDING_SERVICE" // 待服务
	StatusServing        OrderStatus = "SERVING"         // 服务中
	StatusFinished       OrderStatus = "FINISHED"        // 已完成
	StatusCancelled      OrderStatus = "CANCELLED"       // 已取消（支付前取消，终态）
	StatusClosed         OrderStatus = "CLOSED"          // 已关闭（支付后关闭并退款，终态）
)

// PayStatus 定义了订单的支付状态
type PayStatus string

const (
	PayStatusNoPay      PayStatus = "NO_PAY"      // 未支付
	PayStatusPaySuccess PayStatus = "PAY_SUCCESS" // 支付成功
	PayStatusPayFailed  PayStatus = "PAY_FAILED"  // 支付失败
)

// RefundStatus 定义了订单的退款状态
type RefundStatus string

const (
	RefundStatusRefunding    RefundStatus = "REFUNDING"     // 退款中
	RefundStatusRefunded     RefundStatus = "REFUNDED"      // 退款成功
	RefundStatusRefundFailed RefundStatus = "REFUND_FAILED" // 退款失败，等待重试
)

// 订单状态机的事件
const (
	EventPay                   statemachine.Event = "PAY"
	EventDispatch              statemachine.Event = "DISPATCH"
	EventStartService          statemachine.Event = "START_SERVICE"
	EventCompleteService       statemachine.Event = "COMPLETE_SERVICE"
	EventEvaluate              statemachine.Event = "EVALUATE"
	EventCancel                statemachine.Event = "CANCEL"
	EventCloseDispatchingOrder statemachine.Event = "CLOSE_DISPATCHING_ORDER"
)

// ActorType 区分发起操作的主体
type ActorType string

const (
	ActorConsumer  ActorType = "CONSUMER"  // 下单用户
	ActorOperation ActorType = "OPERATION" // 运营人员
	ActorSystem    ActorType = "SYSTEM"    // 系统自动触发
)

// NewOrderTable 构建订单状态机的转换表。
// 名称 "order" 划分快照存储和缓存的 key 空间，初始状态为待支付。
func NewOrderTable() (*statemachine.Table[OrderSnapshot], error) {
	return statemachine.NewTable[OrderSnapshot]("order", statemachine.Status(StatusUnpaid),
		[]statemachine.Transition[OrderSnapshot]{
			{From: statemachine.Status(StatusUnpaid), Event: EventPay, To: statemachine.Status(StatusDispatching)},
			{From: statemachine.Status(StatusUnpaid), Event: EventCancel, To: statemachine.Status(StatusCancelled)},
			{From: statemachine.Status(StatusDispatching), Event: EventDispatch, To: statemachine.Status(StatusPendingService)},
			{From: statemachine.Status(StatusDispatching), Event: EventCloseDispatchingOrder, To: statemachine.Status(StatusClosed)},
			{From: statemachine.Status(StatusPendingService), Event: EventStartService, To: statemachine.Status(StatusServing)},
			{From: statemachine.Status(StatusServing), Event: EventCompleteService, To: statemachine.Status(StatusFinished)},
			{From: statemachine.Status(StatusFinished), Event: EventEvaluate, To: statemachine.Status(StatusFinished)},
		},
		statemachine.Status(StatusCancelled), statemachine.Status(StatusClosed),
	)
}
