// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrOrderNotFound 找不到要操作的订单
	ErrOrderNotFound = errors.New("order not found")

	// ErrUnsupportedCancellation 当前订单状态不支持取消
	ErrUnsupportedCancellation = errors.New("order status does not support cancellation")
)
