// internal/service/order/domain/repository.go
package domain

import "context"

// OrdersRepository 定义了订单表的持久化接口，由基础设施层实现
type OrdersRepository interface {
	Save(ctx context.Context, order *Orders) error

	// FindByID 根据 id 查找订单，不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id string) (*Orders, error)

	// BatchQuery 按 id 列表查询订单
	BatchQuery(ctx context.Context, ids []string) ([]*Orders, error)

	// PageQueryIDs 按条件滚动分页，只返回 id 列（覆盖索引查询），
	// status 为 nil 表示不过滤状态，sortBy 为分页游标（上一页最后一条的创建时间戳）。
	PageQueryIDs(ctx context.Context, userID string, status *OrderStatus, sortBy *int64, pageSize int) ([]string, error)

	// SyncFromSnapshot 把快照中的可见状态回写到订单行
	SyncFromSnapshot(ctx context.Context, snapshot OrderSnapshot) error

	// UpdateRefundStatus 更新订单的退款状态（退款执行路径专用）
	UpdateRefundStatus(ctx context.Context, id string, status RefundStatus) error
}

// OrdersCanceledRepository 取消审计记录的持久化接口
type OrdersCanceledRepository interface {
	// Save 写入后把生成的自增主键回填到 record.ID
	Save(ctx context.Context, record *OrdersCanceled) error

	// DeleteByID 按主键删除审计记录，仅供 saga 补偿删除本次写入的行
	DeleteByID(ctx context.Context, id int64) error
}

// OrdersRefundRepository 退款记录的持久化接口
type OrdersRefundRepository interface {
	// Save 写入后把生成的自增主键回填到 record.ID
	Save(ctx context.Context, record *OrdersRefund) error

	// FindByOrderID 不存在时返回 (nil, nil)
	FindByOrderID(ctx context.Context, orderID string) (*OrdersRefund, error)

	// DeleteByID 按主键删除退款记录，仅供 saga 补偿删除本次写入的行
	DeleteByID(ctx context.Context, id int64) error

	// UpdateStatus 更新退款记录状态
	UpdateStatus(ctx context.Context, orderID string, status RefundStatus) error

	// ListPending 返回创建时间早于 olderThan 且仍未退款成功的记录，驱动重试
	ListPending(ctx context.Context, olderThan int64, limit int) ([]*OrdersRefund, error)
}
