// internal/service/order/infrastructure/adapter/refund_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/mq"
)

// RefundRequestTopic 是退款请求的投递主题
const RefundRequestTopic = "order-refund-requests"

// RefundRequestMessage 是投递到 Kafka 的退款请求消息
type RefundRequestMessage struct {
	OrderID     string    `json:"orderId"`
	RequestedAt time.Time `json:"requestedAt"`
}

// RefundKafkaAdapter 是 port.RefundDispatcher 接口的 Kafka 实现。
// Writer 配置为 RequireAll，消息落盘后取消流程即可安全返回。
type RefundKafkaAdapter struct {
	writer *kafka.Writer
}

func NewRefundKafkaAdapter(writer *kafka.Writer) *RefundKafkaAdapter {
	return &RefundKafkaAdapter{writer: writer}
}

func (a *RefundKafkaAdapter) Dispatch(ctx context.Context, orderID string) error {
	msg := RefundRequestMessage{OrderID: orderID, RequestedAt: time.Now()}
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := mq.ProduceMessage(ctx, a.writer, []byte(orderID), value); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("failed to produce refund request")
		return err
	}
	return nil
}
