// internal/service/order/interfaces/refund_consumer.go
package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/mq"
	"vesta/internal/service/order/application"
	"vesta/internal/service/order/infrastructure/adapter"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// RefundConsumerAdapter 是一个驱动适配器，它监听退款请求消息并驱动应用服务。
type RefundConsumerAdapter struct {
	reader  *kafka.Reader
	handler *application.RefundHandler
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewRefundConsumerAdapter 创建一个新的Kafka消费者适配器。
func NewRefundConsumerAdapter(reader *kafka.Reader, handler *application.RefundHandler) *RefundConsumerAdapter {
	return &RefundConsumerAdapter{
		reader:  reader,
		handler: handler,
	}
}

// Start 开始监听Kafka主题。这是一个长期运行的方法。
func (a *RefundConsumerAdapter) Start(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Printf("✅ Refund Consumer Adapter started for topic '%s'.", a.reader.Config().Topic)
		for {
			if a.stopped.Load() {
				return
			}
			// 我们使用FetchMessage而不是ReadMessage，以便更好地控制退出逻辑
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				// 如果是上下文取消导致的错误，则正常退出
				if ctx.Err() != nil {
					logger.Ctx(ctx).Error().Err(ctx.Err()).Msg("🛑 Refund Consumer Adapter shutting down.")
					return
				}
				logger.Ctx(ctx).Printf("ERROR: could not read message: %v. Retrying...", err)
				time.Sleep(1 * time.Second) // 避免快速失败循环
				continue
			}

			propagator := otel.GetTextMapPropagator()
			headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
			newCtx := propagator.Extract(ctx, &headerCarrier)

			// 将具体的消息处理逻辑委托给一个私有方法
			a.processMessage(newCtx, msg)

			// 消息处理完成后提交Offset
			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Printf("ERROR: failed to commit messages: %v", err)
			}
		}
	}()

	return nil
}

// Stop 优雅地停止消费者。
func (a *RefundConsumerAdapter) Stop(ctx context.Context) {
	a.stopped.Store(true)
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Printf("✅ Refund Consumer Adapter stopped.")
}

// processMessage 反序列化消息并调用退款处理器。
func (a *RefundConsumerAdapter) processMessage(ctx context.Context, msg kafka.Message) {
	var req adapter.RefundRequestMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		logger.Ctx(ctx).Printf("ERROR: Failed to unmarshal refund request: %v. Message will be skipped.", err)
		// 在生产环境中，应将消息移至死信队列（DLQ）
		return
	}

	if err := a.handler.ExecuteRefund(ctx, req.OrderID); err != nil {
		refundExecutionsTotal.WithLabelValues("error").Inc()
		logger.Ctx(ctx).Printf("ERROR: Failed to execute refund for order %s: %v", req.OrderID, err)
		return
	}
	refundExecutionsTotal.WithLabelValues("ok").Inc()
}
