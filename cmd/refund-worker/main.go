// cmd/refund-worker/main.go
package main

import (
	"context"
	"strings"
	"time"
	"vesta/internal/pkg/bootstrap"
	"vesta/internal/pkg/httpclient"
	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/mq"
	"vesta/internal/service/order/application"
	"vesta/internal/service/order/infrastructure"
	"vesta/internal/service/order/infrastructure/adapter"
	"vesta/internal/service/order/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName         = "refund-worker"
	refundConsumerGroup = "refund-worker-group"
	retryScanInterval   = 1 * time.Minute
	retryBatchLimit     = 100
)

// main 函数是应用的"组装根" (Composition Root)
// 退款执行与重试扫描独立于 order-service 部署，退款下游抖动不影响取消链路。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) (func(ctx context.Context), error) {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
			if err != nil {
				return nil, err
			}

			brokers := strings.Split(cfg.Infra.Kafka.Brokers, ",")
			refundReader := mq.NewKafkaReader(brokers, adapter.RefundRequestTopic, refundConsumerGroup)
			refundWriter := mq.NewKafkaWriter(brokers, adapter.RefundRequestTopic)

			httpClient := httpclient.NewClient(tracer)
			tradingAdapter := adapter.NewTradingHTTPAdapter(httpClient, cfg.Services.Trading.BaseURL)
			refundDispatcher := adapter.NewRefundKafkaAdapter(refundWriter)

			handler := application.NewRefundHandler(
				infrastructure.NewGormOrdersRepository(db),
				infrastructure.NewGormOrdersRefundRepository(db),
				tradingAdapter, refundDispatcher, tracer,
			)

			consumerCtx, cancelConsumer := context.WithCancel(context.Background())
			consumer := interfaces.NewRefundConsumerAdapter(refundReader, handler)
			if err := consumer.Start(consumerCtx); err != nil {
				cancelConsumer()
				return nil, err
			}

			// 周期扫描滞留的退款记录，重新投递
			retryDone := make(chan struct{})
			go func() {
				defer close(retryDone)
				ticker := time.NewTicker(retryScanInterval)
				defer ticker.Stop()
				for {
					select {
					case <-consumerCtx.Done():
						return
					case <-ticker.C:
						if _, err := handler.RetryPendingRefunds(consumerCtx, retryBatchLimit); err != nil {
							logger.Ctx(consumerCtx).Error().Err(err).Msg("refund retry scan failed")
						}
					}
				}
			}()

			return func(ctx context.Context) {
				cancelConsumer()
				consumer.Stop(ctx)
				<-retryDone
				if err := refundWriter.Close(); err != nil {
					logger.Ctx(ctx).Error().Err(err).Msg("error closing kafka writer")
				}
			}, nil
		},
	})
}
