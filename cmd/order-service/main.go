// cmd/order-service/main.go
package main

import (
	"context"
	"strings"
	"vesta/internal/pkg/bootstrap"
	"vesta/internal/pkg/httpclient"
	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/mq"
	"vesta/internal/pkg/redis"
	"vesta/internal/service/order/application"
	"vesta/internal/service/order/domain"
	"vesta/internal/service/order/infrastructure"
	"vesta/internal/service/order/infrastructure/adapter"
	"vesta/internal/service/order/interfaces"
	"vesta/internal/statemachine"

	"go.opentelemetry.io/otel"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) (func(ctx context.Context), error) {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			// 1. 基础设施
			db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
			if err != nil {
				return nil, err
			}
			redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
			if err != nil {
				return nil, err
			}
			refundWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), adapter.RefundRequestTopic)

			// 2. 仓储与状态机
			ordersRepo := infrastructure.NewGormOrdersRepository(db)
			canceledRepo := infrastructure.NewGormOrdersCanceledRepository(db)
			refundRepo := infrastructure.NewGormOrdersRefundRepository(db)

			table, err := domain.NewOrderTable()
			if err != nil {
				return nil, err
			}
			machine := statemachine.New(
				table,
				infrastructure.NewGormSnapshotStore(db),
				infrastructure.NewRedisSnapshotCache(redisClient),
				application.NewOrderStatusSync(ordersRepo),
			)

			// 3. 出站适配器
			httpClient := httpclient.NewClient(tracer)
			couponAdapter := adapter.NewCouponHTTPAdapter(httpClient, cfg.Services.Coupon.BaseURL)
			tradingAdapter := adapter.NewTradingHTTPAdapter(httpClient, cfg.Services.Trading.BaseURL)
			refundDispatcher := adapter.NewRefundKafkaAdapter(refundWriter)

			// 4. 应用服务与入站适配器
			appService := application.NewOrderApplicationService(
				machine, ordersRepo, canceledRepo, refundRepo,
				couponAdapter, tradingAdapter, refundDispatcher,
				infrastructure.NewRedisListCache(redisClient), tracer,
			)
			interfaces.NewOrderHandler(appService).RegisterRoutes(appCtx.Mux)

			return func(ctx context.Context) {
				if err := refundWriter.Close(); err != nil {
					logger.Ctx(ctx).Error().Err(err).Msg("error closing kafka writer")
				}
				if err := redisClient.Close(); err != nil {
					logger.Ctx(ctx).Error().Err(err).Msg("error closing redis client")
				}
			}, nil
		},
	})
}
