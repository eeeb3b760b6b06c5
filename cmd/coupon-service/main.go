// cmd/coupon-service/main.go
package main

import (
	"context"
	"vesta/internal/pkg/bootstrap"
	"vesta/internal/service/coupon/application"
	"vesta/internal/service/coupon/infrastructure"
	"vesta/internal/service/coupon/interfaces"

	"go.opentelemetry.io/otel"
)

const serviceName = "coupon-service"

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8180,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) (func(ctx context.Context), error) {
			db, err := infrastructure.NewMysqlDB(appCtx.Config.Infra.Mysql.DSN)
			if err != nil {
				return nil, err
			}

			service := application.NewCouponApplicationService(
				infrastructure.NewGormCouponRepository(db),
				otel.Tracer(serviceName),
			)
			interfaces.NewCouponHandler(service).RegisterRoutes(appCtx.Mux)
			return nil, nil
		},
	})
}
