// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/nacos"
	"vesta/internal/pkg/tracing"
	"vesta/internal/pkg/utils"
)

// AppCtx 传递给业务注册函数的启动上下文
type AppCtx struct {
	Mux    *http.ServeMux
	Nacos  *nacos.Client
	Config *Config
}

// AppInfo 包含启动一个微服务所需的全部特定信息
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) (shutdown func(ctx context.Context), err error)
}

// StartService 封装所有微服务的通用启动与优雅关停逻辑
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)
	log := logger.Logger()

	// 1. Nacos（可选，未配置地址时跳过注册与配置中心）
	var nacosClient *nacos.Client
	if addrs := os.Getenv("NACOS_SERVER_ADDRS"); addrs != "" {
		var err error
		nacosClient, err = nacos.NewClient(addrs, os.Getenv("NACOS_NAMESPACE"), os.Getenv("NACOS_GROUP"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
	}

	// 2. 配置
	cfg, err := LoadConfig(info.ServiceName, nacosClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// 3. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 4. 服务注册
	var ip string
	if nacosClient != nil {
		ip, err = utils.GetOutboundIP()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := nacosClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	// 5. 组装业务并启动 HTTP Server
	mux := http.NewServeMux()
	var businessShutdown func(ctx context.Context)
	if info.RegisterHandlers != nil {
		businessShutdown, err = info.RegisterHandlers(AppCtx{Mux: mux, Nacos: nacosClient, Config: cfg})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to assemble service")
		}
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		log.Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	// 6. 优雅关停，清理顺序与启动相反
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if nacosClient != nil {
		if err := nacosClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			log.Error().Err(err).Msg("error deregistering from nacos")
		}
		nacosClient.Close()
	}

	if businessShutdown != nil {
		businessShutdown(ctx)
	}

	// 确保缓冲中的 trace 全部发出
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}

	log.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}
