// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	// 默认输出到 stderr，服务启动时可通过 Init 覆盖
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 初始化全局日志器，注入服务名，级别从环境变量 LOG_LEVEL 读取
func Init(serviceName string) {
	level := zerolog.InfoLevel
	if lv, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lv != zerolog.NoLevel {
		level = lv
	}
	zerolog.TimeFieldFormat = time.RFC3339
	root = zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局日志器
func Logger() *zerolog.Logger {
	return &root
}

// Ctx 返回一个带链路信息的日志器：如果 ctx 中存在有效的 Span，
// 自动附加 trace_id / span_id 字段，方便与 Jaeger 中的链路关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &root
	}
	l := root.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &l
}
