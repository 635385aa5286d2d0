package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"shiftdesk/config"
)

// ShutdownFunc 刷新并关闭 TracerProvider
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup 初始化 OTLP gRPC 链路追踪
// 未配置 endpoint 时返回空操作，服务照常启动
func Setup(ctx context.Context, cfg *config.TelemetryConfig, logger *zap.Logger) (ShutdownFunc, error) {
	if cfg.OTLPEndpoint == "" {
		logger.Info("未配置 OTLP endpoint，链路追踪已关闭")
		return noop, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("创建 OTLP exporter 失败: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		logger.Warn("创建 otel resource 失败", zap.Error(err))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Info("链路追踪已启用", zap.String("endpoint", cfg.OTLPEndpoint))
	return provider.Shutdown, nil
}
