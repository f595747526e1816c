package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/logger"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const (
	protocolGRPC = "grpc"
	protocolHTTP = "http"
)

var errNoEndpoint = errors.New("OTLP endpoint required")

// Config selects where spans, metrics and bridged logs go.
type Config struct {
	ServiceName string
	Version     string
	Exporter    string // none | stdout | otlp
	Endpoint    string // host:port, otlp only
	Protocol    string // grpc (default) | http
	Insecure    bool
	Headers     map[string]string
	LogFile     string
	LogLevel    string
}

// ShutdownFunc flushes and closes whatever InitOTEL started.
type ShutdownFunc = func(context.Context) error

// InitOTEL sets up providers, tracer, meter, and returns them + bridged logger.
// Stdout exporters write to stderr so the stdio transport keeps stdout.
// The "none" exporter yields noop providers and a file-only logger.
func InitOTEL(cfg Config) (trace.Tracer, metric.Meter, *zap.SugaredLogger, ShutdownFunc, error) {
	if cfg.Exporter == "" || cfg.Exporter == ExporterNone {
		return initNoop(cfg)
	}

	exp, err := newExporters(context.Background(), cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp.spans), sdktrace.WithResource(res))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metrics)),
		sdkmetric.WithResource(res),
	)
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(exp.logs)), sdklog.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)

	cores := []zapcore.Core{otelzap.NewCore(
		cfg.ServiceName,
		otelzap.WithLoggerProvider(lp),
		otelzap.WithVersion(cfg.Version),
	)}
	if cfg.LogFile != "" {
		cores = append(cores, logger.FileCore(cfg.LogFile, logger.Level(cfg.LogLevel)))
	}
	zl := zap.New(zapcore.NewTee(cores...))

	shutdown := func(ctx context.Context) error {
		err := multierr.Combine(tp.Shutdown(ctx), lp.Shutdown(ctx), mp.Shutdown(ctx))
		_ = zl.Sync()
		return err
	}
	return tp.Tracer(cfg.ServiceName), mp.Meter(cfg.ServiceName), zl.Sugar(), shutdown, nil
}

func initNoop(cfg Config) (trace.Tracer, metric.Meter, *zap.SugaredLogger, ShutdownFunc, error) {
	sugar := logger.NewLogger(cfg.LogFile, cfg.LogLevel)
	tracer := tracenoop.NewTracerProvider().Tracer(cfg.ServiceName)
	meter := metricnoop.NewMeterProvider().Meter(cfg.ServiceName)
	shutdown := func(context.Context) error {
		_ = sugar.Sync()
		return nil
	}
	return tracer, meter, sugar, shutdown, nil
}

func serviceResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(cfg.ServiceName)}
	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(cfg.Version))
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

type exporters struct {
	spans   sdktrace.SpanExporter
	metrics sdkmetric.Exporter
	logs    sdklog.Exporter
}

func newExporters(ctx context.Context, cfg Config) (exporters, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdoutExporters()
	case ExporterOTLP:
		if cfg.Endpoint == "" {
			return exporters{}, errNoEndpoint
		}
		switch cfg.Protocol {
		case "", protocolGRPC:
			return grpcExporters(ctx, cfg)
		case protocolHTTP:
			return httpExporters(ctx, cfg)
		default:
			return exporters{}, fmt.Errorf("invalid protocol: %s", cfg.Protocol)
		}
	default:
		return exporters{}, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}
}

func stdoutExporters() (exporters, error) {
	var (
		e   exporters
		err error
	)
	if e.spans, err = stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stderr)); err != nil {
		return e, err
	}
	if e.metrics, err = stdoutmetric.New(stdoutmetric.WithPrettyPrint(), stdoutmetric.WithWriter(os.Stderr)); err != nil {
		return e, err
	}
	e.logs, err = stdoutlog.New(stdoutlog.WithWriter(os.Stderr))
	return e, err
}

func grpcExporters(ctx context.Context, cfg Config) (exporters, error) {
	spanOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithHeaders(cfg.Headers)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithHeaders(cfg.Headers)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint), otlploggrpc.WithHeaders(cfg.Headers)}
	if cfg.Insecure {
		spanOpts = append(spanOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	var (
		e   exporters
		err error
	)
	if e.spans, err = otlptrace.New(ctx, otlptracegrpc.NewClient(spanOpts...)); err != nil {
		return e, err
	}
	if e.metrics, err = otlpmetricgrpc.New(ctx, metricOpts...); err != nil {
		return e, err
	}
	e.logs, err = otlploggrpc.New(ctx, logOpts...)
	return e, err
}

func httpExporters(ctx context.Context, cfg Config) (exporters, error) {
	spanOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithHeaders(cfg.Headers)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithHeaders(cfg.Headers)}
	logOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint), otlploghttp.WithHeaders(cfg.Headers)}
	if cfg.Insecure {
		spanOpts = append(spanOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		logOpts = append(logOpts, otlploghttp.WithInsecure())
	}

	var (
		e   exporters
		err error
	)
	if e.spans, err = otlptrace.New(ctx, otlptracehttp.NewClient(spanOpts...)); err != nil {
		return e, err
	}
	if e.metrics, err = otlpmetrichttp.New(ctx, metricOpts...); err != nil {
		return e, err
	}
	e.logs, err = otlploghttp.New(ctx, logOpts...)
	return e, err
}
