// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"

	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/canonical/tenant-sites/internal/logging"
)

const serviceName = "tenant-sites"

type Tracer struct {
	tracer trace.Tracer

	logger logging.LoggerInterface
}

func (t *Tracer) init(service string, e sdktrace.SpanExporter) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(e),
		sdktrace.WithResource(
			resource.NewSchemaless(
				attribute.String("service.name", service),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			jaeger.Jaeger{},
		),
	)

	t.tracer = tp.Tracer(service)
}

// Start creates a span through the configured provider, spans carry the service name
func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

func (t *Tracer) exporter(cfg *Config) (sdktrace.SpanExporter, error) {
	var client otlptrace.Client

	switch {
	case cfg.OtelGRPCEndpoint != "":
		client = otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.OtelGRPCEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	case cfg.OtelHTTPEndpoint != "":
		client = otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.OtelHTTPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		t.logger.Info("no otel endpoint configured, tracing to stdout")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	return otlptrace.New(context.Background(), client)
}

func NewTracer(cfg *Config) *Tracer {
	t := new(Tracer)
	t.logger = cfg.Logger

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	exporter, err := t.exporter(cfg)
	if err != nil {
		t.logger.Errorf("unable to initialize tracing exporter due: %v", err)
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	t.init(serviceName, exporter)

	return t
}

func NewNoopTracer() *Tracer {
	t := new(Tracer)
	t.tracer = noop.NewTracerProvider().Tracer(serviceName)
	t.logger = logging.NewNoopLogger()

	return t
}
