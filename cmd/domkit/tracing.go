package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-go/domkit/pkg/hub"
)

// setupTracing installs a global tracer provider exporting spans to w as
// JSON lines and turns on hub publish spans. The returned func flushes and
// restores the previous provider.
func setupTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "domkit"),
			attribute.String("service.version", version),
		)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	hub.EnableTracing(true)

	return func(ctx context.Context) error {
		hub.EnableTracing(false)
		otel.SetTracerProvider(prev)
		return tp.Shutdown(ctx)
	}, nil
}
