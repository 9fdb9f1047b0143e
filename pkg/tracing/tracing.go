// Package tracing wraps engine operations and server requests in
// OpenTelemetry spans, exported to stdout. Only the stdout exporter is
// wired: a single-node, standalone key-value store has no live trace
// collector to ship spans to, so a network exporter (jaeger, zipkin)
// would have nothing to talk to.
package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies this module's spans in the OpenTelemetry
// pipeline.
const TracerName = "github.com/ignitekv/ignite"

// Provider owns the tracer provider lifecycle. A nil *Provider is valid:
// Tracer() then returns a no-op tracer and Shutdown is a no-op, so
// tracing stays fully optional.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// New builds a Provider that writes spans as JSON to w.
func New(ctx context.Context, w io.Writer) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName("ignite-kv")))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

// Tracer returns the tracer to use for this module's spans.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return otel.Tracer(TracerName)
	}
	return p.tp.Tracer(TracerName)
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
