// Package observability installs the OpenTelemetry tracer provider used by the
// HTTP layer (otelgin), the catalog service spans and the GORM tracing plugin.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-waiter-catalog/internal/config"
)

// Resource attribute keys describing how this catalog instance is wired.
const (
	AttrCatalogLocale = attribute.Key("catalog.locale")
	AttrCatalogStore  = attribute.Key("catalog.store")
)

// Test seams.
var (
	newOTLPClient = otlptracegrpc.NewClient

	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}

	newServiceResourceFn = func(ctx context.Context, serviceName, version string, attrs ...attribute.KeyValue) (*resource.Resource, error) {
		kv := append([]attribute.KeyValue{
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		}, attrs...)
		return resource.New(ctx, resource.WithAttributes(kv...))
	}
)

// CatalogAttributes describes the catalog deployment on the trace resource.
func CatalogAttributes(cfg config.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrCatalogLocale.String(cfg.Catalog.LocaleTag().String()),
		AttrCatalogStore.String(cfg.DB.Driver),
	}
}

// SetupOTel configures OpenTelemetry tracing and returns a shutdown function.
// When tracing is disabled the returned shutdown is a no-op and the global
// provider is left alone. Globals are only replaced once every component was
// built.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version string, attrs ...attribute.KeyValue) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	exp, err := newOTLPExporterFn(ctx, newOTLPClient(opts...))
	if err != nil {
		return nil, err
	}
	res, err := newServiceResourceFn(ctx, cfg.ServiceName, version, attrs...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
