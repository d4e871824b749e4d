package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/go-waiter-catalog/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabled(name string, insecure bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    insecure,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupOTel_Disabled_NoOp(t *testing.T) {
	preserveOTelGlobals(t)
	prev := otel.GetTracerProvider()

	cfg := enabled("svc", true)
	cfg.Enabled = false
	shutdown, err := SetupOTel(context.Background(), cfg, "v0.0.0")
	if err != nil || shutdown == nil {
		t.Fatalf("shutdown nil=%v err=%v", shutdown == nil, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatalf("disabled tracing must not replace the provider")
	}
}

func TestSetupOTel_InstallsProvider(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		preserveOTelGlobals(t)

		shutdown, err := SetupOTel(context.Background(), enabled("waiterdb-test", insecure), "v1.2.3")
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("expected *sdktrace.TracerProvider")
		}

		carrier := propagation.MapCarrier{}
		ctx, span := otel.Tracer("services/catalog").Start(context.Background(), "Reload")
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		span.End()
		if carrier.Get("traceparent") == "" {
			t.Fatalf("expected traceparent to be injected")
		}

		ct, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		if err := shutdown(ct); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
		cancel()
	}
}

func TestSetupOTel_CanceledContext_StillSucceeds(t *testing.T) {
	preserveOTelGlobals(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdown, err := SetupOTel(ctx, enabled("svc-canceled", true), "vX")
	if err != nil {
		t.Fatalf("unexpected err with canceled ctx: %v", err)
	}
	_ = shutdown(context.Background())
}

func TestSetupOTel_PassesCatalogAttributes(t *testing.T) {
	preserveOTelGlobals(t)
	orig := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = orig })

	var got []attribute.KeyValue
	newServiceResourceFn = func(ctx context.Context, serviceName, version string, attrs ...attribute.KeyValue) (*resource.Resource, error) {
		got = attrs
		return orig(ctx, serviceName, version, attrs...)
	}

	cfg := config.Config{
		DB:      config.DBConfig{Driver: config.DriverPostgres},
		Catalog: config.CatalogConfig{Locale: "ru"},
	}
	shutdown, err := SetupOTel(context.Background(), enabled("svc", true), "v1", CatalogAttributes(cfg)...)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	want := map[attribute.Key]string{AttrCatalogLocale: "ru", AttrCatalogStore: "postgres"}
	if len(got) != len(want) {
		t.Fatalf("attrs=%v", got)
	}
	for _, kv := range got {
		if want[kv.Key] != kv.Value.AsString() {
			t.Fatalf("attr %s=%q", kv.Key, kv.Value.AsString())
		}
	}
}

func TestSetupOTel_SeamErrors_LeaveGlobalsIntact(t *testing.T) {
	preserveOTelGlobals(t)
	origExp, origRes := newOTLPExporterFn, newServiceResourceFn
	t.Cleanup(func() { newOTLPExporterFn, newServiceResourceFn = origExp, origRes })

	cases := map[string]func(){
		"exporter": func() {
			newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("boom-exporter")
			}
		},
		"resource": func() {
			newOTLPExporterFn = origExp
			newServiceResourceFn = func(context.Context, string, string, ...attribute.KeyValue) (*resource.Resource, error) {
				return nil, errors.New("boom-resource")
			}
		},
	}
	for name, arm := range cases {
		arm()
		prevTP := otel.GetTracerProvider()
		prevProp := otel.GetTextMapPropagator()
		if _, err := SetupOTel(context.Background(), enabled("svc", true), "v0"); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if otel.GetTracerProvider() != prevTP || otel.GetTextMapPropagator() != prevProp {
			t.Fatalf("%s: globals changed on failure", name)
		}
	}
}
