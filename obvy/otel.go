package obvy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracerName is the instrumentation scope of every span this module starts.
const TracerName = "github.com/W-Mai/simple-compose"

// InitOTelHNY uses the Honeycomb library to interface with OTel
func InitOTelHNY() (func(), error) {
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		return nil, fmt.Errorf("failed to configure OpenTelemetry: %w", err)
	}
	return func() { otelShutdown() }, nil
}

// InitOTelGRF uses the Grafana recommended configuration including Baggage for propagation
func InitOTelGRF() (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, err
}

// InitOTel picks an exporter by name: "honeycomb", "otlp", or anything else for none.
// The returned func flushes and stops tracing and is never nil.
func InitOTel(mode string) (func(), error) {
	switch mode {
	case "honeycomb":
		shutdown, err := InitOTelHNY()
		if err != nil {
			return func() {}, err
		}
		slog.Info("Tracing to Honeycomb")
		return shutdown, nil
	case "otlp":
		tp, err := InitOTelGRF()
		if err != nil {
			return func() {}, fmt.Errorf("failed to configure OTLP exporter: %w", err)
		}
		slog.Info("Tracing over OTLP/HTTP")
		return func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				slog.Error("Tracer shutdown failed", slog.Any("error", err))
			}
		}, nil
	}
	slog.Debug("Tracing disabled", slog.String("mode", mode))
	return func() {}, nil
}
