// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"testing"

	"github.com/z5labs/items/config"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

func TestResource_Read(t *testing.T) {
	testCases := []struct {
		Name    string
		Env     map[string]string
		Opts    []ResourceOption
		Service string
		Version string
	}{
		{
			Name:    "defaults the service name",
			Service: DefaultServiceName,
		},
		{
			Name: "reads the environment",
			Env: map[string]string{
				"OTEL_SERVICE_NAME":    "items-test",
				"OTEL_SERVICE_VERSION": "1.0",
			},
			Opts: []ResourceOption{
				ServiceName(ServiceNameFromEnv()),
				ServiceVersion(ServiceVersionFromEnv()),
			},
			Service: "items-test",
			Version: "1.0",
		},
		{
			Name:    "applies overrides",
			Opts:    []ResourceOption{ServiceName(config.ReaderOf("custom"))},
			Service: "custom",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			for k, v := range testCase.Env {
				t.Setenv(k, v)
			}

			rsc, err := config.Read(context.Background(), NewResource(testCase.Opts...))
			require.NoError(t, err)

			name, ok := rsc.Set().Value(semconv.ServiceNameKey)
			require.True(t, ok)
			require.Equal(t, testCase.Service, name.AsString())

			version, ok := rsc.Set().Value(semconv.ServiceVersionKey)
			require.Equal(t, testCase.Version != "", ok)
			require.Equal(t, testCase.Version, version.AsString())

			_, ok = rsc.Set().Value(semconv.HostNameKey)
			require.True(t, ok)
		})
	}
}

func TestSampler_Read(t *testing.T) {
	t.Run("will sample everything by default", func(t *testing.T) {
		sampler, err := config.Read(context.Background(), Sampler{})
		require.NoError(t, err)
		require.Contains(t, sampler.Description(), "AlwaysOnSampler")
	})

	t.Run("will read the ratio from the environment", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.25")

		sampler, err := config.Read(context.Background(), Sampler{Ratio: SamplerRatioFromEnv()})
		require.NoError(t, err)
		require.Contains(t, sampler.Description(), "TraceIDRatioBased{0.25}")
	})
}

func TestTracerProvider_Read(t *testing.T) {
	t.Run("will export spans through the configured processor", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		cfg := TracerProvider{
			SpanProcessor: config.ReaderOf(sdktrace.NewSimpleSpanProcessor(exporter)),
		}

		tp, err := config.Read(context.Background(), cfg)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		span.SetAttributes(attribute.Int64("item_id", 1))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Equal(t, "op", spans[0].Name)
	})

	t.Run("will fail without a span processor", func(t *testing.T) {
		_, err := config.Read(context.Background(), TracerProvider{})
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})

	t.Run("will fail without a span exporter", func(t *testing.T) {
		_, err := config.Read(context.Background(), BatchSpanProcessor{})
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})
}

func TestMeterProvider_Read(t *testing.T) {
	t.Run("will collect through the configured reader", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		cfg := MeterProvider{
			Reader: config.ReaderOf[sdkmetric.Reader](reader),
		}

		mp, err := config.Read(context.Background(), cfg)
		require.NoError(t, err)

		counter, err := mp.Meter("test").Int64Counter("items.mutations")
		require.NoError(t, err)
		counter.Add(context.Background(), 1)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		require.Len(t, rm.ScopeMetrics, 1)
		require.Equal(t, "items.mutations", rm.ScopeMetrics[0].Metrics[0].Name)
	})

	t.Run("will fail without a reader", func(t *testing.T) {
		_, err := config.Read(context.Background(), MeterProvider{})
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})
}
