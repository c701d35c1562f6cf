// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/z5labs/items/config"
	"github.com/z5labs/items/otel"
	"github.com/z5labs/items/otel/otlp"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
)

// telemetry exports every signal over OTLP when a collector endpoint is
// configured for it. Without one, traces and metrics are dropped and logs
// are written to stdout as JSON lines.
func telemetry(cfg TelemetryConfig) otel.SDK {
	return telemetryTo(cfg, os.Stdout)
}

func telemetryTo(cfg TelemetryConfig, stdout io.Writer) otel.SDK {
	rsc := otel.NewResource(
		otel.ServiceName(config.Or(otel.ServiceNameFromEnv(), nonEmpty(cfg.ServiceName))),
		otel.ServiceVersion(config.Or(otel.ServiceVersionFromEnv(), nonEmpty(cfg.ServiceVersion), config.ReaderOf(version))),
	)

	minLevel := config.Or(otel.LogLevelFromEnv(), otel.LogLevel(nonEmpty(cfg.LogLevel)))

	var loggerLevels config.Reader[map[string]slog.Level]
	if len(cfg.LogLevels) > 0 {
		loggerLevels = otel.LoggerLevels(config.ReaderOf(cfg.LogLevels))
	}

	return otel.SDK{
		TracerProvider: withEndpoint[trace.TracerProvider](otlp.Traces, otel.TracerProvider{
			Resource: rsc,
			Sampler: otel.Sampler{
				Ratio: otel.SamplerRatioFromEnv(),
			},
			SpanProcessor: otel.BatchSpanProcessor{
				Exporter:           otlp.TraceExporterFromEnv(),
				ExportInterval:     otel.SpanExportIntervalFromEnv(),
				MaxExportBatchSize: otel.SpanMaxExportBatchSizeFromEnv(),
			},
		}),
		MeterProvider: withEndpoint[metric.MeterProvider](otlp.Metrics, otel.MeterProvider{
			Resource: rsc,
			Reader: otel.PeriodicReader{
				Exporter:       otlp.MetricExporterFromEnv(),
				ExportInterval: otel.MetricExportIntervalFromEnv(),
			},
		}),
		LoggerProvider: config.Or[log.LoggerProvider](
			withEndpoint[log.LoggerProvider](otlp.Logs, otel.LoggerProvider{
				Resource: rsc,
				Processor: otel.LevelFilter{
					MinLevel:     minLevel,
					LoggerLevels: loggerLevels,
					Processor: otel.BatchLogProcessor{
						Exporter:           otlp.LogExporterFromEnv(),
						ExportInterval:     otel.LogExportIntervalFromEnv(),
						MaxExportBatchSize: otel.LogMaxExportBatchSizeFromEnv(),
					},
				},
			}),
			otel.LoggerProvider{
				Resource: rsc,
				Processor: otel.LevelFilter{
					MinLevel:     minLevel,
					LoggerLevels: loggerLevels,
					Processor: otel.SimpleLogProcessor{
						Exporter: config.ReaderOf[sdklog.Exporter](otel.NewJSONExporter(stdout)),
					},
				},
			},
		),
	}
}

// withEndpoint only reads r when an OTLP endpoint is configured for signal.
func withEndpoint[T any](signal otlp.Signal, r config.Reader[T]) config.Reader[T] {
	return config.ReaderFunc[T](func(ctx context.Context) (config.Value[T], error) {
		_, err := config.Read(ctx, otlp.EndpointFromEnv(signal))
		if errors.Is(err, config.ErrValueNotSet) {
			return config.Value[T]{}, nil
		}
		if err != nil {
			return config.Value[T]{}, err
		}
		return r.Read(ctx)
	})
}
