// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"time"

	"github.com/z5labs/items/config"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// PeriodicReader collects and exports metrics on a fixed interval.
type PeriodicReader struct {
	Exporter       config.Reader[sdkmetric.Exporter]
	ExportInterval config.Reader[time.Duration]
}

// MetricExportIntervalFromEnv reads OTEL_METRIC_EXPORT_INTERVAL.
func MetricExportIntervalFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_METRIC_EXPORT_INTERVAL"))
}

// Read implements the [config.Reader] interface.
// The exporter is required and the interval defaults to 10s.
// Go scheduler metrics are collected along with every export.
func (cfg PeriodicReader) Read(ctx context.Context) (config.Value[sdkmetric.Reader], error) {
	exporter, err := config.Read(ctx, cfg.Exporter)
	if err != nil {
		return config.Value[sdkmetric.Reader]{}, err
	}

	r := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(config.MustOr(ctx, 10*time.Second, cfg.ExportInterval)),
		sdkmetric.WithProducer(runtime.NewProducer()),
	)
	return config.ValueOf[sdkmetric.Reader](r), nil
}

// MeterProvider builds an SDK [metric.MeterProvider].
type MeterProvider struct {
	Resource config.Reader[*resource.Resource]
	Reader   config.Reader[sdkmetric.Reader]
}

// Read implements the [config.Reader] interface. The reader is required.
func (cfg MeterProvider) Read(ctx context.Context) (config.Value[metric.MeterProvider], error) {
	rsc, err := config.Read(ctx, config.Or[*resource.Resource](cfg.Resource, NewResource()))
	if err != nil {
		return config.Value[metric.MeterProvider]{}, err
	}

	r, err := config.Read(ctx, cfg.Reader)
	if err != nil {
		return config.Value[metric.MeterProvider]{}, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(rsc),
		sdkmetric.WithReader(r),
	)
	return config.ValueOf[metric.MeterProvider](mp), nil
}
