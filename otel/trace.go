// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"time"

	"github.com/z5labs/items/config"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// BatchSpanProcessor exports finished spans in batches.
type BatchSpanProcessor struct {
	Exporter           config.Reader[sdktrace.SpanExporter]
	ExportInterval     config.Reader[time.Duration]
	MaxExportBatchSize config.Reader[int]
}

// SpanExportIntervalFromEnv reads OTEL_BSP_EXPORT_INTERVAL.
func SpanExportIntervalFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_BSP_EXPORT_INTERVAL"))
}

// SpanMaxExportBatchSizeFromEnv reads OTEL_BSP_MAX_EXPORT_BATCH_SIZE.
func SpanMaxExportBatchSizeFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("OTEL_BSP_MAX_EXPORT_BATCH_SIZE"))
}

// Read implements the [config.Reader] interface.
// The exporter is required. Batches default to 512 spans every 5s.
func (cfg BatchSpanProcessor) Read(ctx context.Context) (config.Value[sdktrace.SpanProcessor], error) {
	exporter, err := config.Read(ctx, cfg.Exporter)
	if err != nil {
		return config.Value[sdktrace.SpanProcessor]{}, err
	}

	bsp := sdktrace.NewBatchSpanProcessor(
		exporter,
		sdktrace.WithBatchTimeout(config.MustOr(ctx, 5*time.Second, cfg.ExportInterval)),
		sdktrace.WithMaxExportBatchSize(config.MustOr(ctx, 512, cfg.MaxExportBatchSize)),
	)
	return config.ValueOf(bsp), nil
}

// TracerProvider builds an SDK [trace.TracerProvider].
type TracerProvider struct {
	Resource      config.Reader[*resource.Resource]
	Sampler       config.Reader[sdktrace.Sampler]
	SpanProcessor config.Reader[sdktrace.SpanProcessor]
}

// Read implements the [config.Reader] interface.
// The span processor is required and the sampler defaults to [Sampler].
func (cfg TracerProvider) Read(ctx context.Context) (config.Value[trace.TracerProvider], error) {
	rsc, err := config.Read(ctx, config.Or[*resource.Resource](cfg.Resource, NewResource()))
	if err != nil {
		return config.Value[trace.TracerProvider]{}, err
	}

	sampler, err := config.Read(ctx, config.Or[sdktrace.Sampler](cfg.Sampler, Sampler{}))
	if err != nil {
		return config.Value[trace.TracerProvider]{}, err
	}

	sp, err := config.Read(ctx, cfg.SpanProcessor)
	if err != nil {
		return config.Value[trace.TracerProvider]{}, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(rsc),
		sdktrace.WithSampler(sampler),
		sdktrace.WithSpanProcessor(sp),
	)
	return config.ValueOf[trace.TracerProvider](tp), nil
}
