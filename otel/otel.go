// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel configures the OpenTelemetry SDK for the Items API.
//
// Every component of the SDK (resource, sampler, processors, readers and
// providers) is a [config.Reader], so the whole pipeline is assembled lazily
// when [Build] runs and may be sourced from the environment:
//   - OTEL_SERVICE_NAME, OTEL_SERVICE_VERSION
//   - OTEL_TRACES_SAMPLER_RATIO
//   - OTEL_BSP_EXPORT_INTERVAL, OTEL_BSP_MAX_EXPORT_BATCH_SIZE
//   - OTEL_METRIC_EXPORT_INTERVAL
//   - OTEL_BLP_EXPORT_INTERVAL, OTEL_BLP_MAX_EXPORT_BATCH_SIZE
//   - ITEMS_LOG_LEVEL
package otel

import (
	"context"

	"github.com/z5labs/items/config"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

// DefaultServiceName identifies the Items API when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "items"

// Resource describes the process producing telemetry.
type Resource struct {
	ServiceName    config.Reader[string]
	ServiceVersion config.Reader[string]
}

// ResourceOption configures a [Resource].
type ResourceOption func(*Resource)

// ServiceName overrides the service.name attribute.
func ServiceName(name config.Reader[string]) ResourceOption {
	return func(r *Resource) {
		r.ServiceName = name
	}
}

// ServiceNameFromEnv reads OTEL_SERVICE_NAME.
func ServiceNameFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_NAME")
}

// ServiceVersion overrides the service.version attribute.
func ServiceVersion(version config.Reader[string]) ResourceOption {
	return func(r *Resource) {
		r.ServiceVersion = version
	}
}

// ServiceVersionFromEnv reads OTEL_SERVICE_VERSION.
func ServiceVersionFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_VERSION")
}

// NewResource initializes a [Resource].
func NewResource(opts ...ResourceOption) Resource {
	r := Resource{
		ServiceName:    config.EmptyReader[string](),
		ServiceVersion: config.EmptyReader[string](),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Read implements the [config.Reader] interface.
func (r Resource) Read(ctx context.Context) (config.Value[*resource.Resource], error) {
	attrs := []resource.Option{
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(config.MustOr(ctx, DefaultServiceName, r.ServiceName))),
	}
	if version := config.MustOr(ctx, "", r.ServiceVersion); version != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(version)))
	}

	rsc, err := resource.New(ctx, attrs...)
	if err != nil {
		return config.Value[*resource.Resource]{}, err
	}
	return config.ValueOf(rsc), nil
}

// Sampler samples a ratio of new traces, respecting the decision of a remote parent.
type Sampler struct {
	Ratio config.Reader[float64]
}

// SamplerRatioFromEnv reads OTEL_TRACES_SAMPLER_RATIO.
func SamplerRatioFromEnv() config.Reader[float64] {
	return config.Float64FromString(config.Env("OTEL_TRACES_SAMPLER_RATIO"))
}

// Read implements the [config.Reader] interface. The ratio defaults to 1.
func (s Sampler) Read(ctx context.Context) (config.Value[sdktrace.Sampler], error) {
	ratio := config.MustOr(ctx, 1.0, s.Ratio)
	return config.ValueOf(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))), nil
}
