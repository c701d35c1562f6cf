// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/items/app"
	"github.com/z5labs/items/config"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SDK holds the providers registered globally for the lifetime of the process.
// Any reader which is nil or unset falls back to a no-op provider, except
// TextMapPropagator which falls back to W3C baggage plus trace context.
type SDK struct {
	TextMapPropagator config.Reader[propagation.TextMapPropagator]
	TracerProvider    config.Reader[trace.TracerProvider]
	MeterProvider     config.Reader[metric.MeterProvider]
	LoggerProvider    config.Reader[log.LoggerProvider]

	// ShutdownTimeout bounds flushing the providers on exit. Defaults to 5s.
	ShutdownTimeout config.Reader[time.Duration]
}

// Runtime wraps another [app.Runtime] and owns the OpenTelemetry providers.
// Use [Build] to create one.
type Runtime struct {
	inner           app.Runtime
	tracerProvider  trace.TracerProvider
	meterProvider   metric.MeterProvider
	loggerProvider  log.LoggerProvider
	shutdownTimeout time.Duration
}

// Build registers the providers described by sdk as the global ones and only
// then builds the inner runtime, so that loggers, tracers and meters created
// while building are backed by the configured SDK.
func Build[T app.Runtime](sdk SDK, builder app.Builder[T]) app.Builder[Runtime] {
	return app.BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		var (
			defaultPropagator propagation.TextMapPropagator = propagation.NewCompositeTextMapPropagator(
				propagation.Baggage{},
				propagation.TraceContext{},
			)
			defaultTracerProvider trace.TracerProvider = tracenoop.NewTracerProvider()
			defaultMeterProvider  metric.MeterProvider = metricnoop.NewMeterProvider()
			defaultLoggerProvider log.LoggerProvider   = lognoop.NewLoggerProvider()
		)

		tp := config.MustOr(ctx, defaultTracerProvider, sdk.TracerProvider)
		mp := config.MustOr(ctx, defaultMeterProvider, sdk.MeterProvider)
		lp := config.MustOr(ctx, defaultLoggerProvider, sdk.LoggerProvider)

		otel.SetTextMapPropagator(config.MustOr(ctx, defaultPropagator, sdk.TextMapPropagator))
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		global.SetLoggerProvider(lp)

		inner, err := builder.Build(ctx)
		if err != nil {
			return Runtime{}, errors.Join(err, shutdown(time.Second, tp, mp, lp).Close())
		}

		return Runtime{
			inner:           inner,
			tracerProvider:  tp,
			meterProvider:   mp,
			loggerProvider:  lp,
			shutdownTimeout: config.MustOr(ctx, 5*time.Second, sdk.ShutdownTimeout),
		}, nil
	})
}

// Run starts the Go runtime metrics, runs the inner runtime and finally
// flushes and shuts down every provider, even when the inner runtime fails.
func (rt Runtime) Run(ctx context.Context) (err error) {
	defer try.Close(&err, shutdown(
		rt.shutdownTimeout,
		rt.tracerProvider,
		rt.meterProvider,
		rt.loggerProvider,
	))

	err = runtime.Start(
		runtime.WithMeterProvider(rt.meterProvider),
		runtime.WithMinimumReadMemStatsInterval(time.Second),
	)
	if err != nil {
		return err
	}

	return rt.inner.Run(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// shutdown ignores providers, like the no-op ones, which can not be shut down.
func shutdown(timeout time.Duration, providers ...any) closerFunc {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, p := range providers {
			s, ok := p.(shutdowner)
			if !ok {
				continue
			}
			errs = append(errs, s.Shutdown(ctx))
		}
		return errors.Join(errs...)
	}
}
