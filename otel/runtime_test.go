// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/items/app"
	"github.com/z5labs/items/config"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type tracerProviderStub struct {
	tracenoop.TracerProvider

	shutdownCalls int
	shutdownErr   error
}

func (tp *tracerProviderStub) Shutdown(ctx context.Context) error {
	tp.shutdownCalls++
	return tp.shutdownErr
}

func TestBuild(t *testing.T) {
	t.Run("will register the providers before building the inner runtime", func(t *testing.T) {
		tp := &tracerProviderStub{}
		sdk := SDK{
			TextMapPropagator: config.ReaderOf[propagation.TextMapPropagator](propagation.TraceContext{}),
			TracerProvider:    config.ReaderOf[trace.TracerProvider](tp),
		}

		var seen trace.TracerProvider
		inner := app.BuilderFunc[app.RuntimeFunc](func(ctx context.Context) (app.RuntimeFunc, error) {
			seen = otel.GetTracerProvider()
			return func(ctx context.Context) error { return nil }, nil
		})

		_, err := Build(sdk, inner).Build(context.Background())
		require.NoError(t, err)
		require.Same(t, tp, seen)
		require.Equal(t, propagation.TraceContext{}.Fields(), otel.GetTextMapPropagator().Fields())
	})

	t.Run("will fall back to defaults when nothing is configured", func(t *testing.T) {
		inner := app.BuilderFunc[app.RuntimeFunc](func(ctx context.Context) (app.RuntimeFunc, error) {
			return func(ctx context.Context) error { return nil }, nil
		})

		rt, err := Build(SDK{}, inner).Build(context.Background())
		require.NoError(t, err)
		require.NotNil(t, rt.tracerProvider)
		require.NotNil(t, rt.meterProvider)
		require.NotNil(t, rt.loggerProvider)
		require.ElementsMatch(t, []string{"baggage", "traceparent", "tracestate"}, otel.GetTextMapPropagator().Fields())
	})

	t.Run("will shutdown the providers if the inner runtime can not be built", func(t *testing.T) {
		tp := &tracerProviderStub{}
		buildErr := errors.New("failed to build")
		inner := app.BuilderFunc[app.RuntimeFunc](func(ctx context.Context) (app.RuntimeFunc, error) {
			return nil, buildErr
		})

		sdk := SDK{TracerProvider: config.ReaderOf[trace.TracerProvider](tp)}
		_, err := Build(sdk, inner).Build(context.Background())
		require.ErrorIs(t, err, buildErr)
		require.Equal(t, 1, tp.shutdownCalls)
	})
}

func TestRuntime_Run(t *testing.T) {
	t.Run("will shutdown the providers after the inner runtime returns", func(t *testing.T) {
		tp := &tracerProviderStub{}
		ran := false
		inner := app.BuilderFunc[app.RuntimeFunc](func(ctx context.Context) (app.RuntimeFunc, error) {
			return func(ctx context.Context) error {
				ran = true
				return nil
			}, nil
		})

		rt, err := Build(SDK{TracerProvider: config.ReaderOf[trace.TracerProvider](tp)}, inner).Build(context.Background())
		require.NoError(t, err)

		require.NoError(t, rt.Run(context.Background()))
		require.True(t, ran)
		require.Equal(t, 1, tp.shutdownCalls)
	})

	t.Run("will join the run and shutdown errors", func(t *testing.T) {
		runErr := errors.New("run failed")
		shutdownErr := errors.New("shutdown failed")
		tp := &tracerProviderStub{shutdownErr: shutdownErr}
		inner := app.BuilderFunc[app.RuntimeFunc](func(ctx context.Context) (app.RuntimeFunc, error) {
			return func(ctx context.Context) error { return runErr }, nil
		})

		rt, err := Build(SDK{TracerProvider: config.ReaderOf[trace.TracerProvider](tp)}, inner).Build(context.Background())
		require.NoError(t, err)

		err = rt.Run(context.Background())
		require.ErrorIs(t, err, runErr)
		require.ErrorIs(t, err, shutdownErr)
	})
}
