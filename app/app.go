// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app composes the runtimes which make up the Items API process.
//
// A process is described as a [Builder] of some [Runtime]. Builders are
// layered with [Bind] (e.g. the OpenTelemetry runtime wraps the HTTP runtime)
// and finally executed by [Run], which ties the process lifetime to OS signals.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Builder constructs a T.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc is an adapter to allow the use of ordinary functions as [Builder]s.
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// Bind feeds the output of builder into binder to produce the next [Builder].
func Bind[A, B any](builder Builder[A], binder func(A) Builder[B]) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := builder.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return binder(a).Build(ctx)
	})
}

// Runtime is a long running component of the process.
type Runtime interface {
	Run(context.Context) error
}

// RuntimeFunc is an adapter to allow the use of ordinary functions as [Runtime]s.
type RuntimeFunc func(context.Context) error

// Run implements the [Runtime] interface.
func (f RuntimeFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Run builds the [Runtime] and runs it until it returns or the process
// receives SIGINT or SIGTERM. Panics raised while building or running,
// e.g. by a required config value which is missing, are returned as errors.
func Run[T Runtime](ctx context.Context, builder Builder[T]) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			err = fmt.Errorf("recovered from panic: %w", e)
			return
		}
		err = fmt.Errorf("recovered from panic: %v", r)
	}()

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := builder.Build(sigCtx)
	if err != nil {
		return err
	}

	return rt.Run(sigCtx)
}

// LogError writes err to handler, or to a JSON handler on stdout when
// handler is nil. It is meant for errors which happen before, or after,
// the OpenTelemetry logger provider is available.
func LogError(handler slog.Handler, err error) {
	if err == nil {
		return
	}
	if handler == nil {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}

	log := slog.New(handler)
	log.Error("items service failed", slog.Any("error", err))
}
