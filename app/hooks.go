// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
)

// HookFunc runs once the inner [Runtime] has returned.
type HookFunc func(context.Context) error

// HookRegistry collects post-run hooks while a [Runtime] is being built.
type HookRegistry struct {
	hooks []HookFunc
}

// OnPostRun registers hook. Hooks run in registration order.
func (r *HookRegistry) OnPostRun(hook HookFunc) {
	r.hooks = append(r.hooks, hook)
}

// HookRuntime runs an inner [Runtime] followed by every registered hook.
type HookRuntime struct {
	inner Runtime
	hooks []HookFunc
}

// Run implements the [Runtime] interface.
//
// Every hook runs regardless of earlier failures. The returned error joins
// the runtime error with all hook errors.
func (rt HookRuntime) Run(ctx context.Context) error {
	errs := []error{rt.inner.Run(ctx)}

	// the runtime context is most likely cancelled by now
	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range rt.hooks {
		errs = append(errs, hook(hookCtx))
	}

	return errors.Join(errs...)
}

// WithHooks lets f register cleanup hooks while it builds a [Runtime].
//
//	builder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (app.Runtime, error) {
//	    store := item.NewStore()
//	    h.OnPostRun(func(ctx context.Context) error {
//	        log.InfoContext(ctx, "stopped", slog.Int("items", store.Len()))
//	        return nil
//	    })
//	    return buildServer(ctx, store)
//	})
func WithHooks[T Runtime](f func(context.Context, *HookRegistry) (T, error)) Builder[HookRuntime] {
	return BuilderFunc[HookRuntime](func(ctx context.Context) (HookRuntime, error) {
		registry := &HookRegistry{}

		inner, err := f(ctx, registry)
		if err != nil {
			return HookRuntime{}, err
		}

		return HookRuntime{
			inner: inner,
			hooks: registry.hooks,
		}, nil
	})
}
