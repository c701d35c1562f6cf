// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/items"
	"github.com/z5labs/items/app"
	"github.com/z5labs/items/config"
	"github.com/z5labs/items/endpoint"
	"github.com/z5labs/items/health"
	httpserver "github.com/z5labs/items/http"
	"github.com/z5labs/items/item"
	"github.com/z5labs/items/otel"
	"github.com/z5labs/items/rest"

	"github.com/spf13/cobra"
)

const (
	apiTitle   = "Items API"
	apiVersion = "1.0"
)

type serveOptions struct {
	configPath string
	addr       string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Items API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := serve(cmd.Context(), opts)
			app.LogError(nil, err)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML, TOML or JSON config file")
	flags.StringVar(&opts.addr, "addr", "", "address to listen on, overrides HTTP_ADDR (default \""+httpserver.DefaultAddr+"\")")

	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	fc, err := readFileConfig(ctx, opts.configPath)
	if err != nil {
		return err
	}

	store := item.NewStore()
	readiness := &health.Binary{}

	srv := httpserver.NewServer(
		listener(opts, fc.HTTP),
		httpserver.ReadTimeout(config.Or(httpserver.ReadTimeoutFromEnv(), durationOf(fc.HTTP.ReadTimeout))),
		httpserver.ReadHeaderTimeout(config.Or(httpserver.ReadHeaderTimeoutFromEnv(), durationOf(fc.HTTP.ReadHeaderTimeout))),
		httpserver.WriteTimeout(config.Or(httpserver.WriteTimeoutFromEnv(), durationOf(fc.HTTP.WriteTimeout))),
		httpserver.IdleTimeout(config.Or(httpserver.IdleTimeoutFromEnv(), durationOf(fc.HTTP.IdleTimeout))),
		httpserver.ShutdownTimeout(config.Or(httpserver.ShutdownTimeoutFromEnv(), durationOf(fc.HTTP.ShutdownTimeout))),
		httpserver.Readiness(readiness),
	)

	api := app.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
		return newApi(ctx, store, readiness, fc.API), nil
	})

	rt := app.WithHooks(func(ctx context.Context, hooks *app.HookRegistry) (httpserver.App, error) {
		log := items.Logger("github.com/z5labs/items/cmd/itemsd")
		hooks.OnPostRun(func(ctx context.Context) error {
			log.InfoContext(ctx, "items service stopped", slog.Int("items", store.Len()))
			return nil
		})

		return httpserver.Build(srv, api).Build(ctx)
	})

	return app.Run(ctx, otel.Build(telemetry(fc.Telemetry), rt))
}

func listener(opts serveOptions, cfg HTTPConfig) httpserver.TCPListener {
	return httpserver.NewTCPListener(
		httpserver.Addr(config.Or(
			nonEmpty(opts.addr),
			httpserver.AddrFromEnv(),
			nonEmpty(cfg.Addr),
		)),
	)
}

func newApi(ctx context.Context, store *item.Store, readiness health.Monitor, cfg APIConfig) *rest.Api {
	problemTypeBase := config.MustOr(ctx, "about:blank", config.Or(
		config.Env("ITEMS_PROBLEM_TYPE_BASE"),
		nonEmpty(cfg.ProblemTypeBase),
	))

	liveness := storeLiveness(store)

	return rest.NewApi(
		apiTitle,
		apiVersion,
		rest.DefaultErrorHandler(rest.NewProblemDetailsErrorHandler(rest.WithDefaultType(problemTypeBase))),
		rest.Liveness(liveness),
		rest.Readiness(health.And(readiness, liveness)),
		endpoint.Welcome(ctx),
		endpoint.ListItems(ctx, store),
		endpoint.GetItem(ctx, store),
		endpoint.CreateItem(ctx, store),
		endpoint.ReplaceItem(ctx, store),
		endpoint.UpdateItem(ctx, store),
		endpoint.DeleteItem(ctx, store),
	)
}

// storeLiveness reports whether store answers before the probe request is done.
func storeLiveness(store *item.Store) health.Monitor {
	return health.MonitorFunc(func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			store.Len()
		}()

		select {
		case <-done:
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})
}
