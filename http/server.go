// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http runs an [http.Handler] as an [app.Runtime].
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/z5labs/items"
	"github.com/z5labs/items/app"
	"github.com/z5labs/items/config"
	"github.com/z5labs/items/health"

	"github.com/sourcegraph/conc/pool"
)

// DefaultAddr is the address the Items API listens on when none is configured.
const DefaultAddr = ":8000"

// TCPListener creates a TCP [net.Listener] from a configured address.
type TCPListener struct {
	Addr config.Reader[string]
}

// TCPListenerOption configures a [TCPListener].
type TCPListenerOption func(*TCPListener)

// Addr sets the "host:port" the listener binds to.
func Addr(addr config.Reader[string]) TCPListenerOption {
	return func(tcpLn *TCPListener) {
		tcpLn.Addr = addr
	}
}

// AddrFromEnv reads the listen address from HTTP_ADDR.
func AddrFromEnv() config.Reader[string] {
	return config.Env("HTTP_ADDR")
}

// NewTCPListener initializes a [TCPListener].
func NewTCPListener(opts ...TCPListenerOption) TCPListener {
	tcpLn := TCPListener{
		Addr: config.EmptyReader[string](),
	}
	for _, opt := range opts {
		opt(&tcpLn)
	}
	return tcpLn
}

// Read implements the [config.Reader] interface.
// It binds [DefaultAddr] when no address is configured.
func (tcpLn TCPListener) Read(ctx context.Context) (config.Value[net.Listener], error) {
	addr := config.MustOr(ctx, DefaultAddr, tcpLn.Addr)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return config.Value[net.Listener]{}, err
	}
	return config.ValueOf(ln), nil
}

// Server holds the settings used to build the underlying [http.Server].
type Server struct {
	Listener          config.Reader[net.Listener]
	ReadTimeout       config.Reader[time.Duration]
	ReadHeaderTimeout config.Reader[time.Duration]
	WriteTimeout      config.Reader[time.Duration]
	IdleTimeout       config.Reader[time.Duration]
	ShutdownTimeout   config.Reader[time.Duration]
	MaxHeaderBytes    config.Reader[int]

	readiness *health.Binary
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// ReadTimeout bounds reading an entire request. Defaults to 5s.
func ReadTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ReadTimeout = d
	}
}

// ReadTimeoutFromEnv reads HTTP_READ_TIMEOUT.
func ReadTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_READ_TIMEOUT"))
}

// ReadHeaderTimeout bounds reading request headers. Defaults to 2s.
func ReadHeaderTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ReadHeaderTimeout = d
	}
}

// ReadHeaderTimeoutFromEnv reads HTTP_READ_HEADER_TIMEOUT.
func ReadHeaderTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_READ_HEADER_TIMEOUT"))
}

// WriteTimeout bounds writing a response. Defaults to 10s.
func WriteTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.WriteTimeout = d
	}
}

// WriteTimeoutFromEnv reads HTTP_WRITE_TIMEOUT.
func WriteTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_WRITE_TIMEOUT"))
}

// IdleTimeout bounds how long keep-alive connections stay open. Defaults to 120s.
func IdleTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.IdleTimeout = d
	}
}

// IdleTimeoutFromEnv reads HTTP_IDLE_TIMEOUT.
func IdleTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_IDLE_TIMEOUT"))
}

// ShutdownTimeout bounds how long in-flight requests may drain. Defaults to 10s.
func ShutdownTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ShutdownTimeout = d
	}
}

// ShutdownTimeoutFromEnv reads HTTP_SHUTDOWN_TIMEOUT.
func ShutdownTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_SHUTDOWN_TIMEOUT"))
}

// MaxHeaderBytes limits the size of request headers. Defaults to 1 MiB.
func MaxHeaderBytes(n config.Reader[int]) ServerOption {
	return func(srv *Server) {
		srv.MaxHeaderBytes = n
	}
}

// Readiness marks b healthy once the server is serving and
// unhealthy as soon as shutdown begins.
func Readiness(b *health.Binary) ServerOption {
	return func(srv *Server) {
		srv.readiness = b
	}
}

// NewServer initializes a [Server] which serves on listener.
func NewServer(listener config.Reader[net.Listener], opts ...ServerOption) Server {
	srv := Server{
		Listener:          listener,
		ReadTimeout:       config.EmptyReader[time.Duration](),
		ReadHeaderTimeout: config.EmptyReader[time.Duration](),
		WriteTimeout:      config.EmptyReader[time.Duration](),
		IdleTimeout:       config.EmptyReader[time.Duration](),
		ShutdownTimeout:   config.EmptyReader[time.Duration](),
		MaxHeaderBytes:    config.EmptyReader[int](),
	}
	for _, opt := range opts {
		opt(&srv)
	}
	return srv
}

// App is a built [Server] ready to run.
type App struct {
	ls              net.Listener
	srv             *http.Server
	shutdownTimeout time.Duration
	readiness       *health.Binary
	log             *slog.Logger
}

// Addr returns the address the server is listening on.
func (a App) Addr() net.Addr {
	return a.ls.Addr()
}

// Run implements the [app.Runtime] interface.
//
// It serves until ctx is cancelled and then gracefully shuts the server down.
// A clean shutdown returns nil.
func (a App) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		a.log.InfoContext(ctx, "serving http", slog.String("addr", a.ls.Addr().String()))
		if a.readiness != nil {
			a.readiness.MarkHealthy()
		}
		return a.srv.Serve(a.ls)
	})

	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		if a.readiness != nil {
			a.readiness.MarkUnhealthy()
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()

		a.log.InfoContext(shutdownCtx, "shutting down http server")
		return a.srv.Shutdown(shutdownCtx)
	})

	err := p.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Build binds the [http.Handler] produced by b to srv.
func Build(srv Server, b app.Builder[http.Handler]) app.Builder[App] {
	return app.Bind(b, func(h http.Handler) app.Builder[App] {
		return app.BuilderFunc[App](func(ctx context.Context) (App, error) {
			ln, err := config.Read(ctx, srv.Listener)
			if err != nil {
				return App{}, err
			}

			logHandler := items.LogHandler("github.com/z5labs/items/http")

			httpServer := &http.Server{
				Handler:           h,
				ReadTimeout:       config.MustOr(ctx, 5*time.Second, srv.ReadTimeout),
				ReadHeaderTimeout: config.MustOr(ctx, 2*time.Second, srv.ReadHeaderTimeout),
				WriteTimeout:      config.MustOr(ctx, 10*time.Second, srv.WriteTimeout),
				IdleTimeout:       config.MustOr(ctx, 120*time.Second, srv.IdleTimeout),
				MaxHeaderBytes:    config.MustOr(ctx, 1<<20, srv.MaxHeaderBytes),
				ErrorLog:          slog.NewLogLogger(logHandler, slog.LevelError),
			}

			return App{
				ls:              ln,
				srv:             httpServer,
				shutdownTimeout: config.MustOr(ctx, 10*time.Second, srv.ShutdownTimeout),
				readiness:       srv.readiness,
				log:             slog.New(logHandler),
			}, nil
		})
	})
}
