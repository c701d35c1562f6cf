// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/z5labs/items/app"
	"github.com/z5labs/items/config"
	"github.com/z5labs/items/health"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTCPListener_Read(t *testing.T) {
	t.Run("will use custom address when provided", func(t *testing.T) {
		tcpLn := NewTCPListener(Addr(config.ReaderOf("127.0.0.1:0")))

		val, err := tcpLn.Read(context.Background())
		require.NoError(t, err)

		ln, ok := val.Value()
		require.True(t, ok)
		require.NotNil(t, ln)
		defer ln.Close()

		require.Contains(t, ln.Addr().String(), "127.0.0.1:")
	})

	t.Run("will read the address from HTTP_ADDR", func(t *testing.T) {
		t.Setenv("HTTP_ADDR", "127.0.0.1:0")

		tcpLn := NewTCPListener(Addr(AddrFromEnv()))

		val, err := tcpLn.Read(context.Background())
		require.NoError(t, err)

		ln, ok := val.Value()
		require.True(t, ok)
		defer ln.Close()

		require.Contains(t, ln.Addr().String(), "127.0.0.1:")
	})

	t.Run("will return error for invalid address", func(t *testing.T) {
		tcpLn := NewTCPListener(Addr(config.ReaderOf("invalid-address")))

		_, err := tcpLn.Read(context.Background())
		require.Error(t, err)
	})
}

func TestNewServer(t *testing.T) {
	t.Run("will apply options", func(t *testing.T) {
		var ready health.Binary
		srv := NewServer(
			NewTCPListener(),
			ReadTimeout(config.ReaderOf(time.Second)),
			ReadHeaderTimeout(config.ReaderOf(2*time.Second)),
			WriteTimeout(config.ReaderOf(3*time.Second)),
			IdleTimeout(config.ReaderOf(4*time.Second)),
			ShutdownTimeout(config.ReaderOf(5*time.Second)),
			MaxHeaderBytes(config.ReaderOf(1024)),
			Readiness(&ready),
		)

		ctx := context.Background()
		require.Equal(t, time.Second, config.Must(ctx, srv.ReadTimeout))
		require.Equal(t, 2*time.Second, config.Must(ctx, srv.ReadHeaderTimeout))
		require.Equal(t, 3*time.Second, config.Must(ctx, srv.WriteTimeout))
		require.Equal(t, 4*time.Second, config.Must(ctx, srv.IdleTimeout))
		require.Equal(t, 5*time.Second, config.Must(ctx, srv.ShutdownTimeout))
		require.Equal(t, 1024, config.Must(ctx, srv.MaxHeaderBytes))
		require.Same(t, &ready, srv.readiness)
	})

	t.Run("will read timeouts from the environment", func(t *testing.T) {
		t.Setenv("HTTP_READ_TIMEOUT", "7s")
		t.Setenv("HTTP_IDLE_TIMEOUT", "1m")

		srv := NewServer(
			NewTCPListener(),
			ReadTimeout(ReadTimeoutFromEnv()),
			IdleTimeout(IdleTimeoutFromEnv()),
			WriteTimeout(WriteTimeoutFromEnv()),
		)

		ctx := context.Background()
		require.Equal(t, 7*time.Second, config.Must(ctx, srv.ReadTimeout))
		require.Equal(t, time.Minute, config.Must(ctx, srv.IdleTimeout))

		_, err := config.Read(ctx, srv.WriteTimeout)
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})
}

func handlerBuilder(h http.Handler) app.Builder[http.Handler] {
	return app.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
		return h, nil
	})
}

func TestBuild(t *testing.T) {
	t.Run("will use defaults when nothing is configured", func(t *testing.T) {
		srv := NewServer(NewTCPListener(Addr(config.ReaderOf("127.0.0.1:0"))))

		httpApp, err := Build(srv, handlerBuilder(http.NotFoundHandler())).Build(context.Background())
		require.NoError(t, err)
		defer httpApp.ls.Close()

		require.Equal(t, 5*time.Second, httpApp.srv.ReadTimeout)
		require.Equal(t, 2*time.Second, httpApp.srv.ReadHeaderTimeout)
		require.Equal(t, 10*time.Second, httpApp.srv.WriteTimeout)
		require.Equal(t, 120*time.Second, httpApp.srv.IdleTimeout)
		require.Equal(t, 1<<20, httpApp.srv.MaxHeaderBytes)
		require.Equal(t, 10*time.Second, httpApp.shutdownTimeout)
		require.NotNil(t, httpApp.srv.ErrorLog)
	})

	t.Run("will fail if the handler can not be built", func(t *testing.T) {
		buildErr := io.ErrUnexpectedEOF
		b := app.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
			return nil, buildErr
		})

		_, err := Build(NewServer(NewTCPListener()), b).Build(context.Background())
		require.ErrorIs(t, err, buildErr)
	})

	t.Run("will fail if the listener is not configured", func(t *testing.T) {
		srv := NewServer(config.EmptyReader[net.Listener]())

		_, err := Build(srv, handlerBuilder(http.NotFoundHandler())).Build(context.Background())
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})
}

func TestApp_Run(t *testing.T) {
	t.Run("will serve requests and shutdown gracefully", func(t *testing.T) {
		var ready health.Binary
		srv := NewServer(
			NewTCPListener(Addr(config.ReaderOf("127.0.0.1:0"))),
			Readiness(&ready),
		)

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		})

		httpApp, err := Build(srv, handlerBuilder(h)).Build(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpApp.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			healthy, _ := ready.Healthy(context.Background())
			return healthy
		}, 5*time.Second, 10*time.Millisecond)

		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
		resp, err := client.Get("http://" + httpApp.Addr().String())
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, "ok", string(body))

		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}

		healthy, err := ready.Healthy(context.Background())
		require.NoError(t, err)
		require.False(t, healthy)
	})

	t.Run("will return an error if the listener is already closed", func(t *testing.T) {
		srv := NewServer(NewTCPListener(Addr(config.ReaderOf("127.0.0.1:0"))))

		httpApp, err := Build(srv, handlerBuilder(http.NotFoundHandler())).Build(context.Background())
		require.NoError(t, err)
		require.NoError(t, httpApp.ls.Close())

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpApp.Run(context.Background())
		}()

		select {
		case err := <-errCh:
			require.ErrorIs(t, err, net.ErrClosed)
		case <-time.After(5 * time.Second):
			t.Fatal("run did not return after serve failed")
		}
	})
}
