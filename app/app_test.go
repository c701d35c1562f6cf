// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	t.Run("will pass the first value to the binder", func(t *testing.T) {
		b := Bind(
			BuilderFunc[int](func(ctx context.Context) (int, error) {
				return 2, nil
			}),
			func(n int) Builder[string] {
				return BuilderFunc[string](func(ctx context.Context) (string, error) {
					return string(rune('a' + n)), nil
				})
			},
		)

		s, err := b.Build(context.Background())
		require.NoError(t, err)
		require.Equal(t, "c", s)
	})

	t.Run("will not call the binder if the first builder fails", func(t *testing.T) {
		buildErr := errors.New("failed")
		called := false

		b := Bind(
			BuilderFunc[int](func(ctx context.Context) (int, error) {
				return 0, buildErr
			}),
			func(n int) Builder[string] {
				called = true
				return nil
			},
		)

		_, err := b.Build(context.Background())
		require.ErrorIs(t, err, buildErr)
		require.False(t, called)
	})
}

func TestRun(t *testing.T) {
	t.Run("will run the built runtime", func(t *testing.T) {
		rt := &runtimeStub{}

		err := Run(context.Background(), BuilderFunc[*runtimeStub](func(ctx context.Context) (*runtimeStub, error) {
			return rt, nil
		}))
		require.NoError(t, err)
		require.True(t, rt.ran)
	})

	t.Run("will return a panic as an error", func(t *testing.T) {
		missing := errors.New("missing config")
		err := Run(context.Background(), BuilderFunc[*runtimeStub](func(ctx context.Context) (*runtimeStub, error) {
			panic(missing)
		}))
		require.ErrorIs(t, err, missing)
	})

	t.Run("will return a panic with a non-error value as an error", func(t *testing.T) {
		err := Run(context.Background(), BuilderFunc[*runtimeStub](func(ctx context.Context) (*runtimeStub, error) {
			panic("boom")
		}))
		require.ErrorContains(t, err, "boom")

		var target *json.SyntaxError
		require.NotPanics(t, func() {
			errors.As(err, &target)
		})
	})
}

func TestLogError(t *testing.T) {
	t.Run("will not log a nil error", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(slog.NewJSONHandler(&buf, nil), nil)
		require.Zero(t, buf.Len())
	})

	t.Run("will log the error message", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(slog.NewJSONHandler(&buf, nil), errors.New("listener closed"))

		var record map[string]any
		err := json.Unmarshal(buf.Bytes(), &record)
		require.NoError(t, err)
		require.Equal(t, "ERROR", record["level"])
		require.Equal(t, "listener closed", record["error"])
	})
}
