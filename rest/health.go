// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/items"
	"github.com/z5labs/items/health"
)

func alwaysHealthy(context.Context) (bool, error) {
	return true, nil
}

func healthHandler(m health.Monitor) http.Handler {
	log := items.Logger("github.com/z5labs/items/rest")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		healthy, err := m.Healthy(ctx)
		if err != nil {
			log.ErrorContext(ctx, "failed to check health", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		if !healthy || err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
