// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/z5labs/items"
	"github.com/z5labs/items/health"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ApiOptions is the state an [ApiOption] can modify.
type ApiOptions struct {
	mux        *chi.Mux
	def        *openapi3.Spec
	errHandler ErrorHandler
	readiness  health.Monitor
	liveness   health.Monitor
}

// ApiOption configures an [Api].
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(ao *ApiOptions) {
	f(ao)
}

// DefaultErrorHandler replaces the [ErrorHandler] used by operations.
// It must precede those operations.
func DefaultErrorHandler(eh ErrorHandler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.errHandler = eh
	})
}

// Readiness serves GET /health/readiness from m. It responds 200 while m
// is healthy and 503 otherwise. Without it the probe always responds 200.
//
// See [Liveness, Readiness, and Startup Probes] for more details.
//
// [Liveness, Readiness, and Startup Probes]: https://kubernetes.io/docs/concepts/configuration/liveness-readiness-startup-probes/
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.readiness = m
	})
}

// Liveness serves GET /health/liveness from m. It responds 200 while m
// is healthy and 503 otherwise.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.liveness = m
	})
}

// Api is an OpenAPI documented [http.Handler].
type Api struct {
	h http.Handler
}

// NewApi initializes an [Api] titled title at version version.
//
// Trailing slashes are stripped from request paths before routing, so
// GET /api/v1/ and GET /api/v1 reach the same operation.
func NewApi(title, version string, opts ...ApiOption) *Api {
	log := items.Logger("github.com/z5labs/items/rest")

	ao := &ApiOptions{
		mux: chi.NewMux(),
		def: &openapi3.Spec{
			Openapi: "3.0.3",
			Info: openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
		errHandler: NewProblemDetailsErrorHandler(),
		readiness:  health.MonitorFunc(alwaysHealthy),
		liveness:   health.MonitorFunc(alwaysHealthy),
	}
	ao.mux.Use(middleware.StripSlashes)

	ao.mux.NotFound(problemHandler(ao, http.StatusNotFound, "Not Found", "route-not-found"))
	ao.mux.MethodNotAllowed(problemHandler(ao, http.StatusMethodNotAllowed, "Method Not Allowed", "method-not-allowed"))

	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}

	ao.mux.Method(http.MethodGet, "/health/liveness", healthHandler(ao.liveness))
	ao.mux.Method(http.MethodGet, "/health/readiness", healthHandler(ao.readiness))

	ao.mux.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		err := json.NewEncoder(w).Encode(ao.def)
		if err == nil {
			return
		}
		log.ErrorContext(
			r.Context(),
			"failed to encode openapi schema to json",
			slog.Any("error", err),
		)
	})

	return &Api{
		h: otelhttp.NewHandler(ao.mux, title),
	}
}

// ServeHTTP implements the [http.Handler] interface.
func (api *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.h.ServeHTTP(w, r)
}

func problemHandler(ao *ApiOptions, status int, title, problemType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ao.errHandler.OnError(r.Context(), w, RouteError{
			ProblemDetail: ProblemDetail{
				Type:   problemType,
				Title:  title,
				Status: status,
				Detail: r.Method + " " + r.URL.Path,
			},
		})
	}
}

// RouteError is reported for requests which match no operation.
type RouteError struct {
	ProblemDetail
}
