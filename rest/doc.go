// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest builds OpenAPI documented JSON APIs on top of chi.
//
// # Overview
//
// An [Api] is an [http.Handler] assembled from [ApiOption]s. Every Api serves:
//   - its OpenAPI 3.0 document at GET /openapi.json
//   - liveness and readiness probes at GET /health/liveness and GET /health/readiness
//   - RFC 7807 problem details for unknown routes and unsupported methods
//
// # Operations
//
// An operation pairs a method and [Path] with a typed [Handler]. The request
// and response codecs are part of the handler type, which lets the OpenAPI
// document be generated from the Go types:
//
//	getItem := rest.Operation(
//	    http.MethodGet,
//	    rest.BasePath("/api/v1/items").Param("item_id", rest.Required()),
//	    rest.ProduceJson(getter),
//	)
//	api := rest.NewApi("Items API", "1.0", getItem)
//
// # Errors
//
// Handlers report failures by returning errors. Errors embedding [ProblemDetail]
// are written as is, request decoding errors become 400 problems and anything
// else becomes an opaque 500 problem. See [ProblemDetailsErrorHandler].
package rest
