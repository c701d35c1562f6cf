// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/z5labs/items"

	"github.com/google/uuid"
)

// ProblemDetail is an RFC 7807 problem details object.
//
// Embed it in an error type to add extension members:
//
//	type NotFoundError struct {
//	    rest.ProblemDetail
//	    ItemID int64 `json:"item_id"`
//	}
//
// Reference: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type identifies the problem type. A relative token like "not-found"
	// is resolved against the base set with [WithDefaultType].
	Type string `json:"type"`

	// Title is a short summary which does not change between occurrences.
	Title string `json:"title"`

	// Status repeats the HTTP status code of the response.
	Status int `json:"status"`

	// Detail explains this occurrence of the problem.
	Detail string `json:"detail,omitempty"`

	// Instance identifies this occurrence. It is generated when empty.
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

type problemDetailMarker interface {
	error
	statusCode() int
}

func (p ProblemDetail) statusCode() int {
	return p.Status
}

// ProblemDetailsErrorHandler is an [ErrorHandler] which writes RFC 7807
// application/problem+json responses.
//
// Errors are resolved in order:
//  1. errors embedding [ProblemDetail] are written with all of their extension members
//  2. a [BadRequestError] becomes a 400 problem describing its cause
//  3. anything else becomes a 500 problem which does not leak the error text
//
// Every error is logged, at WARN for 4xx problems and ERROR otherwise.
type ProblemDetailsErrorHandler struct {
	defaultType string
	log         *slog.Logger
}

// ProblemDetailsOption configures a [ProblemDetailsErrorHandler].
type ProblemDetailsOption func(*ProblemDetailsErrorHandler)

// WithDefaultType sets the base URI relative problem types are resolved
// against, e.g. "https://items.example.com/problems/". It defaults to
// "about:blank", in which case every problem has type "about:blank".
func WithDefaultType(uri string) ProblemDetailsOption {
	return func(h *ProblemDetailsErrorHandler) {
		h.defaultType = uri
	}
}

// NewProblemDetailsErrorHandler initializes a [ProblemDetailsErrorHandler].
func NewProblemDetailsErrorHandler(opts ...ProblemDetailsOption) *ProblemDetailsErrorHandler {
	h := &ProblemDetailsErrorHandler{
		defaultType: "about:blank",
		log:         items.Logger("github.com/z5labs/items/rest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnError implements the [ErrorHandler] interface.
func (h *ProblemDetailsErrorHandler) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	var body any
	var status int

	var pd problemDetailMarker
	var badRequest BadRequestError
	switch {
	case errors.As(err, &pd):
		status = pd.statusCode()
		body = pd
	case errors.As(err, &badRequest):
		p := h.badRequestProblem(badRequest)
		status = p.Status
		body = p
	default:
		status = http.StatusInternalServerError
		body = ProblemDetail{
			Title:  "Internal Server Error",
			Status: status,
			Detail: "An internal server error occurred.",
		}
	}

	members, encodeErr := h.members(body)
	if encodeErr != nil {
		h.log.ErrorContext(ctx, "failed to encode problem details", slog.Any("error", encodeErr))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.log.Log(
		ctx,
		level,
		"sending error response",
		slog.Int("status", status),
		slog.Any("instance", members["instance"]),
		slog.Any("error", err),
	)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(members); encodeErr != nil {
		h.log.ErrorContext(ctx, "failed to write problem details", slog.Any("error", encodeErr))
	}
}

// members flattens body, including any extension members, so that the
// type and instance members can be completed.
func (h *ProblemDetailsErrorHandler) members(body any) (map[string]any, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var members map[string]any
	err = json.Unmarshal(b, &members)
	if err != nil {
		return nil, err
	}

	typ, _ := members["type"].(string)
	members["type"] = h.typeURI(typ)

	if instance, _ := members["instance"].(string); instance == "" {
		members["instance"] = "urn:uuid:" + uuid.NewString()
	}
	return members, nil
}

func (h *ProblemDetailsErrorHandler) typeURI(typ string) string {
	switch {
	case strings.Contains(typ, ":"):
		return typ
	case typ == "" || h.defaultType == "about:blank":
		return h.defaultType
	default:
		return h.defaultType + typ
	}
}

func (h *ProblemDetailsErrorHandler) badRequestProblem(err BadRequestError) ProblemDetail {
	p := ProblemDetail{
		Type:   "bad-request",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}
	if err.Cause != nil {
		p.Detail = err.Cause.Error()
	}

	var missingParam MissingRequiredParameterError
	var invalidParam InvalidParameterValueError
	var invalidContentType InvalidContentTypeError
	var invalidJson InvalidJsonError
	switch {
	case errors.As(err.Cause, &missingParam):
		p.Type = "missing-required-parameter"
		p.Title = "Missing Required Parameter"
	case errors.As(err.Cause, &invalidParam):
		p.Type = "invalid-parameter-value"
		p.Title = "Invalid Parameter Value"
	case errors.As(err.Cause, &invalidContentType):
		p.Type = "invalid-content-type"
		p.Title = "Invalid Content Type"
	case errors.As(err.Cause, &invalidJson):
		p.Type = "invalid-json"
		p.Title = "Invalid JSON"
	}
	return p
}
