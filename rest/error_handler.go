// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
)

// HttpResponseWriter is implemented by errors which know the status code
// they should be reported with.
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler writes the response for an error returned while serving an operation.
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is an adapter to allow the use of ordinary functions as [ErrorHandler]s.
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// OnError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// BadRequestError reports a request which could not be decoded or failed
// parameter validation. Cause holds the specific reason.
type BadRequestError struct {
	Cause error
}

func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request error: %v", e.Cause)
}

// Unwrap returns the underlying cause of the bad request.
func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// WriteHttpResponse implements the [HttpResponseWriter] interface.
func (e BadRequestError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
}

// InvalidContentTypeError is the cause of a [BadRequestError] for a request
// body sent with the wrong media type.
type InvalidContentTypeError struct {
	ContentType string
}

func (e InvalidContentTypeError) Error() string {
	return fmt.Sprintf("invalid content type for request: %q", e.ContentType)
}

// InvalidJsonError is the cause of a [BadRequestError] for a request body
// which is not valid JSON for the expected type.
type InvalidJsonError struct {
	Cause error
}

func (e InvalidJsonError) Error() string {
	return fmt.Sprintf("invalid json request body: %v", e.Cause)
}

// Unwrap returns the decoding error.
func (e InvalidJsonError) Unwrap() error {
	return e.Cause
}
