// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"

	"github.com/swaggest/openapi-go/openapi3"
)

// Consumer consumes a request without producing a response body.
type Consumer[T any] interface {
	Consume(context.Context, *T) error
}

// ConsumerFunc is an adapter to allow the use of ordinary functions as [Consumer]s.
type ConsumerFunc[T any] func(context.Context, *T) error

// Consume implements the [Consumer] interface.
func (f ConsumerFunc[T]) Consume(ctx context.Context, req *T) error {
	return f(ctx, req)
}

// ConsumerHandler is a [Handler] which responds 204 No Content once its
// [Consumer] succeeds. DELETE operations are the typical use.
type ConsumerHandler[T any] struct {
	c Consumer[T]
}

// ProduceNothing initializes a [ConsumerHandler].
func ProduceNothing[T any](c Consumer[T]) *ConsumerHandler[T] {
	return &ConsumerHandler[T]{
		c: c,
	}
}

// Handle implements the [Handler] interface.
func (h *ConsumerHandler[T]) Handle(ctx context.Context, req *T) (*NoContentResponse, error) {
	err := h.c.Consume(ctx, req)
	if err != nil {
		return nil, err
	}
	return &NoContentResponse{}, nil
}

// NoContentResponse is a 204 No Content response.
type NoContentResponse struct{}

// WriteResponse implements the [ResponseWriter] interface.
func (*NoContentResponse) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Spec implements the [TypedResponse] interface.
func (*NoContentResponse) Spec() (int, openapi3.ResponseOrRef, error) {
	return http.StatusNoContent, openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(http.StatusNoContent),
		},
	}, nil
}

// Producer produces a response without reading a request body.
type Producer[T any] interface {
	Produce(context.Context) (*T, error)
}

// ProducerFunc is an adapter to allow the use of ordinary functions as [Producer]s.
type ProducerFunc[T any] func(context.Context) (*T, error)

// Produce implements the [Producer] interface.
func (f ProducerFunc[T]) Produce(ctx context.Context) (*T, error) {
	return f(ctx)
}

// ProducerHandler is a [Handler] which ignores the request body.
type ProducerHandler[T any] struct {
	p Producer[T]
}

// ConsumeNothing initializes a [ProducerHandler].
func ConsumeNothing[T any](p Producer[T]) *ProducerHandler[T] {
	return &ProducerHandler[T]{
		p: p,
	}
}

// Handle implements the [Handler] interface.
func (h *ProducerHandler[T]) Handle(ctx context.Context, _ *EmptyRequest) (*T, error) {
	return h.p.Produce(ctx)
}

// EmptyRequest is a request without a body.
type EmptyRequest struct{}

// ReadRequest implements the [RequestReader] interface.
func (*EmptyRequest) ReadRequest(ctx context.Context, r *http.Request) error {
	return nil
}

// Spec implements the [TypedRequest] interface.
func (*EmptyRequest) Spec() (openapi3.RequestBodyOrRef, error) {
	return openapi3.RequestBodyOrRef{}, nil
}
