// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// OperationOptions is the state an [OperationOption] can modify.
type OperationOptions struct {
	summary    string
	tags       []string
	problems   []int
	parameters []openapi3.ParameterOrRef
	transforms []func(*http.Request) (*http.Request, error)
	errHandler ErrorHandler
}

// OperationOption configures an operation registered with [Operation].
type OperationOption func(*OperationOptions)

// Summary documents what the operation does.
func Summary(s string) OperationOption {
	return func(oo *OperationOptions) {
		oo.summary = s
	}
}

// Tags groups the operation in the OpenAPI document.
func Tags(tags ...string) OperationOption {
	return func(oo *OperationOptions) {
		oo.tags = append(oo.tags, tags...)
	}
}

// Problems documents the status codes the operation may respond with
// as application/problem+json.
func Problems(statuses ...int) OperationOption {
	return func(oo *OperationOptions) {
		oo.problems = append(oo.problems, statuses...)
	}
}

// Handler implements the logic of an operation.
type Handler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as [Handler]s.
type HandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// RequestReader is implemented by types which decode themselves from a [http.Request].
type RequestReader[T any] interface {
	*T

	ReadRequest(context.Context, *http.Request) error
}

// TypedRequest is a [RequestReader] which documents its request body.
type TypedRequest[T any] interface {
	RequestReader[T]

	Spec() (openapi3.RequestBodyOrRef, error)
}

// ResponseWriter is implemented by types which encode themselves into a response.
type ResponseWriter[T any] interface {
	*T

	WriteResponse(context.Context, http.ResponseWriter) error
}

// TypedResponse is a [ResponseWriter] which documents its status code and body.
type TypedResponse[T any] interface {
	ResponseWriter[T]

	Spec() (int, openapi3.ResponseOrRef, error)
}

type operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]] struct {
	tracer     trace.Tracer
	errHandler ErrorHandler
	transforms []func(*http.Request) (*http.Request, error)
	handler    Handler[I, O]
}

// Operation registers h at method and path. Building the OpenAPI
// document for the operation panics on invalid request or response types
// and on a method and path which are already registered.
func Operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]](method string, path Path, h Handler[I, O], opts ...OperationOption) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		all := make([]OperationOption, 0, len(path)+len(opts))
		for _, el := range path {
			p, ok := el.(pathParam)
			if !ok {
				continue
			}
			all = append(all, param(p.name, openapi3.ParameterInPath, p.opts...))
		}
		all = append(all, opts...)

		oo := &OperationOptions{
			errHandler: ao.errHandler,
		}
		for _, opt := range all {
			opt(oo)
		}

		var req Req
		reqSpec, err := req.Spec()
		if err != nil {
			panic(err)
		}

		var resp Resp
		status, respSpec, err := resp.Spec()
		if err != nil {
			panic(err)
		}

		responses := map[string]openapi3.ResponseOrRef{
			strconv.Itoa(status): respSpec,
		}
		for _, problem := range oo.problems {
			responses[strconv.Itoa(problem)] = problemResponseSpec(problem)
		}

		op := openapi3.Operation{
			Tags:       oo.tags,
			Parameters: oo.parameters,
			Responses: openapi3.Responses{
				MapOfResponseOrRefValues: responses,
			},
		}
		if oo.summary != "" {
			op.Summary = &oo.summary
		}
		if reqSpec.RequestBody != nil || reqSpec.RequestBodyReference != nil {
			op.RequestBody = &reqSpec
		}

		endpoint := path.String()
		err = ao.def.AddOperation(method, endpoint, op)
		if err != nil {
			panic(err)
		}

		ao.mux.Method(method, endpoint, otelhttp.WithRouteTag(endpoint, &operation[I, O, Req, Resp]{
			tracer:     otel.Tracer("github.com/z5labs/items/rest"),
			errHandler: oo.errHandler,
			transforms: oo.transforms,
			handler:    h,
		}))
	})
}

func (o *operation[I, O, Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error
	defer func() {
		if err == nil {
			return
		}
		o.errHandler.OnError(ctx, w, err)
	}()
	defer recoverError(&err)

	for _, transform := range o.transforms {
		r, err = transform(r)
		if err != nil {
			return
		}
	}
	ctx = r.Context()

	req, err := o.readRequest(ctx, r)
	if err != nil {
		return
	}

	resp, err := o.handler.Handle(ctx, &req)
	if err != nil {
		return
	}

	err = o.writeResponse(ctx, w, resp)
}

// recoverError must be deferred directly. Panic values which are not errors
// are wrapped so the error handler can inspect them with errors.As.
func recoverError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		*err = fmt.Errorf("recovered from panic: %w", e)
		return
	}
	*err = fmt.Errorf("recovered from panic: %v", r)
}

func (o *operation[I, O, Req, Resp]) readRequest(ctx context.Context, r *http.Request) (I, error) {
	spanCtx, span := o.tracer.Start(ctx, "operation.readRequest")
	defer span.End()

	var req I
	err := Req(&req).ReadRequest(spanCtx, r)
	return req, err
}

func (o *operation[I, O, Req, Resp]) writeResponse(ctx context.Context, w http.ResponseWriter, resp Resp) error {
	spanCtx, span := o.tracer.Start(ctx, "operation.writeResponse")
	defer span.End()

	return resp.WriteResponse(spanCtx, w)
}

func problemResponseSpec(status int) openapi3.ResponseOrRef {
	var reflector jsonschema.Reflector
	schema, err := reflector.Reflect(ProblemDetail{}, jsonschema.InlineRefs)
	if err != nil {
		panic(err)
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(schema.ToSchemaOrBool())

	return openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(status),
			Content: map[string]openapi3.MediaType{
				"application/problem+json": {
					Schema: &schemaOrRef,
				},
			},
		},
	}
}
