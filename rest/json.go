// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"github.com/z5labs/sdk-go/try"
)

func jsonSchemaOf(v any) (*openapi3.SchemaOrRef, error) {
	var reflector jsonschema.Reflector

	schema, err := reflector.Reflect(v, jsonschema.InlineRefs)
	if err != nil {
		return nil, err
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(schema.ToSchemaOrBool())
	return &schemaOrRef, nil
}

func jsonResponseSpec[T any](status int) (int, openapi3.ResponseOrRef, error) {
	var t T
	schema, err := jsonSchemaOf(t)
	if err != nil {
		return 0, openapi3.ResponseOrRef{}, err
	}

	return status, openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(status),
			Content: map[string]openapi3.MediaType{
				"application/json": {
					Schema: schema,
				},
			},
		},
	}, nil
}

func writeJson(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

// JsonResponse is a 200 OK response with a JSON body.
type JsonResponse[T any] struct {
	inner *T
}

// Spec implements the [TypedResponse] interface.
func (*JsonResponse[T]) Spec() (int, openapi3.ResponseOrRef, error) {
	return jsonResponseSpec[T](http.StatusOK)
}

// WriteResponse implements the [ResponseWriter] interface.
func (jr *JsonResponse[T]) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	return writeJson(w, http.StatusOK, jr.inner)
}

// Locator is implemented by created resources which can be addressed by a URL.
type Locator interface {
	Location() string
}

// CreatedJsonResponse is a 201 Created response with a JSON body. When T
// implements [Locator] the Location header is set as well.
type CreatedJsonResponse[T any] struct {
	inner *T
}

// Spec implements the [TypedResponse] interface.
func (*CreatedJsonResponse[T]) Spec() (int, openapi3.ResponseOrRef, error) {
	return jsonResponseSpec[T](http.StatusCreated)
}

// WriteResponse implements the [ResponseWriter] interface.
func (cr *CreatedJsonResponse[T]) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	if l, ok := any(cr.inner).(Locator); ok {
		w.Header().Set("Location", l.Location())
	}
	return writeJson(w, http.StatusCreated, cr.inner)
}

// ReturnJsonHandler encodes the response of another [Handler] as JSON.
type ReturnJsonHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ReturnJson initializes a [ReturnJsonHandler].
func ReturnJson[Req, Resp any](h Handler[Req, Resp]) *ReturnJsonHandler[Req, Resp] {
	return &ReturnJsonHandler[Req, Resp]{
		inner: h,
	}
}

// Handle implements the [Handler] interface.
func (h *ReturnJsonHandler[Req, Resp]) Handle(ctx context.Context, req *Req) (*JsonResponse[Resp], error) {
	resp, err := h.inner.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	return &JsonResponse[Resp]{inner: resp}, nil
}

// ReturnCreatedJsonHandler encodes the response of another [Handler] as
// JSON with a 201 Created status.
type ReturnCreatedJsonHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ReturnCreatedJson initializes a [ReturnCreatedJsonHandler].
func ReturnCreatedJson[Req, Resp any](h Handler[Req, Resp]) *ReturnCreatedJsonHandler[Req, Resp] {
	return &ReturnCreatedJsonHandler[Req, Resp]{
		inner: h,
	}
}

// Handle implements the [Handler] interface.
func (h *ReturnCreatedJsonHandler[Req, Resp]) Handle(ctx context.Context, req *Req) (*CreatedJsonResponse[Resp], error) {
	resp, err := h.inner.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	return &CreatedJsonResponse[Resp]{inner: resp}, nil
}

// JsonRequest is a request with a required application/json body.
type JsonRequest[T any] struct {
	inner T
}

// Spec implements the [TypedRequest] interface.
func (*JsonRequest[T]) Spec() (openapi3.RequestBodyOrRef, error) {
	var t T
	schema, err := jsonSchemaOf(t)
	if err != nil {
		return openapi3.RequestBodyOrRef{}, err
	}

	return openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				"application/json": {
					Schema: schema,
				},
			},
		},
	}, nil
}

// ReadRequest implements the [RequestReader] interface.
// Media type parameters, like charset, are ignored.
func (jr *JsonRequest[T]) ReadRequest(ctx context.Context, r *http.Request) (err error) {
	defer try.Close(&err, r.Body)

	contentType := r.Header.Get("Content-Type")
	mediaType, _, parseErr := mime.ParseMediaType(contentType)
	if parseErr != nil || mediaType != "application/json" {
		return BadRequestError{
			Cause: InvalidContentTypeError{
				ContentType: contentType,
			},
		}
	}

	err = json.NewDecoder(r.Body).Decode(&jr.inner)
	if err != nil {
		return BadRequestError{
			Cause: InvalidJsonError{
				Cause: err,
			},
		}
	}
	return nil
}

// ConsumeJsonHandler decodes the request of another [Handler] from JSON.
type ConsumeJsonHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ConsumeJson initializes a [ConsumeJsonHandler].
func ConsumeJson[Req, Resp any](h Handler[Req, Resp]) *ConsumeJsonHandler[Req, Resp] {
	return &ConsumeJsonHandler[Req, Resp]{
		inner: h,
	}
}

// Handle implements the [Handler] interface.
func (h *ConsumeJsonHandler[Req, Resp]) Handle(ctx context.Context, req *JsonRequest[Req]) (*Resp, error) {
	return h.inner.Handle(ctx, &req.inner)
}

// ProduceJson returns JSON without reading a request body. Use it for GET operations.
func ProduceJson[T any](p Producer[T]) *ReturnJsonHandler[EmptyRequest, T] {
	return ReturnJson(ConsumeNothing(p))
}

// HandleJson reads and returns JSON.
func HandleJson[Req, Resp any](h Handler[Req, Resp]) *ConsumeJsonHandler[Req, JsonResponse[Resp]] {
	return ConsumeJson(ReturnJson(h))
}

// HandleCreatedJson reads JSON and returns JSON with a 201 Created status.
func HandleCreatedJson[Req, Resp any](h Handler[Req, Resp]) *ConsumeJsonHandler[Req, CreatedJsonResponse[Resp]] {
	return ConsumeJson(ReturnCreatedJson(h))
}
