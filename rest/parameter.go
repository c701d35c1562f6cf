// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// PathParamValue returns the value of a path parameter registered with
// [PathParam] or [Path.Param], or "" if it is absent.
func PathParamValue(ctx context.Context, name string) string {
	vs := paramValues(ctx, openapi3.ParameterInPath, name)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

type paramCtxKey struct {
	in   openapi3.ParameterIn
	name string
}

func paramValues(ctx context.Context, in openapi3.ParameterIn, name string) []string {
	vs, _ := ctx.Value(paramCtxKey{in: in, name: name}).([]string)
	return vs
}

func extractParam(r *http.Request, in openapi3.ParameterIn, name string) []string {
	switch in {
	case openapi3.ParameterInPath:
		v := chi.URLParam(r, name)
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		panic("unsupported parameter location: " + in)
	}
}

func param(name string, in openapi3.ParameterIn, opts ...ParameterOption) OperationOption {
	return func(oo *OperationOptions) {
		oo.transforms = append(oo.transforms, func(r *http.Request) (*http.Request, error) {
			ctx := context.WithValue(r.Context(), paramCtxKey{in: in, name: name}, extractParam(r, in, name))
			return r.WithContext(ctx), nil
		})

		po := &ParameterOptions{
			operationOptions: oo,
			def: &openapi3.Parameter{
				Name: name,
				In:   in,
			},
		}
		if in == openapi3.ParameterInPath {
			po.def.Required = ptr.Ref(true)
		}
		for _, opt := range opts {
			opt(po)
		}

		oo.parameters = append(oo.parameters, openapi3.ParameterOrRef{
			Parameter: po.def,
		})
	}
}

// ParameterOptions is the state a [ParameterOption] can modify.
type ParameterOptions struct {
	operationOptions *OperationOptions
	def              *openapi3.Parameter
}

// ParameterOption configures a parameter.
type ParameterOption func(*ParameterOptions)

// validate appends a check of the parameter values which runs before the
// request body is read.
func (po *ParameterOptions) validate(f func([]string) error) {
	name, in := po.def.Name, po.def.In
	po.operationOptions.transforms = append(po.operationOptions.transforms, func(r *http.Request) (*http.Request, error) {
		err := f(paramValues(r.Context(), in, name))
		if err != nil {
			return nil, BadRequestError{Cause: err}
		}
		return r, nil
	})
}

// MissingRequiredParameterError is the cause of a [BadRequestError] for a
// [Required] parameter which was not sent.
type MissingRequiredParameterError struct {
	Parameter string
	In        string
}

func (e MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("missing required request parameter in %s: %s", e.In, e.Parameter)
}

// Required rejects requests without the parameter.
func Required() ParameterOption {
	return func(po *ParameterOptions) {
		po.def.Required = ptr.Ref(true)

		name, in := po.def.Name, string(po.def.In)
		po.validate(func(vs []string) error {
			if len(vs) == 0 {
				return MissingRequiredParameterError{Parameter: name, In: in}
			}
			return nil
		})
	}
}

// InvalidParameterValueError is the cause of a [BadRequestError] for a
// parameter value which is not acceptable.
type InvalidParameterValueError struct {
	Parameter string
	In        string
	Value     string
}

func (e InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid value for request parameter in %s: %s: %q", e.In, e.Parameter, e.Value)
}

// Regex rejects requests where a value of the parameter does not match re.
// Absent parameters are accepted unless they are also [Required].
func Regex(re *regexp.Regexp) ParameterOption {
	return func(po *ParameterOptions) {
		if po.def.Schema == nil {
			po.def.Schema = &openapi3.SchemaOrRef{
				Schema: &openapi3.Schema{},
			}
		}
		po.def.Schema.Schema.Pattern = ptr.Ref(re.String())

		name, in := po.def.Name, string(po.def.In)
		po.validate(func(vs []string) error {
			i := slices.IndexFunc(vs, func(v string) bool {
				return !re.MatchString(v)
			})
			if i < 0 {
				return nil
			}
			return InvalidParameterValueError{Parameter: name, In: in, Value: vs[i]}
		})
	}
}
