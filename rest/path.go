// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"path"
)

// PathElement is either a static [PathSegment] or a parameter created by [PathParam].
type PathElement interface {
	pathElement() string
}

// PathSegment is a static part of a [Path].
type PathSegment string

func (s PathSegment) pathElement() string {
	return string(s)
}

type pathParam struct {
	name string
	opts []ParameterOption
}

func (p pathParam) pathElement() string {
	return "{" + p.name + "}"
}

// PathParam is a path parameter whose value is read with [PathParamValue].
// Path parameters are always documented as required.
//
//	rest.PathParam("item_id", rest.Regex(regexp.MustCompile(`^\d+$`)))
func PathParam(name string, opts ...ParameterOption) PathElement {
	return pathParam{
		name: name,
		opts: opts,
	}
}

// Path is the route of an operation.
type Path []PathElement

// BasePath starts a [Path].
//
//	rest.BasePath("/api/v1").Segment("items").Param("item_id")
//	// /api/v1/items/{item_id}
func BasePath(s string) Path {
	return Path{PathSegment(s)}
}

// Segment appends a static segment.
func (p Path) Segment(s string) Path {
	return append(p[:len(p):len(p)], PathSegment(s))
}

// Param appends a path parameter.
func (p Path) Param(name string, opts ...ParameterOption) Path {
	return append(p[:len(p):len(p)], PathParam(name, opts...))
}

// String joins the elements with "/", formatting parameters as {name}.
func (p Path) String() string {
	ss := make([]string, len(p))
	for i, el := range p {
		ss[i] = el.pathElement()
	}
	return path.Join(ss...)
}
