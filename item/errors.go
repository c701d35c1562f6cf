// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package item

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNotFound is matched by every error reporting a missing item.
	ErrNotFound = errors.New("item: not found")

	// ErrValidation is matched by every error reporting invalid input.
	ErrValidation = errors.New("item: validation failed")

	// ErrEmptyPatch is wrapped by the validation error of a patch without any field.
	ErrEmptyPatch = errors.New("item: at least one field must be provided")
)

// NotFoundError is returned when no item exists for ID.
type NotFoundError struct {
	ID int64
}

// Error implements the [error] interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item: no item with id %d", e.ID)
}

// Is reports whether target is [ErrNotFound].
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError lists the constraint violations of each offending field.
type ValidationError struct {
	Fields map[string][]string
	Cause  error
}

// Error implements the [error] interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	sb.WriteString("item: validation failed")
	for i, name := range names {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(name)
		sb.WriteString(" ")
		sb.WriteString(strings.Join(e.Fields[name], ", "))
	}
	return sb.String()
}

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}
