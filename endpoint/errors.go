// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/z5labs/items/item"
	"github.com/z5labs/items/rest"
)

// Problem types, relative to the default type of the error handler.
const (
	ProblemTypeValidation = "validation-failed"
	ProblemTypeNotFound   = "item-not-found"
)

// ValidationError is the problem returned for input violating item constraints.
type ValidationError struct {
	rest.ProblemDetail
	Errors map[string][]string `json:"errors"`

	cause error
}

// Unwrap returns the store error.
func (e ValidationError) Unwrap() error {
	return e.cause
}

// NotFoundError is the problem returned for an unknown item id.
type NotFoundError struct {
	rest.ProblemDetail
	ItemID int64 `json:"item_id"`

	cause error
}

// Unwrap returns the store error.
func (e NotFoundError) Unwrap() error {
	return e.cause
}

func problemOf(err error) error {
	var verr *item.ValidationError
	var nerr *item.NotFoundError
	switch {
	case errors.As(err, &verr):
		detail := "One or more fields are invalid."
		if errors.Is(err, item.ErrEmptyPatch) {
			detail = "At least one field must be provided."
		}
		return ValidationError{
			ProblemDetail: rest.ProblemDetail{
				Type:   ProblemTypeValidation,
				Title:  "Validation Failed",
				Status: http.StatusUnprocessableEntity,
				Detail: detail,
			},
			Errors: verr.Fields,
			cause:  err,
		}
	case errors.As(err, &nerr):
		return NotFoundError{
			ProblemDetail: rest.ProblemDetail{
				Type:   ProblemTypeNotFound,
				Title:  "Item Not Found",
				Status: http.StatusNotFound,
				Detail: fmt.Sprintf("Item with id %d not found.", nerr.ID),
			},
			ItemID: nerr.ID,
			cause:  err,
		}
	default:
		return err
	}
}
