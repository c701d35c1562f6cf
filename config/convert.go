// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ParseError reports a string value which could not be converted.
type ParseError struct {
	Value string
	Type  string
	Cause error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("config: failed to parse %q as %s: %v", e.Value, e.Type, e.Cause)
}

func (e ParseError) Unwrap() error {
	return e.Cause
}

func parseWith[T any](typ string, parse func(string) (T, error)) func(context.Context, string) (T, error) {
	return func(_ context.Context, s string) (T, error) {
		v, err := parse(s)
		if err != nil {
			var zero T
			return zero, ParseError{Value: s, Type: typ, Cause: err}
		}
		return v, nil
	}
}

// IntFromString parses the string value of r as an int.
func IntFromString(r Reader[string]) Reader[int] {
	return Map(r, parseWith("int", strconv.Atoi))
}

// Int64FromString parses the string value of r as a base 10 int64.
func Int64FromString(r Reader[string]) Reader[int64] {
	return Map(r, parseWith("int64", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	}))
}

// Float64FromString parses the string value of r as a float64.
func Float64FromString(r Reader[string]) Reader[float64] {
	return Map(r, parseWith("float64", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}))
}

// BoolFromString parses the string value of r with [strconv.ParseBool].
func BoolFromString(r Reader[string]) Reader[bool] {
	return Map(r, parseWith("bool", strconv.ParseBool))
}

// DurationFromString parses the string value of r with [time.ParseDuration].
func DurationFromString(r Reader[string]) Reader[time.Duration] {
	return Map(r, parseWith("duration", time.ParseDuration))
}
