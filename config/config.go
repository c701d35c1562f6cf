// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides composable, lazily evaluated configuration values.
//
// Every configurable value in this module is expressed as a [Reader]. Readers
// can be literal values ([ReaderOf]), environment variables ([Env]), decoded
// config files ([UnmarshalYAML], [UnmarshalTOML], [UnmarshalJSON]) or any
// composition of those ([Or], [Default], [Map]). A [Value] distinguishes
// "not configured" from the zero value of T.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrValueNotSet is returned by [Read] when a [Reader] produced no value.
var ErrValueNotSet = errors.New("config: value not set")

// Value is the result of reading a [Reader]. The zero Value is unset.
type Value[T any] struct {
	v   T
	set bool
}

// ValueOf returns a set [Value] holding v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Value returns the underlying value and whether it was set.
func (v Value[T]) Value() (T, bool) {
	return v.v, v.set
}

// Reader reads a configuration value.
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is an adapter to allow the use of ordinary functions as [Reader]s.
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the [Reader] interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// ReaderOf returns a [Reader] which always yields v.
func ReaderOf[T any](v T) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return ValueOf(v), nil
	})
}

// EmptyReader returns a [Reader] which never yields a value.
func EmptyReader[T any]() Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return Value[T]{}, nil
	})
}

// Read reads r and returns its value or [ErrValueNotSet].
func Read[T any](ctx context.Context, r Reader[T]) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrValueNotSet
	}

	val, err := r.Read(ctx)
	if err != nil {
		return zero, err
	}

	v, ok := val.Value()
	if !ok {
		return zero, ErrValueNotSet
	}
	return v, nil
}

// Must is like [Read] but panics if the value could not be read.
func Must[T any](ctx context.Context, r Reader[T]) T {
	v, err := Read(ctx, r)
	if err != nil {
		panic(fmt.Errorf("config: failed to read required value: %w", err))
	}
	return v
}

// MustOr returns the value of r, or def when r is nil or unset.
// It panics if r fails to read.
func MustOr[T any](ctx context.Context, def T, r Reader[T]) T {
	v, err := Read(ctx, r)
	if errors.Is(err, ErrValueNotSet) {
		return def
	}
	if err != nil {
		panic(fmt.Errorf("config: failed to read value: %w", err))
	}
	return v
}

// Or returns the first set value from rs, evaluated in order.
func Or[T any](rs ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range rs {
			if r == nil {
				continue
			}

			val, err := r.Read(ctx)
			if err != nil {
				return Value[T]{}, err
			}
			if _, ok := val.Value(); ok {
				return val, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Default yields def whenever r is unset.
func Default[T any](def T, r Reader[T]) Reader[T] {
	return Or(r, ReaderOf(def))
}

// Map transforms the value of r with f. Unset values stay unset.
func Map[A, B any](r Reader[A], f func(context.Context, A) (B, error)) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		if r == nil {
			return Value[B]{}, nil
		}

		val, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}

		a, ok := val.Value()
		if !ok {
			return Value[B]{}, nil
		}

		b, err := f(ctx, a)
		if err != nil {
			return Value[B]{}, err
		}
		return ValueOf(b), nil
	})
}

// Env reads the environment variable name. Empty variables are treated as unset.
func Env(name string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}
