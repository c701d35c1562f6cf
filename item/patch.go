// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package item

import (
	"bytes"
	"encoding/json"

	"github.com/swaggest/jsonschema-go"
)

// Field is a value with explicit presence.
//
// When decoded from JSON, a Field is Set whenever its key appears in the
// object, even if the value is null.
type Field[T any] struct {
	Set   bool
	Value T

	null bool
}

// Some returns a set [Field] holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null reports whether f was set to an explicit JSON null.
func (f Field[T]) Null() bool {
	return f.Set && f.null
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	var v T
	err := json.Unmarshal(b, &v)
	if err != nil {
		return err
	}
	f.Set = true
	f.Value = v
	f.null = bytes.Equal(bytes.TrimSpace(b), []byte("null"))
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// JSONSchema documents a Field as the schema of its value.
func (Field[T]) JSONSchema() (jsonschema.Schema, error) {
	var r jsonschema.Reflector
	var v T
	return r.Reflect(v)
}

// Patch describes changes to an existing item. Unset fields are left untouched.
//
// Setting Is5G to a nil value clears the flag.
type Patch struct {
	Name  Field[string]  `json:"name"`
	Price Field[float64] `json:"price"`
	Is5G  Field[*bool]   `json:"is5g"`
}

// Empty reports whether p carries no field at all.
func (p Patch) Empty() bool {
	return !p.Name.Set && !p.Price.Set && !p.Is5G.Set
}

// Validate reports every set field of p which violates its constraints.
// An empty patch fails with a *[ValidationError] wrapping [ErrEmptyPatch].
func (p Patch) Validate() error {
	if p.Empty() {
		return &ValidationError{
			Fields: map[string][]string{
				"body": {"at least one field must be provided"},
			},
			Cause: ErrEmptyPatch,
		}
	}

	var v validator
	switch {
	case p.Name.Null():
		v.add("name", "must not be null")
	case p.Name.Set:
		v.name(p.Name.Value)
	}
	switch {
	case p.Price.Null():
		v.add("price", "must not be null")
	case p.Price.Set:
		v.price(p.Price.Value)
	}
	return v.err()
}

// Draft converts p into a [Draft], requiring every mandatory field to be set.
func (p Patch) Draft() (Draft, error) {
	var v validator
	switch {
	case !p.Name.Set || p.Name.Null():
		v.add("name", "field required")
	default:
		v.name(p.Name.Value)
	}
	switch {
	case !p.Price.Set || p.Price.Null():
		v.add("price", "field required")
	default:
		v.price(p.Price.Value)
	}
	if err := v.err(); err != nil {
		return Draft{}, err
	}

	d := Draft{
		Name:  p.Name.Value,
		Price: p.Price.Value,
		Is5G:  p.Is5G.Value,
	}
	return d, nil
}

func (p Patch) apply(it Item) Item {
	if p.Name.Set {
		it.Name = p.Name.Value
	}
	if p.Price.Set {
		it.Price = p.Price.Value
	}
	if p.Is5G.Set {
		it.Is5G = cloneBool(p.Is5G.Value)
	}
	return it
}
