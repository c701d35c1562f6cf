// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package item implements the in-memory item store behind the Items API.
//
// The store owns every [Item] it holds. Values handed out by a [Store] are
// copies, so mutating a returned [Item] never changes stored state.
package item

import (
	"math"
	"unicode/utf8"
)

// MinNameLength is the minimum number of runes in an item name.
const MinNameLength = 2

// Item is a record managed by a [Store].
type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name" minLength:"2"`
	Price float64 `json:"price" minimum:"0"`
	Is5G  *bool   `json:"is5g"`
}

func (it Item) clone() Item {
	it.Is5G = cloneBool(it.Is5G)
	return it
}

// Draft holds the fields of an item which has not been assigned an id yet.
type Draft struct {
	Name  string
	Price float64
	Is5G  *bool
}

// Validate reports every field of d which violates its constraints.
// The returned error is always a *[ValidationError] when non-nil.
func (d Draft) Validate() error {
	var v validator
	v.name(d.Name)
	v.price(d.Price)
	return v.err()
}

type validator struct {
	fields map[string][]string
}

func (v *validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string][]string)
	}
	v.fields[field] = append(v.fields[field], msg)
}

func (v *validator) name(s string) {
	if utf8.RuneCountInString(s) < MinNameLength {
		v.add("name", "must be at least 2 characters")
	}
}

func (v *validator) price(p float64) {
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		v.add("price", "must be a finite number")
	case p < 0:
		v.add("price", "must be greater than or equal to 0")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
