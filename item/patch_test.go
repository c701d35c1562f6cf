// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		Name      string
		Body      string
		NameField Field[string]
		PriceSet  bool
		Is5GSet   bool
		Is5GNil   bool
		Is5GValue bool
	}{
		{
			Name: "empty object",
			Body: `{}`,
		},
		{
			Name:     "zero price is present",
			Body:     `{"price": 0}`,
			PriceSet: true,
		},
		{
			Name:    "false flag is present",
			Body:    `{"is5g": false}`,
			Is5GSet: true,
		},
		{
			Name:    "null flag is present",
			Body:    `{"is5g": null}`,
			Is5GSet: true,
			Is5GNil: true,
		},
		{
			Name:      "every field",
			Body:      `{"name": "phone", "price": 20, "is5g": true}`,
			NameField: Some("phone"),
			PriceSet:  true,
			Is5GSet:   true,
			Is5GValue: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			var p Patch
			err := json.Unmarshal([]byte(testCase.Body), &p)
			require.NoError(t, err)

			assert.Equal(t, testCase.NameField.Set, p.Name.Set)
			assert.Equal(t, testCase.NameField.Value, p.Name.Value)
			assert.Equal(t, testCase.PriceSet, p.Price.Set)
			assert.Equal(t, testCase.Is5GSet, p.Is5G.Set)
			if !testCase.Is5GSet {
				return
			}
			if testCase.Is5GNil {
				assert.Nil(t, p.Is5G.Value)
				assert.True(t, p.Is5G.Null())
				return
			}
			require.NotNil(t, p.Is5G.Value)
			assert.Equal(t, testCase.Is5GValue, *p.Is5G.Value)
		})
	}

	t.Run("will fail on a mistyped field", func(t *testing.T) {
		var p Patch
		err := json.Unmarshal([]byte(`{"price": "cheap"}`), &p)

		var typeErr *json.UnmarshalTypeError
		assert.ErrorAs(t, err, &typeErr)
	})
}

func TestPatch_Validate(t *testing.T) {
	t.Run("will reject an empty patch", func(t *testing.T) {
		err := Patch{}.Validate()
		assert.ErrorIs(t, err, ErrEmptyPatch)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("will reject null for required fields", func(t *testing.T) {
		var p Patch
		err := json.Unmarshal([]byte(`{"name": null, "price": null}`), &p)
		require.NoError(t, err)

		err = p.Validate()

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"must not be null"}, verr.Fields["name"])
		assert.Equal(t, []string{"must not be null"}, verr.Fields["price"])
	})

	t.Run("will accept a lone flag", func(t *testing.T) {
		err := Patch{Is5G: Some[*bool](nil)}.Validate()
		assert.NoError(t, err)
	})
}

func TestPatch_Draft(t *testing.T) {
	t.Run("will require name and price", func(t *testing.T) {
		_, err := Patch{Is5G: Some[*bool](nil)}.Draft()

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"field required"}, verr.Fields["name"])
		assert.Equal(t, []string{"field required"}, verr.Fields["price"])
	})

	t.Run("will validate present fields alongside missing ones", func(t *testing.T) {
		_, err := Patch{Name: Some("x")}.Draft()

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"must be at least 2 characters"}, verr.Fields["name"])
		assert.Equal(t, []string{"field required"}, verr.Fields["price"])
	})

	t.Run("will build a draft from a complete patch", func(t *testing.T) {
		d, err := Patch{Name: Some("phone"), Price: Some(0.0)}.Draft()
		require.NoError(t, err)
		assert.Equal(t, Draft{Name: "phone", Price: 0}, d)
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Fields: map[string][]string{
			"price": {"must be greater than or equal to 0"},
			"name":  {"must be at least 2 characters"},
		},
	}

	assert.Equal(
		t,
		"item: validation failed: name must be at least 2 characters; price must be greater than or equal to 0",
		err.Error(),
	)
}

func TestField_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Patch{Name: Some("phone")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"phone","price":null,"is5g":null}`, string(b))
}
