// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package item

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z5labs/sdk-go/ptr"
	"golang.org/x/sync/errgroup"
)

func phone() Draft {
	return Draft{Name: "phone", Price: 20}
}

func TestStore_Create(t *testing.T) {
	t.Run("will assign ids starting at 1", func(t *testing.T) {
		s := NewStore()

		it, err := s.Create(phone())
		require.NoError(t, err)
		assert.Equal(t, Item{ID: 1, Name: "phone", Price: 20}, it)
		assert.Nil(t, it.Is5G)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("will never reuse an id", func(t *testing.T) {
		s := NewStore()

		a, err := s.Create(phone())
		require.NoError(t, err)
		b, err := s.Create(phone())
		require.NoError(t, err)

		require.NoError(t, s.Delete(b.ID))

		c, err := s.Create(phone())
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, int64(2), b.ID)
		assert.Equal(t, int64(3), c.ID)
	})

	t.Run("will return a validation error", func(t *testing.T) {
		testCases := []struct {
			Name   string
			Draft  Draft
			Fields []string
		}{
			{
				Name:   "if the name is too short",
				Draft:  Draft{Name: "p", Price: 1},
				Fields: []string{"name"},
			},
			{
				Name:   "if the name is short in runes but long in bytes",
				Draft:  Draft{Name: "é", Price: 1},
				Fields: []string{"name"},
			},
			{
				Name:   "if the price is negative",
				Draft:  Draft{Name: "phone", Price: -0.01},
				Fields: []string{"price"},
			},
			{
				Name:   "if the price is not finite",
				Draft:  Draft{Name: "phone", Price: math.Inf(1)},
				Fields: []string{"price"},
			},
			{
				Name:   "for every invalid field",
				Draft:  Draft{Name: "", Price: math.NaN()},
				Fields: []string{"name", "price"},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				s := NewStore()

				_, err := s.Create(testCase.Draft)
				require.ErrorIs(t, err, ErrValidation)

				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				for _, field := range testCase.Fields {
					assert.Contains(t, verr.Fields, field)
				}
				assert.Len(t, verr.Fields, len(testCase.Fields))
				assert.Zero(t, s.Len())
			})
		}
	})

	t.Run("will not advance the id counter on a failed insert", func(t *testing.T) {
		s := NewStore()

		_, err := s.Create(Draft{Name: "x"})
		require.Error(t, err)

		it, err := s.Create(phone())
		require.NoError(t, err)
		assert.Equal(t, int64(1), it.ID)
	})

	t.Run("will issue distinct and gapless ids to concurrent callers", func(t *testing.T) {
		const n = 100

		s := NewStore()
		ids := make([]int64, n)

		var g errgroup.Group
		for i := range n {
			g.Go(func() error {
				it, err := s.Create(phone())
				if err != nil {
					return err
				}
				ids[i] = it.ID
				return nil
			})
		}
		require.NoError(t, g.Wait())

		seen := make(map[int64]bool, n)
		for _, id := range ids {
			assert.False(t, seen[id], "id %d issued twice", id)
			seen[id] = true
		}
		for id := int64(1); id <= n; id++ {
			assert.True(t, seen[id], "id %d never issued", id)
		}
		assert.Equal(t, n, s.Len())
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("will return the created item", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(Draft{Name: "phone", Price: 20, Is5G: ptr.Ref(true)})
		require.NoError(t, err)

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("will return a NotFoundError if the id is unknown", func(t *testing.T) {
		s := NewStore()

		_, err := s.Get(42)
		require.ErrorIs(t, err, ErrNotFound)

		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, int64(42), nerr.ID)
	})

	t.Run("will not let callers alias stored state", func(t *testing.T) {
		s := NewStore()

		draft := Draft{Name: "phone", Price: 20, Is5G: ptr.Ref(true)}
		created, err := s.Create(draft)
		require.NoError(t, err)

		*draft.Is5G = false
		*created.Is5G = false

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Is5G)
		assert.True(t, *got.Is5G)
	})
}

func TestStore_List(t *testing.T) {
	t.Run("will return an empty slice for an empty store", func(t *testing.T) {
		s := NewStore()

		items := s.List()
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("will return items ordered by id", func(t *testing.T) {
		s := NewStore()
		for _, name := range []string{"phone", "tablet", "watch", "laptop"} {
			_, err := s.Create(Draft{Name: name, Price: 1})
			require.NoError(t, err)
		}
		require.NoError(t, s.Delete(2))

		items := s.List()
		require.Len(t, items, 3)
		assert.Equal(t, []int64{1, 3, 4}, []int64{items[0].ID, items[1].ID, items[2].ID})
		assert.Equal(t, "laptop", items[2].Name)
	})
}

func TestStore_Replace(t *testing.T) {
	t.Run("will overwrite every field", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(Draft{Name: "phone", Price: 20, Is5G: ptr.Ref(true)})
		require.NoError(t, err)

		replaced, err := s.Replace(created.ID, Draft{Name: "tablet", Price: 30})
		require.NoError(t, err)
		assert.Equal(t, Item{ID: created.ID, Name: "tablet", Price: 30}, replaced)

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, replaced, got)
	})

	t.Run("will leave the item unchanged if the draft is invalid", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		_, err = s.Replace(created.ID, Draft{Name: "tablet", Price: -1})
		require.ErrorIs(t, err, ErrValidation)

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("will return a NotFoundError if the id is unknown", func(t *testing.T) {
		s := NewStore()

		_, err := s.Replace(7, phone())
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, s.Len())
	})
}

func TestStore_Update(t *testing.T) {
	t.Run("will only change the set fields", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		updated, err := s.Update(created.ID, Patch{Price: Some(25.0)})
		require.NoError(t, err)
		assert.Equal(t, Item{ID: 1, Name: "phone", Price: 25}, updated)
	})

	t.Run("will accept a zero price", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		updated, err := s.Update(created.ID, Patch{Price: Some(0.0)})
		require.NoError(t, err)
		assert.Zero(t, updated.Price)
	})

	t.Run("will distinguish an unset flag from false", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(Draft{Name: "phone", Price: 20, Is5G: ptr.Ref(true)})
		require.NoError(t, err)

		updated, err := s.Update(created.ID, Patch{Name: Some("phone 2")})
		require.NoError(t, err)
		require.NotNil(t, updated.Is5G)
		assert.True(t, *updated.Is5G)

		updated, err = s.Update(created.ID, Patch{Is5G: Some(ptr.Ref(false))})
		require.NoError(t, err)
		require.NotNil(t, updated.Is5G)
		assert.False(t, *updated.Is5G)

		updated, err = s.Update(created.ID, Patch{Is5G: Some[*bool](nil)})
		require.NoError(t, err)
		assert.Nil(t, updated.Is5G)
	})

	t.Run("will reject an empty patch", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		_, err = s.Update(created.ID, Patch{})
		require.ErrorIs(t, err, ErrValidation)
		require.ErrorIs(t, err, ErrEmptyPatch)

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("will apply nothing if any set field is invalid", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		_, err = s.Update(created.ID, Patch{Name: Some("tablet"), Price: Some(-5.0)})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"must be greater than or equal to 0"}, verr.Fields["price"])
		assert.NotContains(t, verr.Fields, "name")

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("will return a NotFoundError if the id is unknown", func(t *testing.T) {
		s := NewStore()

		_, err := s.Update(3, Patch{Name: Some("phone")})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("will not lose concurrent updates to different fields", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		var g errgroup.Group
		g.Go(func() error {
			_, err := s.Update(created.ID, Patch{Name: Some("tablet")})
			return err
		})
		g.Go(func() error {
			_, err := s.Update(created.ID, Patch{Price: Some(99.0)})
			return err
		})
		require.NoError(t, g.Wait())

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "tablet", got.Name)
		assert.Equal(t, 99.0, got.Price)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("will remove the item", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)

		require.NoError(t, s.Delete(created.ID))

		_, err = s.Get(created.ID)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, s.Len())
	})

	t.Run("will report NotFound on every repeated delete", func(t *testing.T) {
		s := NewStore()

		created, err := s.Create(phone())
		require.NoError(t, err)
		require.NoError(t, s.Delete(created.ID))

		for range 2 {
			err := s.Delete(created.ID)

			var nerr *NotFoundError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, created.ID, nerr.ID)
		}
	})
}
