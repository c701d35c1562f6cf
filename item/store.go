// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package item

import (
	"cmp"
	"slices"
	"sync"
)

// Store is an in-memory collection of items safe for concurrent use.
//
// Ids are issued from 1 upwards and are never reused, even after a delete.
type Store struct {
	mu     sync.RWMutex
	items  map[int64]Item
	nextID int64
}

// NewStore returns an empty [Store].
func NewStore() *Store {
	return &Store{
		items:  make(map[int64]Item),
		nextID: 1,
	}
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// List returns a snapshot of every stored item ordered by ascending id.
func (s *Store) List() []Item {
	s.mu.RLock()
	items := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it.clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(items, func(a, b Item) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return items
}

// Get returns the item identified by id.
func (s *Store) Get(id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, &NotFoundError{ID: id}
	}
	return it.clone(), nil
}

// Create validates d and stores it under the next free id.
func (s *Store) Create(d Draft) (Item, error) {
	err := d.Validate()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it := Item{
		ID:    s.nextID,
		Name:  d.Name,
		Price: d.Price,
		Is5G:  cloneBool(d.Is5G),
	}
	s.items[it.ID] = it
	s.nextID++

	return it.clone(), nil
}

// Replace overwrites every field of the item identified by id with d.
func (s *Store) Replace(id int64, d Draft) (Item, error) {
	err := d.Validate()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return Item{}, &NotFoundError{ID: id}
	}

	it := Item{
		ID:    id,
		Name:  d.Name,
		Price: d.Price,
		Is5G:  cloneBool(d.Is5G),
	}
	s.items[id] = it
	return it.clone(), nil
}

// Update applies the set fields of p to the item identified by id.
func (s *Store) Update(id int64, p Patch) (Item, error) {
	err := p.Validate()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, &NotFoundError{ID: id}
	}

	it = p.apply(it)
	s.items[id] = it
	return it.clone(), nil
}

// Delete removes the item identified by id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(s.items, id)
	return nil
}
