package abi

import "sync"

// Strings owns the foreign copies of strings handed across the boundary.
// A slot string lives until the next Slot call with the same name; a list
// item lives until its list is forgotten. P is the foreign pointer type and
// alloc/free manage its memory.
type Strings[P comparable] struct {
	alloc func(string) P
	free  func(P)

	mu    sync.Mutex
	slots map[string]P
	items map[uint64]map[uint64]P // list handle -> index -> copy
}

// NewStrings creates an empty string store.
func NewStrings[P comparable](alloc func(string) P, free func(P)) *Strings[P] {
	return &Strings[P]{
		alloc: alloc,
		free:  free,
		slots: make(map[string]P),
		items: make(map[uint64]map[uint64]P),
	}
}

// Slot replaces the string held under name and returns the new copy.
func (s *Strings[P]) Slot(name, v string) P {
	p := s.alloc(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.slots[name]; ok {
		s.free(old)
	}
	s.slots[name] = p
	return p
}

// Item returns the copy of item index of list, allocating it on first use.
// List items never change once pushed, so the cached copy stays correct.
func (s *Strings[P]) Item(list, index uint64, v string) P {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIndex, ok := s.items[list]
	if !ok {
		byIndex = make(map[uint64]P)
		s.items[list] = byIndex
	}
	if p, ok := byIndex[index]; ok {
		return p
	}
	p := s.alloc(v)
	byIndex[index] = p
	return p
}

// Forget releases the item copies of a freed handle. Handles that never
// produced items are ignored.
func (s *Strings[P]) Forget(list uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items[list] {
		s.free(p)
	}
	delete(s.items, list)
}

// ReleaseAll frees every copy.
func (s *Strings[P]) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.slots {
		s.free(p)
	}
	for _, byIndex := range s.items {
		for _, p := range byIndex {
			s.free(p)
		}
	}
	clear(s.slots)
	clear(s.items)
}
