package util

// --------------------------------------------------------------------------
// Ordered Set
// --------------------------------------------------------------------------

// OrderedSet is a set that remembers the insertion order of its elements.
// Adding an element that is already present keeps its original position.
// Not safe for concurrent use.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]int
}

// NewOrderedSet creates a set holding items in the given order (duplicates are skipped)
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{
		items: make([]T, 0, len(items)),
		index: make(map[T]int, len(items)),
	}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add appends item if it is not yet present and reports whether it was added
func (s *OrderedSet[T]) Add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[T]int)
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Contains reports whether item is in the set
func (s *OrderedSet[T]) Contains(item T) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[item]
	return ok
}

// Remove deletes item from the set, preserving the order of the remaining elements
func (s *OrderedSet[T]) Remove(item T) bool {
	if s == nil {
		return false
	}
	pos, ok := s.index[item]
	if !ok {
		return false
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, item)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i]] = i
	}
	return true
}

// Len returns the number of elements
func (s *OrderedSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns a copy of the elements in insertion order
func (s *OrderedSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Range calls fn for every element in insertion order until fn returns false
func (s *OrderedSet[T]) Range(fn func(item T) bool) {
	if s == nil {
		return
	}
	for _, item := range s.items {
		if !fn(item) {
			return
		}
	}
}
