package util

import (
	"github.com/vmihailenco/msgpack/v5"
	"reflect"
)

// --------------------------------------------------------------------------
// Generic Set
// --------------------------------------------------------------------------

// GenericSet is an insertion ordered set of heterogeneous values.
// Comparable elements are indexed by value, elements that cannot be used as
// map keys (slices, maps) are compared with reflect.DeepEqual.
// Numbers are stored in the form they take after a round trip: signed integers
// as int64, unsigned integers as uint64 and floats as float64, so int(1) and
// int64(1) are the same element.
// On the wire the set is a msgpack array in insertion order.
type GenericSet struct {
	items []any
	index map[any]int
}

var (
	_ msgpack.CustomEncoder = (*GenericSet)(nil)
	_ msgpack.CustomDecoder = (*GenericSet)(nil)
)

// NewGenericSet creates a set holding items in the given order (duplicates are skipped)
func NewGenericSet(items ...any) *GenericSet {
	s := &GenericSet{
		items: make([]any, 0, len(items)),
		index: make(map[any]int, len(items)),
	}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add appends item if no equal element is present and reports whether it was added
func (s *GenericSet) Add(item any) bool {
	item = wireNumber(item)
	if s.Contains(item) {
		return false
	}
	if s.index == nil {
		s.index = make(map[any]int)
	}
	if hashable(item) {
		s.index[item] = len(s.items)
	}
	s.items = append(s.items, item)
	return true
}

// Contains reports whether an element equal to item is in the set
func (s *GenericSet) Contains(item any) bool {
	if s == nil {
		return false
	}
	item = wireNumber(item)
	if hashable(item) {
		_, ok := s.index[item]
		return ok
	}
	for _, existing := range s.items {
		if reflect.DeepEqual(existing, item) {
			return true
		}
	}
	return false
}

// Len returns the number of elements
func (s *GenericSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns a copy of the elements in insertion order
func (s *GenericSet) Values() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// EncodeMsgpack writes the set as an array
func (s *GenericSet) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(len(s.items)); err != nil {
		return err
	}
	for _, item := range s.items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads an array into the set, replacing its contents
func (s *GenericSet) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	s.items = make([]any, 0, CapacityHint(n))
	s.index = make(map[any]int, CapacityHint(n))
	for i := 0; i < n; i++ {
		var item interface{}
		if err := dec.Decode(&item); err != nil {
			return err
		}
		s.Add(item)
	}
	return nil
}

// hashable reports whether item can be used as a map key without panicking
func hashable(item any) bool {
	if item == nil {
		return true
	}
	return reflect.ValueOf(item).Comparable()
}

// wireNumber widens built-in numeric types to int64, uint64 or float64
func wireNumber(item any) any {
	switch v := item.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return uint64(v)
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case float32:
		return float64(v)
	default:
		return item
	}
}
