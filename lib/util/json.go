package util

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// JSON Rendering
// --------------------------------------------------------------------------
//
// The containers render as JSON arrays (sets) and JSON objects (maps) in
// insertion order. Parsing a JSON object into an OrderedMap keeps the order
// of the document.

// MarshalJSON writes the set as a JSON array
func (s *OrderedSet[T]) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.items)
}

// UnmarshalJSON reads a JSON array into the set, replacing its contents
func (s *OrderedSet[T]) UnmarshalJSON(b []byte) error {
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = *NewOrderedSet(items...)
	return nil
}

// MarshalJSON writes the map as a JSON object in insertion order
func (m *OrderedMap[K, V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fmt.Sprint(k))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into the map, replacing its contents.
// Keys must be JSON strings convertible to K.
func (m *OrderedMap[K, V]) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ordered map: expected JSON object, got %v", tok)
	}
	out := NewOrderedMap[K, V](0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		rawKey, err := json.Marshal(name)
		if err != nil {
			return err
		}
		var key K
		if err := json.Unmarshal(rawKey, &key); err != nil {
			return fmt.Errorf("ordered map: key %q: %w", name, err)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("ordered map: value of %q: %w", name, err)
		}
		out.Put(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = *out
	return nil
}

// MarshalJSON writes the set as a JSON array
func (s *GenericSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.items)
}

// UnmarshalJSON reads a JSON array into the set, replacing its contents
func (s *GenericSet) UnmarshalJSON(b []byte) error {
	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = *NewGenericSet(items...)
	return nil
}
