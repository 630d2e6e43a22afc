package types

import (
	"encoding/json"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/vmihailenco/msgpack/v5"
)

// --------------------------------------------------------------------------
// Key
// --------------------------------------------------------------------------

// Key identifies a value inside a bucket. On the wire it is a msgpack string.
type Key string

// NewKey returns a pointer to a key, for use in optional fields
func NewKey(s string) *Key {
	k := Key(s)
	return &k
}

// String returns the key as string
func (k Key) String() string {
	return string(k)
}

// KeySet is an insertion ordered set of keys
type KeySet = *util.OrderedSet[Key]

// NewKeySet creates a key set holding keys in the given order
func NewKeySet(keys ...string) KeySet {
	set := util.NewOrderedSet[Key]()
	for _, k := range keys {
		set.Add(Key(k))
	}
	return set
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is the opaque content stored under a key, usually a JSON document.
// On the wire it is a msgpack bin.
type Value struct {
	Bytes []byte
}

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// NewValue creates a value holding b
func NewValue(b []byte) *Value {
	return &Value{Bytes: b}
}

// String returns the content of the value as string
func (v Value) String() string {
	return string(v.Bytes)
}

// EncodeMsgpack writes the value as bin
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if v.Bytes == nil {
		// keep present-but-empty values distinguishable from absent ones
		return enc.EncodeBytes([]byte{})
	}
	return enc.EncodeBytes(v.Bytes)
}

// DecodeMsgpack reads a bin into the value
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if b == nil {
		b = []byte{}
	}
	v.Bytes = b
	return nil
}

// MarshalJSON embeds JSON content as is and everything else as a JSON string
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.Bytes) > 0 && json.Valid(v.Bytes) {
		return v.Bytes, nil
	}
	return json.Marshal(string(v.Bytes))
}

// UnmarshalJSON stores the raw JSON document as content. A JSON string is unquoted.
func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.Bytes = []byte(s)
		return nil
	}
	v.Bytes = append([]byte{}, b...)
	return nil
}

// ValueMap is an insertion ordered map from keys to (possibly absent) values
type ValueMap = *util.OrderedMap[Key, *Value]

// NewValueMap creates an empty value map
func NewValueMap() ValueMap {
	return util.NewOrderedMap[Key, *Value](0)
}
