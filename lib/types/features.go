package types

import (
	"fmt"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/vmihailenco/msgpack/v5"
	"strings"
)

// --------------------------------------------------------------------------
// Mapper
// --------------------------------------------------------------------------

// Mapper describes the map phase of a map/reduce query.
// Wire layout: [name, combiner name, timeout, parameters]; the parameters are a nested stream.
type Mapper struct {
	Name         string
	CombinerName string
	Timeout      int64 // milliseconds
	Parameters   map[string]any
}

func (m Mapper) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := enc.EncodeString(m.Name); err != nil {
		return err
	}
	if err := enc.EncodeString(m.CombinerName); err != nil {
		return err
	}
	if err := enc.EncodeInt(m.Timeout); err != nil {
		return err
	}
	return serializer.EncodeNested(enc, m.Parameters)
}

func (m *Mapper) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "Mapper", 4); err != nil {
		return err
	}
	if m.Name, err = dec.DecodeString(); err != nil {
		return err
	}
	if m.CombinerName, err = dec.DecodeString(); err != nil {
		return err
	}
	if m.Timeout, err = dec.DecodeInt64(); err != nil {
		return err
	}
	m.Parameters, _, err = serializer.DecodeNestedAs[map[string]any](dec)
	return err
}

// --------------------------------------------------------------------------
// Reducer
// --------------------------------------------------------------------------

// Reducer describes the reduce phase of a map/reduce query.
// Wire layout: [name, timeout]
type Reducer struct {
	Name    string
	Timeout int64 // milliseconds
}

func (r Reducer) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(r.Name); err != nil {
		return err
	}
	return enc.EncodeInt(r.Timeout)
}

func (r *Reducer) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "Reducer", 2); err != nil {
		return err
	}
	if r.Name, err = dec.DecodeString(); err != nil {
		return err
	}
	r.Timeout, err = dec.DecodeInt64()
	return err
}

// --------------------------------------------------------------------------
// Predicate
// --------------------------------------------------------------------------

// Predicate is a condition evaluated against values, written as "type:expression".
// Wire layout: [condition type, condition expression]
type Predicate struct {
	ConditionType       string
	ConditionExpression string
}

// ParsePredicate parses "type:expression". An empty string yields no predicate.
func ParsePredicate(s string) (*Predicate, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	condType, expr, ok := strings.Cut(s, ":")
	if !ok || condType == "" || expr == "" {
		return nil, fmt.Errorf("wrong predicate format %q, expected type:expression", s)
	}
	return &Predicate{ConditionType: condType, ConditionExpression: expr}, nil
}

// String returns the predicate in "type:expression" form
func (p Predicate) String() string {
	return p.ConditionType + ":" + p.ConditionExpression
}

func (p Predicate) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(p.ConditionType); err != nil {
		return err
	}
	return enc.EncodeString(p.ConditionExpression)
}

func (p *Predicate) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "Predicate", 2); err != nil {
		return err
	}
	if p.ConditionType, err = dec.DecodeString(); err != nil {
		return err
	}
	p.ConditionExpression, err = dec.DecodeString()
	return err
}

// --------------------------------------------------------------------------
// Range
// --------------------------------------------------------------------------

// Range selects the keys between StartKey and EndKey as ordered by the named comparator.
// A missing EndKey means an open range.
// Wire layout: [start key, end key or nil, limit, comparator name, time to live]
type Range struct {
	StartKey          Key
	EndKey            *Key
	Limit             int
	KeyComparatorName string
	TimeToLive        int64 // milliseconds
}

func (r Range) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(5); err != nil {
		return err
	}
	if err := enc.EncodeString(string(r.StartKey)); err != nil {
		return err
	}
	if r.EndKey == nil {
		if err := enc.EncodeNil(); err != nil {
			return err
		}
	} else if err := enc.EncodeString(string(*r.EndKey)); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(r.Limit)); err != nil {
		return err
	}
	if err := enc.EncodeString(r.KeyComparatorName); err != nil {
		return err
	}
	return enc.EncodeInt(r.TimeToLive)
}

func (r *Range) DecodeMsgpack(dec *msgpack.Decoder) error {
	if err := decodeHeader(dec, "Range", 5); err != nil {
		return err
	}
	start, err := dec.DecodeString()
	if err != nil {
		return err
	}
	r.StartKey = Key(start)

	r.EndKey = nil
	absent, err := serializer.TrySkipNil(dec)
	if err != nil {
		return err
	}
	if !absent {
		end, err := dec.DecodeString()
		if err != nil {
			return err
		}
		r.EndKey = NewKey(end)
	}

	if r.Limit, err = dec.DecodeInt(); err != nil {
		return err
	}
	if r.KeyComparatorName, err = dec.DecodeString(); err != nil {
		return err
	}
	r.TimeToLive, err = dec.DecodeInt64()
	return err
}

// --------------------------------------------------------------------------
// Update
// --------------------------------------------------------------------------

// Update describes a server side update function applied to a value.
// Wire layout: [function name, timeout, parameters]; the parameters are a nested stream.
type Update struct {
	FunctionName string
	Timeout      int64 // milliseconds
	Parameters   map[string]any
}

func (u Update) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := enc.EncodeString(u.FunctionName); err != nil {
		return err
	}
	if err := enc.EncodeInt(u.Timeout); err != nil {
		return err
	}
	return serializer.EncodeNested(enc, u.Parameters)
}

func (u *Update) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "Update", 3); err != nil {
		return err
	}
	if u.FunctionName, err = dec.DecodeString(); err != nil {
		return err
	}
	if u.Timeout, err = dec.DecodeInt64(); err != nil {
		return err
	}
	u.Parameters, _, err = serializer.DecodeNestedAs[map[string]any](dec)
	return err
}
