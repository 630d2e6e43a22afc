package codec

import (
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/vmihailenco/msgpack/v5"
)

// --------------------------------------------------------------------------
// Generic Collections
// --------------------------------------------------------------------------
//
// Wire layout: nil | bin(stream). The blob is a complete stream of the default
// serializer (type tag + payload, never compressed) and can be decoded without
// the enclosing message, e.g. with serializer.Default().Deserialize.

// ErrShapeMismatch is the cause of a decoding failure when a nested stream holds
// a value of another shape than the one expected by the field
var ErrShapeMismatch = serializer.ErrTypeMismatch

// PackGenericMap packs a map with untyped values as a nested stream
func PackGenericMap(enc *msgpack.Encoder, m map[string]any) error {
	return packed("pack generic map", serializer.EncodeNested(enc, m))
}

// UnpackGenericMap unpacks a nested stream that must hold a map
func UnpackGenericMap(dec *msgpack.Decoder) (map[string]any, error) {
	m, _, err := serializer.DecodeNestedAs[map[string]any](dec)
	return m, unpacked("unpack generic map", err)
}

// PackGenericSet packs a set of untyped values as a nested stream
func PackGenericSet(enc *msgpack.Encoder, s *util.GenericSet) error {
	return packed("pack generic set", serializer.EncodeNested(enc, s))
}

// UnpackGenericSet unpacks a nested stream that must hold a set
func UnpackGenericSet(dec *msgpack.Decoder) (*util.GenericSet, error) {
	s, _, err := serializer.DecodeNestedAs[*util.GenericSet](dec)
	return s, unpacked("unpack generic set", err)
}
