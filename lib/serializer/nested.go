package serializer

import (
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// --------------------------------------------------------------------------
// Nested Streams
// --------------------------------------------------------------------------

// TrySkipNil consumes a nil marker if the next value is one. It reports
// whether the marker was nil; a non-nil marker is left in the stream.
func TrySkipNil(dec *msgpack.Decoder) (bool, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return false, err
	}
	if code != msgpcode.Nil {
		return false, nil
	}
	return true, dec.DecodeNil()
}

// EncodeNested writes v into enc as a self-contained stream: a nil marker if v
// is absent, otherwise a bin blob holding a complete uncompressed stream of the
// default serializer. The blob can be decoded without its enclosing message.
func EncodeNested(enc *msgpack.Encoder, v any) error {
	const op = "encode nested stream"
	if isNil(v) {
		if err := enc.EncodeNil(); err != nil {
			return common.EncodingError(op, err)
		}
		return nil
	}
	blob, err := Default().Serialize(v)
	if err != nil {
		return err
	}
	if err := enc.EncodeBytes(blob); err != nil {
		return common.EncodingError(op, errors.Wrap(err, "write blob"))
	}
	return nil
}

// DecodeNested reads a value written by EncodeNested. An absent value returns (nil, nil).
func DecodeNested(dec *msgpack.Decoder) (any, error) {
	const op = "decode nested stream"
	absent, err := TrySkipNil(dec)
	if err != nil {
		return nil, common.DecodingError(op, errors.Wrap(err, "read presence marker"))
	}
	if absent {
		return nil, nil
	}
	blob, err := dec.DecodeBytes()
	if err != nil {
		return nil, common.DecodingError(op, errors.Wrap(err, "read blob"))
	}
	return Default().Deserialize(blob)
}

// DecodeNestedAs reads a value written by EncodeNested and asserts that it is a T.
// An absent value returns the zero T and false.
func DecodeNestedAs[T any](dec *msgpack.Decoder) (T, bool, error) {
	var zero T
	v, err := DecodeNested(dec)
	if err != nil || v == nil {
		return zero, false, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, common.DecodingError("decode nested stream", typeMismatch[T](v))
	}
	return t, true, nil
}
