package serializer

import (
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/pkg/errors"
	"io"
	"reflect"
)

// ISerializer is the interface of the generic object codec. A serializer writes
// the type tag of a value followed by the value itself and reconstructs the exact
// type on the way back without an external schema.
type ISerializer interface {
	// Serialize encodes v into a new byte slice
	// It returns the encoded stream and a codec failure if any
	Serialize(v any) ([]byte, error)
	// SerializeTo encodes v into w. w is not closed.
	SerializeTo(w io.Writer, v any) error
	// Deserialize decodes a stream produced by any serializer, whatever its compression
	Deserialize(b []byte) (any, error)
	// DeserializeFrom decodes one stream read from r. r is not closed and
	// may have been read past the end of the stream.
	DeserializeFrom(r io.Reader) (any, error)
	// Inspect decodes b and reports how the stream is framed
	Inspect(b []byte) (StreamInfo, error)
	// Registry returns the registry used to resolve type tags
	Registry() *Registry
}

// StreamInfo describes an encoded stream
type StreamInfo struct {
	Compression Compression // The detected envelope
	Tag         string      // The type tag
	EncodedSize int         // Size of the stream including the envelope
	PayloadSize int         // Size of tag and payload after decompression
	Value       any         // The decoded value
}

// Sentinel causes of codec failures
var (
	ErrNilValue     = errors.New("value has no concrete type")
	ErrUnknownType  = errors.New("type is not registered")
	ErrUnknownTag   = errors.New("type tag is not registered")
	ErrDuplicateTag = errors.New("duplicate registration")
	ErrTypeMismatch = errors.New("decoded value has unexpected type")
)

// DeserializeAs decodes b and asserts that the result is a T.
// A value of another type is a decoding failure, never a zero value.
func DeserializeAs[T any](s ISerializer, b []byte) (T, error) {
	var zero T
	v, err := s.Deserialize(b)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, common.DecodingError("deserialize", typeMismatch[T](v))
	}
	return t, nil
}

// DeserializeFromAs is the stream variant of DeserializeAs
func DeserializeFromAs[T any](s ISerializer, r io.Reader) (T, error) {
	var zero T
	v, err := s.DeserializeFrom(r)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, common.DecodingError("deserialize", typeMismatch[T](v))
	}
	return t, nil
}

// typeMismatch describes a value that is not a T
func typeMismatch[T any](v any) error {
	return errors.Wrapf(ErrTypeMismatch, "expected %s, got %T", reflect.TypeOf((*T)(nil)).Elem(), v)
}
