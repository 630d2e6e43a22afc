package serializer

import (
	"bytes"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// testPoint is a type only known to testRegistry
type testPoint struct {
	X, Y int64
	Name string
}

const tagTestPoint = "test.Point"

// testRegistry returns the built-in types plus testPoint
func testRegistry() *Registry {
	r := NewRegistry()
	MustRegister[testPoint](r, tagTestPoint)
	return r
}

var testCompressions = []Compression{CompressionNone, CompressionLZ4, CompressionZstd, CompressionGzip}

// testValues returns one value of every built-in type plus a registered struct
func testValues() map[string]any {
	return map[string]any{
		"Bool":    true,
		"Int":     int(-7),
		"Int64":   int64(1) << 40,
		"Uint64":  uint64(1) << 63,
		"Float64": 3.25,
		"String":  "hello, world",
		"Bytes":   []byte{0x00, 0xc0, 0xff},
		"List":    []any{int64(1), "two", 3.5, true, nil},
		"Map": map[string]any{
			"a":      int64(1),
			"nested": map[string]any{"b": "c"},
			"list":   []any{"x", int64(-2)},
		},
		"EmptyMap": map[string]any{},
		"Set":      util.NewGenericSet("a", int64(2), []any{"x"}),
		"Struct":   testPoint{X: 1, Y: -1, Name: "origin"},
	}
}

// TestSerializerRoundTrip tests that values keep type and content for every compression
func TestSerializerRoundTrip(t *testing.T) {
	r := testRegistry()

	for _, c := range testCompressions {
		t.Run(string(c), func(t *testing.T) {
			s := NewMsgPackSerializer(WithRegistry(r), WithCompression(c))

			for name, v := range testValues() {
				data, err := s.Serialize(v)
				require.NoError(t, err, name)

				result, err := s.Deserialize(data)
				require.NoError(t, err, name)

				if diff := cmp.Diff(v, result, cmp.AllowUnexported(util.GenericSet{})); diff != "" {
					t.Errorf("%s doesn't match after round trip (-want +got):\n%s", name, diff)
				}
			}
		})
	}
}

// TestCompressionTransparency tests that a reader never needs to know the producer's compression
func TestCompressionTransparency(t *testing.T) {
	r := testRegistry()
	reader := NewMsgPackSerializer(WithRegistry(r))
	v := testPoint{X: 42, Y: 7, Name: "transparent"}

	for _, c := range testCompressions {
		t.Run(string(c), func(t *testing.T) {
			data, err := NewMsgPackSerializer(WithRegistry(r), WithCompression(c)).Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, c, SniffCompression(data))

			result, err := reader.Deserialize(data)
			require.NoError(t, err)
			assert.Equal(t, v, result)

			info, err := reader.Inspect(data)
			require.NoError(t, err)
			assert.Equal(t, c, info.Compression)
			assert.Equal(t, tagTestPoint, info.Tag)
			assert.Equal(t, len(data), info.EncodedSize)
			assert.Equal(t, v, info.Value)
			if c == CompressionNone {
				assert.Equal(t, info.EncodedSize, info.PayloadSize)
			}
		})
	}
}

// TestCompressionShrinksRepetitiveData tests that the envelopes actually compress
func TestCompressionShrinksRepetitiveData(t *testing.T) {
	v := bytes.Repeat([]byte("all work and no play "), 512)

	plain, err := NewMsgPackSerializer().Serialize(v)
	require.NoError(t, err)

	for _, c := range testCompressions[1:] {
		compressed, err := NewMsgPackSerializer(WithCompression(c)).Serialize(v)
		require.NoError(t, err)
		assert.Less(t, len(compressed), len(plain)/4, c)

		payload, err := Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, plain, payload, c)
	}
}

// TestStreamLayout tests the exact bytes of an uncompressed stream
func TestStreamLayout(t *testing.T) {
	data, err := Default().Serialize("hi")
	require.NoError(t, err)

	// fixstr "string", fixstr "hi"
	want := append([]byte{0xa6}, "string"...)
	want = append(want, 0xa2, 'h', 'i')
	assert.Equal(t, want, data)
}

// TestSerializeTo tests streaming several values into one writer
func TestSerializeTo(t *testing.T) {
	for _, c := range testCompressions {
		t.Run(string(c), func(t *testing.T) {
			s := NewMsgPackSerializer(WithCompression(c))

			var buf bytes.Buffer
			require.NoError(t, s.SerializeTo(&buf, "first"))

			v, err := DeserializeFromAs[string](s, &buf)
			require.NoError(t, err)
			assert.Equal(t, "first", v)
		})
	}
}

func TestSerializeFailures(t *testing.T) {
	s := NewMsgPackSerializer(WithRegistry(testRegistry()))

	tests := []struct {
		name  string
		value any
		cause error
	}{
		{"Nil", nil, ErrNilValue},
		{"NilPointer", (*testPoint)(nil), ErrNilValue},
		{"NilMap", map[string]any(nil), ErrNilValue},
		{"NilSlice", []any(nil), ErrNilValue},
		{"NilBytes", []byte(nil), ErrNilValue},
		{"NilSet", (*util.GenericSet)(nil), ErrNilValue},
		{"UnregisteredType", struct{ A int }{1}, ErrUnknownType},
		{"UnregisteredSlice", []string{"a"}, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Serialize(tt.value)
			require.Error(t, err)
			assert.True(t, common.IsEncodingError(err), "got %v", err)
			assert.True(t, errors.Is(err, tt.cause), "got %v", err)
		})
	}

	// a pointer to a registered type is serialized as the value
	data, err := s.Serialize(&testPoint{X: 1})
	require.NoError(t, err)
	v, err := s.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, testPoint{X: 1}, v)
}

func TestDeserializeFailures(t *testing.T) {
	known := NewMsgPackSerializer(WithRegistry(testRegistry()))
	valid, err := known.Serialize(testPoint{X: 1, Y: 2, Name: "p"})
	require.NoError(t, err)

	compressed, err := NewMsgPackSerializer(WithRegistry(testRegistry()), WithCompression(CompressionZstd)).Serialize(testPoint{X: 1})
	require.NoError(t, err)

	tests := []struct {
		name  string
		data  []byte
		cause error
	}{
		{"Empty", []byte{}, nil},
		{"UnknownTag", valid, ErrUnknownTag},
		{"Truncated", valid[:len(valid)-3], nil},
		{"TagOnly", valid[:len(tagTestPoint)+1], nil},
		{"NotAString", []byte{0x92, 0x01, 0x02}, nil},
		{"BrokenEnvelope", append(append([]byte{}, magicGzip...), 0x00, 0x01, 0x02), nil},
		{"TruncatedEnvelope", compressed[:len(compressed)/2], nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the default registry does not know testPoint
			_, err := Default().Deserialize(tt.data)
			require.Error(t, err)
			assert.True(t, common.IsDecodingError(err), "got %v", err)
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause), "got %v", err)
			}
		})
	}
}

func TestDeserializeAs(t *testing.T) {
	data, err := Default().Serialize(map[string]any{"a": "b"})
	require.NoError(t, err)

	m, err := DeserializeAs[map[string]any](Default(), data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, m)

	s, err := DeserializeAs[*util.GenericSet](Default(), data)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, common.IsDecodingError(err))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

// failingWriter fails every write after limit bytes
type failingWriter struct {
	limit int
	n     int
}

var errWriteFailed = errors.New("write failed")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		return 0, errWriteFailed
	}
	w.n += len(p)
	return len(p), nil
}

// TestFailingSink tests that a broken sink is reported for every compression
func TestFailingSink(t *testing.T) {
	for _, c := range testCompressions {
		t.Run(string(c), func(t *testing.T) {
			s := NewMsgPackSerializer(WithCompression(c))
			err := s.SerializeTo(&failingWriter{}, "value")
			require.Error(t, err)

			var ce *common.Error
			require.True(t, errors.As(err, &ce))
			assert.NotNil(t, ce.Cause)
		})
	}

	// the pools stay usable after a failed call
	for _, c := range testCompressions {
		data, err := NewMsgPackSerializer(WithCompression(c)).Serialize("after failure")
		require.NoError(t, err)
		v, err := DeserializeAs[string](Default(), data)
		require.NoError(t, err)
		assert.Equal(t, "after failure", v)
	}
}

func TestDecompressPlain(t *testing.T) {
	data, err := Default().Serialize(int64(5))
	require.NoError(t, err)

	out, err := Decompress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

// TestDeserializeFromReadsOneStream tests that a reader is not closed and can be an io.Reader of any kind
func TestDeserializeFromReadsOneStream(t *testing.T) {
	data, err := NewMsgPackSerializer(WithCompression(CompressionLZ4)).Serialize([]any{"a", int64(1)})
	require.NoError(t, err)

	v, err := Default().DeserializeFrom(io.NopCloser(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", int64(1)}, v)
}
