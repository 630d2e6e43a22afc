package codec

import (
	"bytes"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"math"
	"testing"
)

// pack runs fn on a fresh encoder and returns the written bytes
func pack(t *testing.T, fn func(enc *msgpack.Encoder) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(serializer.NewEncoder(&buf)))
	return buf.Bytes()
}

// decoder returns a decoder over b
func decoder(b []byte) *msgpack.Decoder {
	return serializer.NewDecoder(bytes.NewReader(b))
}

func TestPrimitives(t *testing.T) {
	b := pack(t, func(enc *msgpack.Encoder) error {
		for _, err := range []error{
			PackBoolean(enc, true),
			PackInt(enc, math.MinInt32),
			PackInt(enc, 7),
			PackLong(enc, math.MaxInt64),
			PackString(enc, "bucket"),
			PackString(enc, ""),
			PackBytes(enc, []byte{0x00, 0xff}),
		} {
			if err != nil {
				return err
			}
		}
		return nil
	})

	dec := decoder(b)
	v, err := UnpackBoolean(dec)
	require.NoError(t, err)
	assert.True(t, v)

	i, err := UnpackInt(dec)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), i)

	i, err = UnpackInt(dec)
	require.NoError(t, err)
	assert.Equal(t, int32(7), i)

	l, err := UnpackLong(dec)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), l)

	s, err := UnpackString(dec)
	require.NoError(t, err)
	assert.Equal(t, "bucket", s)

	s, err = UnpackString(dec)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	raw, err := UnpackBytes(dec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, raw)

	// nothing left
	_, err = UnpackBoolean(dec)
	assert.True(t, common.IsDecodingError(err))
}

func TestUnpackIntRange(t *testing.T) {
	for _, v := range []int64{math.MaxInt32 + 1, math.MinInt32 - 1} {
		b := pack(t, func(enc *msgpack.Encoder) error { return PackLong(enc, v) })
		_, err := UnpackInt(decoder(b))
		require.Error(t, err, v)
		assert.True(t, common.IsDecodingError(err))
	}
}

func TestUnpackWrongPrimitive(t *testing.T) {
	b := pack(t, func(enc *msgpack.Encoder) error { return PackString(enc, "not a bool") })
	_, err := UnpackBoolean(decoder(b))
	assert.True(t, common.IsDecodingError(err))

	_, err = UnpackInt(decoder(b))
	assert.True(t, common.IsDecodingError(err))
}

// TestNilRoundTrip tests that every nullable pair writes a single nil marker and reads back nil
func TestNilRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		pack   func(enc *msgpack.Encoder) error
		unpack func(dec *msgpack.Decoder) (any, error)
	}{
		{"Key",
			func(enc *msgpack.Encoder) error { return PackKey(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackKey(dec) }},
		{"Value",
			func(enc *msgpack.Encoder) error { return PackValue(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackValue(dec) }},
		{"ErrorMessage",
			func(enc *msgpack.Encoder) error { return PackErrorMessage(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackErrorMessage(dec) }},
		{"Mapper",
			func(enc *msgpack.Encoder) error { return PackMapper(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackMapper(dec) }},
		{"Reducer",
			func(enc *msgpack.Encoder) error { return PackReducer(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackReducer(dec) }},
		{"Predicate",
			func(enc *msgpack.Encoder) error { return PackPredicate(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackPredicate(dec) }},
		{"Range",
			func(enc *msgpack.Encoder) error { return PackRange(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackRange(dec) }},
		{"Update",
			func(enc *msgpack.Encoder) error { return PackUpdate(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackUpdate(dec) }},
		{"NodeConfiguration",
			func(enc *msgpack.Encoder) error { return PackNodeConfiguration(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackNodeConfiguration(dec) }},
		{"View",
			func(enc *msgpack.Encoder) error { return PackView(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackView(dec) }},
		{"Keys",
			func(enc *msgpack.Encoder) error { return PackKeys(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackKeys(dec) }},
		{"Values",
			func(enc *msgpack.Encoder) error { return PackValues(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackValues(dec) }},
		{"GenericMap",
			func(enc *msgpack.Encoder) error { return PackGenericMap(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackGenericMap(dec) }},
		{"GenericSet",
			func(enc *msgpack.Encoder) error { return PackGenericSet(enc, nil) },
			func(dec *msgpack.Decoder) (any, error) { return UnpackGenericSet(dec) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pack(t, func(enc *msgpack.Encoder) error {
				if err := tt.pack(enc); err != nil {
					return err
				}
				return PackString(enc, "next")
			})
			// nil marker followed by the next field
			assert.Equal(t, []byte{0xc0, 0xa4, 'n', 'e', 'x', 't'}, b)

			dec := decoder(b)
			v, err := tt.unpack(dec)
			require.NoError(t, err)
			assert.True(t, isNilValue(v), "expected nil, got %#v", v)

			next, err := UnpackString(dec)
			require.NoError(t, err)
			assert.Equal(t, "next", next)
		})
	}
}

// isNilValue reports whether v is nil or a typed nil pointer or map
func isNilValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *types.Key:
		return t == nil
	case *types.Value:
		return t == nil
	case *types.ErrorMessage:
		return t == nil
	case *types.Mapper:
		return t == nil
	case *types.Reducer:
		return t == nil
	case *types.Predicate:
		return t == nil
	case *types.Range:
		return t == nil
	case *types.Update:
		return t == nil
	case *types.NodeConfiguration:
		return t == nil
	case *types.View:
		return t == nil
	case types.KeySet:
		return t == nil
	case types.ValueMap:
		return t == nil
	case map[string]any:
		return t == nil
	case *util.GenericSet:
		return t == nil
	default:
		return false
	}
}

func TestSingleValueRoundTrip(t *testing.T) {
	mapper := &types.Mapper{Name: "m", CombinerName: "c", Timeout: 10, Parameters: map[string]any{"x": int64(1)}}
	reducer := &types.Reducer{Name: "r", Timeout: 20}
	predicate := &types.Predicate{ConditionType: "regex", ConditionExpression: "^a"}
	rng := &types.Range{StartKey: "a", EndKey: types.NewKey("z"), Limit: 5, KeyComparatorName: "lexical", TimeToLive: 1}
	update := &types.Update{FunctionName: "append", Timeout: 30, Parameters: map[string]any{"suffix": "!"}}
	node := &types.NodeConfiguration{Name: "n1", BindHost: "::1", NodePort: 1, PublishHosts: []string{"h"}, HTTPHost: "::1", HTTPPort: 2}
	view := &types.View{ClusterName: "c", Members: []types.Member{{Configuration: node}, {}}}
	errMsg := types.NewErrorMessage(types.ErrCodeConflict, "conflict")

	b := pack(t, func(enc *msgpack.Encoder) error {
		for _, err := range []error{
			PackKey(enc, types.NewKey("k")),
			PackValue(enc, types.NewValue([]byte("v"))),
			PackErrorMessage(enc, errMsg),
			PackMapper(enc, mapper),
			PackReducer(enc, reducer),
			PackPredicate(enc, predicate),
			PackRange(enc, rng),
			PackUpdate(enc, update),
			PackNodeConfiguration(enc, node),
			PackView(enc, view),
		} {
			if err != nil {
				return err
			}
		}
		return nil
	})

	dec := decoder(b)
	key, err := UnpackKey(dec)
	require.NoError(t, err)
	assert.Equal(t, types.NewKey("k"), key)

	value, err := UnpackValue(dec)
	require.NoError(t, err)
	assert.Equal(t, types.NewValue([]byte("v")), value)

	gotErr, err := UnpackErrorMessage(dec)
	require.NoError(t, err)
	assert.Equal(t, errMsg, gotErr)

	gotMapper, err := UnpackMapper(dec)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(mapper, gotMapper))

	gotReducer, err := UnpackReducer(dec)
	require.NoError(t, err)
	assert.Equal(t, reducer, gotReducer)

	gotPredicate, err := UnpackPredicate(dec)
	require.NoError(t, err)
	assert.Equal(t, predicate, gotPredicate)

	gotRange, err := UnpackRange(dec)
	require.NoError(t, err)
	assert.Equal(t, rng, gotRange)

	gotUpdate, err := UnpackUpdate(dec)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(update, gotUpdate))

	gotNode, err := UnpackNodeConfiguration(dec)
	require.NoError(t, err)
	assert.Equal(t, node, gotNode)

	gotView, err := UnpackView(dec)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(view, gotView))
}

func TestUnpackWrongShape(t *testing.T) {
	// a reducer where a mapper is expected
	b := pack(t, func(enc *msgpack.Encoder) error {
		return PackReducer(enc, &types.Reducer{Name: "r"})
	})
	_, err := UnpackMapper(decoder(b))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))

	// a boolean where a value is expected
	b = pack(t, func(enc *msgpack.Encoder) error { return PackBoolean(enc, true) })
	_, err = UnpackValue(decoder(b))
	assert.True(t, common.IsDecodingError(err))

	// truncated input
	_, err = UnpackKey(decoder(nil))
	assert.True(t, common.IsDecodingError(err))
}

// TestOrderPreservation tests that collections decode in wire order and re-encode to the same bytes
func TestOrderPreservation(t *testing.T) {
	keys := types.NewKeySet("zeta", "alpha", "mu", "beta")

	values := types.NewValueMap()
	values.Put("zeta", types.NewValue([]byte("1")))
	values.Put("alpha", nil)
	values.Put("mu", types.NewValue([]byte{}))

	original := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackKeys(enc, keys); err != nil {
			return err
		}
		return PackValues(enc, values)
	})

	dec := decoder(original)
	gotKeys, err := UnpackKeys(dec)
	require.NoError(t, err)
	assert.Equal(t, keys.Values(), gotKeys.Values())

	gotValues, err := UnpackValues(dec)
	require.NoError(t, err)
	assert.Equal(t, values.Keys(), gotValues.Keys())
	alpha, ok := gotValues.Get("alpha")
	assert.True(t, ok)
	assert.Nil(t, alpha, "absent values stay absent")
	mu, _ := gotValues.Get("mu")
	require.NotNil(t, mu)
	assert.Empty(t, mu.Bytes)

	reencoded := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackKeys(enc, gotKeys); err != nil {
			return err
		}
		return PackValues(enc, gotValues)
	})
	assert.Equal(t, original, reencoded)
}

func TestEmptyCollections(t *testing.T) {
	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackKeys(enc, types.NewKeySet()); err != nil {
			return err
		}
		return PackValues(enc, types.NewValueMap())
	})
	// count 0, count 0: empty is not absent
	assert.Equal(t, []byte{0x00, 0x00}, b)

	dec := decoder(b)
	keys, err := UnpackKeys(dec)
	require.NoError(t, err)
	require.NotNil(t, keys)
	assert.Equal(t, 0, keys.Len())

	values, err := UnpackValues(dec)
	require.NoError(t, err)
	require.NotNil(t, values)
	assert.Equal(t, 0, values.Len())
}

func TestAbsentKeyElement(t *testing.T) {
	// count 2, key "a", nil
	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackInt(enc, 2); err != nil {
			return err
		}
		if err := PackKey(enc, types.NewKey("a")); err != nil {
			return err
		}
		return PackKey(enc, nil)
	})
	_, err := UnpackKeys(decoder(b))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))
	assert.Contains(t, err.Error(), "absent key at position 1")

	// count 1, nil key, value
	b = pack(t, func(enc *msgpack.Encoder) error {
		if err := PackInt(enc, 1); err != nil {
			return err
		}
		if err := PackKey(enc, nil); err != nil {
			return err
		}
		return PackValue(enc, types.NewValue([]byte("v")))
	})
	_, err = UnpackValues(decoder(b))
	assert.True(t, common.IsDecodingError(err))
}

func TestInvalidCount(t *testing.T) {
	for _, count := range []int64{-1, math.MaxInt32 + 1} {
		b := pack(t, func(enc *msgpack.Encoder) error { return PackLong(enc, count) })
		_, err := UnpackKeys(decoder(b))
		assert.True(t, common.IsDecodingError(err), "count %d", count)
	}

	// count larger than the available elements
	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackInt(enc, 3); err != nil {
			return err
		}
		return PackKey(enc, types.NewKey("only"))
	})
	_, err := UnpackKeys(decoder(b))
	assert.True(t, common.IsDecodingError(err))
}

// TestForgedCount tests that a huge announced size without elements fails with a decoding error
func TestForgedCount(t *testing.T) {
	// uint32 count 2^31-1, no elements
	forged := []byte{0xce, 0x7f, 0xff, 0xff, 0xff}

	_, err := UnpackValues(decoder(forged))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))

	_, err = UnpackKeys(decoder(forged))
	assert.True(t, common.IsDecodingError(err))

	// a set stream announcing 2^31-1 elements
	tag, err := msgpack.Marshal(serializer.TagSet)
	require.NoError(t, err)
	_, err = serializer.Default().Deserialize(append(tag, 0xdd, 0x7f, 0xff, 0xff, 0xff))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))

	// the same set nested inside a message
	blob := pack(t, func(enc *msgpack.Encoder) error {
		return PackBytes(enc, append(tag, 0xdd, 0x7f, 0xff, 0xff, 0xff))
	})
	_, err = UnpackGenericSet(decoder(blob))
	assert.True(t, common.IsDecodingError(err))
}

// TestMixedMessage tests a message of a key, an absent value and a key set
func TestMixedMessage(t *testing.T) {
	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackKey(enc, types.NewKey("k1")); err != nil {
			return err
		}
		if err := PackValue(enc, nil); err != nil {
			return err
		}
		return PackKeys(enc, types.NewKeySet("k2", "k3"))
	})

	want := []byte{
		0xa2, 'k', '1', // key
		0xc0,           // absent value
		0x02,           // count
		0xa2, 'k', '2', // key
		0xa2, 'k', '3', // key
	}
	assert.Equal(t, want, b)

	dec := decoder(b)
	key, err := UnpackKey(dec)
	require.NoError(t, err)
	assert.Equal(t, types.Key("k1"), *key)

	value, err := UnpackValue(dec)
	require.NoError(t, err)
	assert.Nil(t, value)

	keys, err := UnpackKeys(dec)
	require.NoError(t, err)
	assert.Equal(t, []types.Key{"k2", "k3"}, keys.Values())
}

func TestGenericCollections(t *testing.T) {
	m := map[string]any{
		"count":  int64(3),
		"ratio":  0.5,
		"name":   "job",
		"nested": map[string]any{"ok": true},
		"list":   []any{"a", int64(1)},
	}
	set := util.NewGenericSet("a", int64(1), false)

	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackGenericMap(enc, m); err != nil {
			return err
		}
		return PackGenericSet(enc, set)
	})

	dec := decoder(b)
	gotMap, err := UnpackGenericMap(dec)
	require.NoError(t, err)
	assert.Equal(t, m, gotMap)

	gotSet, err := UnpackGenericSet(dec)
	require.NoError(t, err)
	assert.Equal(t, set.Values(), gotSet.Values())
}

// TestNestedBlobIndependence tests that a generic collection can be decoded without its enclosing message
func TestNestedBlobIndependence(t *testing.T) {
	m := map[string]any{"k": "v", "n": int64(9)}
	b := pack(t, func(enc *msgpack.Encoder) error {
		if err := PackString(enc, "prefix"); err != nil {
			return err
		}
		return PackGenericMap(enc, m)
	})

	dec := decoder(b)
	_, err := UnpackString(dec)
	require.NoError(t, err)
	blob, err := UnpackBytes(dec)
	require.NoError(t, err)

	v, err := serializer.DeserializeAs[map[string]any](serializer.Default(), blob)
	require.NoError(t, err)
	assert.Equal(t, m, v)
}

func TestGenericShapeMismatch(t *testing.T) {
	b := pack(t, func(enc *msgpack.Encoder) error {
		return PackGenericSet(enc, util.NewGenericSet("a"))
	})
	_, err := UnpackGenericMap(decoder(b))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	b = pack(t, func(enc *msgpack.Encoder) error {
		return PackGenericMap(enc, map[string]any{"a": "b"})
	})
	_, err = UnpackGenericSet(decoder(b))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestPackFailsOnBrokenWriter(t *testing.T) {
	enc := msgpack.NewEncoder(brokenWriter{})
	err := PackKey(enc, types.NewKey("k"))
	require.Error(t, err)
	assert.True(t, common.IsEncodingError(err))

	err = PackKeys(enc, types.NewKeySet("a"))
	assert.True(t, common.IsEncodingError(err))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken") }
