package types

import (
	"encoding/json"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"testing"
)

// testSerializer returns a serializer that resolves all domain types
func testSerializer(t testing.TB, c serializer.Compression) serializer.ISerializer {
	r := serializer.NewRegistry()
	require.NoError(t, Register(r))
	return serializer.NewMsgPackSerializer(serializer.WithRegistry(r), serializer.WithCompression(c))
}

func testNode(name string) *NodeConfiguration {
	return &NodeConfiguration{
		Name:         name,
		BindHost:     "10.0.0.1",
		NodePort:     7420,
		PublishHosts: []string{"node.example.org", "10.0.0.1"},
		HTTPHost:     "0.0.0.0",
		HTTPPort:     8080,
	}
}

// testEntities returns one value of every domain type
func testEntities() map[string]any {
	return map[string]any{
		"Key":          Key("user:1"),
		"EmptyKey":     Key(""),
		"Value":        Value{Bytes: []byte(`{"name":"alice"}`)},
		"EmptyValue":   Value{Bytes: []byte{}},
		"ErrorMessage": ErrorMessage{Code: ErrCodeNotFound, Message: "key not found"},
		"Mapper": Mapper{
			Name:         "wordcount",
			CombinerName: "sum",
			Timeout:      5000,
			Parameters:   map[string]any{"field": "text", "minLength": int64(3)},
		},
		"MapperWithoutParameters": Mapper{Name: "identity"},
		"Reducer":                 Reducer{Name: "sum", Timeout: 1000},
		"Predicate":               Predicate{ConditionType: "jsonpath", ConditionExpression: "$.age > 18"},
		"Range": Range{
			StartKey:          "a",
			EndKey:            NewKey("m"),
			Limit:             100,
			KeyComparatorName: "lexical",
			TimeToLive:        60000,
		},
		"OpenRange": Range{StartKey: "a", Limit: -1},
		"Update": Update{
			FunctionName: "increment",
			Timeout:      250,
			Parameters:   map[string]any{"by": int64(2)},
		},
		"NodeConfiguration": *testNode("node-1"),
		"Member":            Member{Configuration: testNode("node-2")},
		"EmptyMember":       Member{},
		"View": View{
			ClusterName: "production",
			Members:     []Member{{Configuration: testNode("node-1")}, {}, {Configuration: testNode("node-3")}},
		},
		"EmptyView": View{ClusterName: "empty"},
	}
}

// TestEntityRoundTrip tests every domain type through the generic serializer
func TestEntityRoundTrip(t *testing.T) {
	for _, c := range []serializer.Compression{serializer.CompressionNone, serializer.CompressionLZ4} {
		t.Run(string(c), func(t *testing.T) {
			s := testSerializer(t, c)

			for name, v := range testEntities() {
				data, err := s.Serialize(v)
				require.NoError(t, err, name)

				result, err := s.Deserialize(data)
				require.NoError(t, err, name)

				if diff := cmp.Diff(v, result); diff != "" {
					t.Errorf("%s doesn't match after round trip (-want +got):\n%s", name, diff)
				}
			}
		})
	}
}

func TestRegisterTags(t *testing.T) {
	s := testSerializer(t, serializer.CompressionNone)

	for v, tag := range map[any]string{
		Key("k"):            TagKey,
		ErrorMessage{}:      TagErrorMessage,
		Reducer{}:           TagReducer,
		Predicate{}:         TagPredicate,
		Member{}:            TagMember,
		NewValue([]byte{1}): TagValue,
	} {
		got, ok := s.Registry().TagOf(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, tag, got)
	}

	// registering twice reports every duplicate
	err := Register(s.Registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, serializer.ErrDuplicateTag))
}

// TestWireLayout tests the exact payload of small entities
func TestWireLayout(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want []byte
	}{
		{"Key", Key("ab"), []byte{0xa2, 'a', 'b'}},
		{"Value", Value{Bytes: []byte{0x01}}, []byte{0xc4, 0x01, 0x01}},
		{"NilValueBytes", Value{}, []byte{0xc4, 0x00}},
		{"ErrorMessage", ErrorMessage{Code: 404, Message: "x"}, []byte{0x92, 0xcd, 0x01, 0x94, 0xa1, 'x'}},
		{"Reducer", Reducer{Name: "r", Timeout: 1}, []byte{0x92, 0xa1, 'r', 0x01}},
		{"EmptyMember", Member{}, []byte{0x91, 0xc0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := msgpack.Marshal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestDecodeWrongShape(t *testing.T) {
	s := testSerializer(t, serializer.CompressionNone)

	// a Reducer payload under the Mapper tag
	payload, err := msgpack.Marshal(Reducer{Name: "r"})
	require.NoError(t, err)
	tag, err := msgpack.Marshal(TagMapper)
	require.NoError(t, err)

	_, err = s.Deserialize(append(tag, payload...))
	require.Error(t, err)
	assert.True(t, common.IsDecodingError(err))
	assert.Contains(t, err.Error(), "expected 4 fields, got 2")
}

func TestParsePredicate(t *testing.T) {
	p, err := ParsePredicate("jsonpath:$.a:b")
	require.NoError(t, err)
	assert.Equal(t, &Predicate{ConditionType: "jsonpath", ConditionExpression: "$.a:b"}, p)
	assert.Equal(t, "jsonpath:$.a:b", p.String())

	p, err = ParsePredicate("  ")
	require.NoError(t, err)
	assert.Nil(t, p)

	for _, in := range []string{"novalue", ":expr", "type:"} {
		_, err := ParsePredicate(in)
		assert.Error(t, err, in)
	}
}

func TestNodeConfiguration(t *testing.T) {
	n := testNode("node-1")
	assert.Equal(t, "10.0.0.1:7420", n.NodeAddress())
	assert.Equal(t, "0.0.0.0:8080", n.HTTPAddress())

	v := View{ClusterName: "c", Members: []Member{{}, {Configuration: n}}}
	m, ok := v.Member("node-1")
	assert.True(t, ok)
	assert.Equal(t, n, m.Configuration)
	_, ok = v.Member("node-9")
	assert.False(t, ok)
	assert.Equal(t, "c (2 members)", v.String())
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(NewValue([]byte(`{"a":1}`)))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))

	b, err = json.Marshal(NewValue([]byte("plain text")))
	require.NoError(t, err)
	assert.Equal(t, `"plain text"`, string(b))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"plain text"`), &v))
	assert.Equal(t, "plain text", v.String())
	require.NoError(t, json.Unmarshal([]byte(`[1, 2]`), &v))
	assert.Equal(t, "[1, 2]", v.String())

	keys := NewKeySet("b", "a", "b")
	b, err = json.Marshal(keys)
	require.NoError(t, err)
	assert.Equal(t, `["b","a"]`, string(b))
}

func TestErrorMessage(t *testing.T) {
	e := NewErrorMessage(ErrCodeUnavailable, "node %s is down", "node-1")
	assert.Equal(t, "503: node node-1 is down", e.String())
}
