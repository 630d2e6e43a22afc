package codec

import (
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// --------------------------------------------------------------------------
// Nullable Single Values
// --------------------------------------------------------------------------
//
// Every pair writes a nil marker for an absent value, otherwise the value in
// its own wire layout. Unpacking a nil marker returns nil without attempting
// to decode anything; a present value of the wrong shape is a decoding failure.

func PackKey(enc *msgpack.Encoder, key *types.Key) error {
	return packOptional(enc, "pack key", key)
}

func UnpackKey(dec *msgpack.Decoder) (*types.Key, error) {
	return unpackOptional[types.Key](dec, "unpack key")
}

func PackValue(enc *msgpack.Encoder, value *types.Value) error {
	return packOptional(enc, "pack value", value)
}

func UnpackValue(dec *msgpack.Decoder) (*types.Value, error) {
	return unpackOptional[types.Value](dec, "unpack value")
}

func PackErrorMessage(enc *msgpack.Encoder, msg *types.ErrorMessage) error {
	return packOptional(enc, "pack error message", msg)
}

func UnpackErrorMessage(dec *msgpack.Decoder) (*types.ErrorMessage, error) {
	return unpackOptional[types.ErrorMessage](dec, "unpack error message")
}

func PackMapper(enc *msgpack.Encoder, mapper *types.Mapper) error {
	return packOptional(enc, "pack mapper", mapper)
}

func UnpackMapper(dec *msgpack.Decoder) (*types.Mapper, error) {
	return unpackOptional[types.Mapper](dec, "unpack mapper")
}

func PackReducer(enc *msgpack.Encoder, reducer *types.Reducer) error {
	return packOptional(enc, "pack reducer", reducer)
}

func UnpackReducer(dec *msgpack.Decoder) (*types.Reducer, error) {
	return unpackOptional[types.Reducer](dec, "unpack reducer")
}

func PackPredicate(enc *msgpack.Encoder, predicate *types.Predicate) error {
	return packOptional(enc, "pack predicate", predicate)
}

func UnpackPredicate(dec *msgpack.Decoder) (*types.Predicate, error) {
	return unpackOptional[types.Predicate](dec, "unpack predicate")
}

func PackRange(enc *msgpack.Encoder, r *types.Range) error {
	return packOptional(enc, "pack range", r)
}

func UnpackRange(dec *msgpack.Decoder) (*types.Range, error) {
	return unpackOptional[types.Range](dec, "unpack range")
}

func PackUpdate(enc *msgpack.Encoder, update *types.Update) error {
	return packOptional(enc, "pack update", update)
}

func UnpackUpdate(dec *msgpack.Decoder) (*types.Update, error) {
	return unpackOptional[types.Update](dec, "unpack update")
}

// PackNodeConfiguration packs the configuration a node announces to the cluster
func PackNodeConfiguration(enc *msgpack.Encoder, conf *types.NodeConfiguration) error {
	return packOptional(enc, "pack node configuration", conf)
}

func UnpackNodeConfiguration(dec *msgpack.Decoder) (*types.NodeConfiguration, error) {
	return unpackOptional[types.NodeConfiguration](dec, "unpack node configuration")
}

func PackView(enc *msgpack.Encoder, view *types.View) error {
	return packOptional(enc, "pack view", view)
}

func UnpackView(dec *msgpack.Decoder) (*types.View, error) {
	return unpackOptional[types.View](dec, "unpack view")
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// packOptional writes a nil marker for a nil v, otherwise v itself
func packOptional[T any](enc *msgpack.Encoder, op string, v *T) error {
	if v == nil {
		return packed(op, enc.EncodeNil())
	}
	return packed(op, enc.Encode(v))
}

// unpackOptional reads a nil marker or a T
func unpackOptional[T any](dec *msgpack.Decoder, op string) (*T, error) {
	absent, err := serializer.TrySkipNil(dec)
	if err != nil {
		return nil, unpacked(op, errors.Wrap(err, "read presence marker"))
	}
	if absent {
		return nil, nil
	}
	v := new(T)
	if err := dec.Decode(v); err != nil {
		return nil, unpacked(op, err)
	}
	return v, nil
}
