package codec

import (
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/ValentinKolb/dcodec/lib/serializer"
	"github.com/ValentinKolb/dcodec/lib/types"
	"github.com/ValentinKolb/dcodec/lib/util"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"math"
)

// --------------------------------------------------------------------------
// Ordered Collections
// --------------------------------------------------------------------------
//
// Wire layout: nil | count element...  and  nil | count (key value)...
// Elements are written in iteration order and read back into ordered
// containers, so decoding and re-encoding yields the same bytes.

// PackKeys packs an ordered set of keys
func PackKeys(enc *msgpack.Encoder, keys types.KeySet) error {
	const op = "pack keys"
	if keys == nil {
		return packed(op, enc.EncodeNil())
	}
	if err := packCount(enc, op, keys.Len()); err != nil {
		return err
	}
	var err error
	keys.Range(func(k types.Key) bool {
		err = PackKey(enc, &k)
		return err == nil
	})
	return err
}

// UnpackKeys unpacks an ordered set of keys. An absent key element is a decoding failure.
func UnpackKeys(dec *msgpack.Decoder) (types.KeySet, error) {
	const op = "unpack keys"
	absent, err := serializer.TrySkipNil(dec)
	if err != nil {
		return nil, unpacked(op, errors.Wrap(err, "read presence marker"))
	}
	if absent {
		return nil, nil
	}
	n, err := unpackCount(dec, op)
	if err != nil {
		return nil, err
	}
	keys := util.NewOrderedSet[types.Key]()
	for i := 0; i < n; i++ {
		k, err := UnpackKey(dec)
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, common.Decodingf(op, "absent key at position %d", i)
		}
		keys.Add(*k)
	}
	return keys, nil
}

// PackValues packs an ordered map of keys to values. Absent values are allowed.
func PackValues(enc *msgpack.Encoder, values types.ValueMap) error {
	const op = "pack values"
	if values == nil {
		return packed(op, enc.EncodeNil())
	}
	if err := packCount(enc, op, values.Len()); err != nil {
		return err
	}
	var err error
	values.Range(func(k types.Key, v *types.Value) bool {
		if err = PackKey(enc, &k); err != nil {
			return false
		}
		err = PackValue(enc, v)
		return err == nil
	})
	return err
}

// UnpackValues unpacks an ordered map of keys to values. An absent key is a decoding failure.
func UnpackValues(dec *msgpack.Decoder) (types.ValueMap, error) {
	const op = "unpack values"
	absent, err := serializer.TrySkipNil(dec)
	if err != nil {
		return nil, unpacked(op, errors.Wrap(err, "read presence marker"))
	}
	if absent {
		return nil, nil
	}
	n, err := unpackCount(dec, op)
	if err != nil {
		return nil, err
	}
	values := util.NewOrderedMap[types.Key, *types.Value](util.CapacityHint(n))
	for i := 0; i < n; i++ {
		k, err := UnpackKey(dec)
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, common.Decodingf(op, "absent key at position %d", i)
		}
		v, err := UnpackValue(dec)
		if err != nil {
			return nil, err
		}
		values.Put(*k, v)
	}
	return values, nil
}

// packCount writes the element count of a collection
func packCount(enc *msgpack.Encoder, op string, n int) error {
	if n > math.MaxInt32 {
		return common.Encodingf(op, "collection too large (%d elements)", n)
	}
	return packed(op, enc.EncodeInt(int64(n)))
}
