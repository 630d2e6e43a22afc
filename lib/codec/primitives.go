package codec

import (
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"math"
)

// Logger is the logger of the codec package
var Logger = logger.GetLogger(common.LoggerCodec)

// --------------------------------------------------------------------------
// Primitives (mandatory fields, no presence marker)
// --------------------------------------------------------------------------

func PackBoolean(enc *msgpack.Encoder, v bool) error {
	return packed("pack boolean", enc.EncodeBool(v))
}

func PackInt(enc *msgpack.Encoder, v int32) error {
	return packed("pack int", enc.EncodeInt(int64(v)))
}

func PackLong(enc *msgpack.Encoder, v int64) error {
	return packed("pack long", enc.EncodeInt(v))
}

func PackString(enc *msgpack.Encoder, v string) error {
	return packed("pack string", enc.EncodeString(v))
}

func PackBytes(enc *msgpack.Encoder, v []byte) error {
	return packed("pack bytes", enc.EncodeBytes(v))
}

func UnpackBoolean(dec *msgpack.Decoder) (bool, error) {
	v, err := dec.DecodeBool()
	return v, unpacked("unpack boolean", err)
}

// UnpackInt reads an integer that must fit into 32 bits
func UnpackInt(dec *msgpack.Decoder) (int32, error) {
	const op = "unpack int"
	v, err := dec.DecodeInt64()
	if err != nil {
		return 0, unpacked(op, err)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, common.Decodingf(op, "value %d out of int32 range", v)
	}
	return int32(v), nil
}

func UnpackLong(dec *msgpack.Decoder) (int64, error) {
	v, err := dec.DecodeInt64()
	return v, unpacked("unpack long", err)
}

func UnpackString(dec *msgpack.Decoder) (string, error) {
	v, err := dec.DecodeString()
	return v, unpacked("unpack string", err)
}

func UnpackBytes(dec *msgpack.Decoder) ([]byte, error) {
	v, err := dec.DecodeBytes()
	return v, unpacked("unpack bytes", err)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// packed turns a write failure of op into a codec failure
func packed(op string, err error) error {
	if err == nil {
		return nil
	}
	Logger.Debugf("%s: %v", op, err)
	return common.EncodingError(op, err)
}

// unpacked turns a read failure of op into a codec failure
func unpacked(op string, err error) error {
	if err == nil {
		return nil
	}
	Logger.Debugf("%s: %v", op, err)
	return common.DecodingError(op, err)
}

// unpackCount reads the element count of a collection
func unpackCount(dec *msgpack.Decoder, op string) (int, error) {
	n, err := UnpackInt(dec)
	if err != nil {
		return 0, unpacked(op, errors.Wrap(err, "read count"))
	}
	if n < 0 {
		return 0, common.Decodingf(op, "negative count %d", n)
	}
	return int(n), nil
}
