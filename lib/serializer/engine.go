package serializer

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/vmihailenco/msgpack/v5"
	"io"
	"sync"
)

// --------------------------------------------------------------------------
// Encoding Engine
// --------------------------------------------------------------------------

// Encoders and decoders are pooled. They are reset before every use, so a
// pooled engine never carries state of a previous message.
var (
	encoderPool = sync.Pool{
		New: func() any { return msgpack.NewEncoder(nil) },
	}
	decoderPool = sync.Pool{
		New: func() any { return msgpack.NewDecoder(nil) },
	}
)

// NewEncoder returns an encoder configured the way every dcodec stream is written:
// map keys are sorted so equal maps always produce identical bytes.
func NewEncoder(w io.Writer) *msgpack.Encoder {
	enc := msgpack.NewEncoder(w)
	configureEncoder(enc)
	return enc
}

// NewDecoder returns a decoder configured the way every dcodec stream is read:
// untyped numbers decode as int64, uint64 or float64 regardless of their wire width.
func NewDecoder(r io.Reader) *msgpack.Decoder {
	dec := msgpack.NewDecoder(r)
	configureDecoder(dec)
	return dec
}

func configureEncoder(enc *msgpack.Encoder) {
	enc.SetSortMapKeys(true)
}

func configureDecoder(dec *msgpack.Decoder) {
	dec.UseLooseInterfaceDecoding(true)
}

func getEncoder(w io.Writer) *msgpack.Encoder {
	enc := encoderPool.Get().(*msgpack.Encoder)
	enc.Reset(w)
	// Reset clears the flags
	configureEncoder(enc)
	return enc
}

func putEncoder(enc *msgpack.Encoder) {
	enc.Reset(nil)
	encoderPool.Put(enc)
}

func getDecoder(r io.Reader) *msgpack.Decoder {
	dec := decoderPool.Get().(*msgpack.Decoder)
	dec.Reset(r)
	configureDecoder(dec)
	return dec
}

func putDecoder(dec *msgpack.Decoder) {
	dec.Reset(nil)
	decoderPool.Put(dec)
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	serializeTotal    = metrics.NewCounter(`dcodec_serialize_total`)
	deserializeTotal  = metrics.NewCounter(`dcodec_deserialize_total`)
	serializeBytes    = metrics.NewCounter(`dcodec_serialize_bytes_total`)
	deserializeBytes  = metrics.NewCounter(`dcodec_deserialize_bytes_total`)
	serializeErrors   = metrics.NewCounter(`dcodec_errors_total{op="serialize"}`)
	deserializeErrors = metrics.NewCounter(`dcodec_errors_total{op="deserialize"}`)
)

// WriteMetrics writes the codec counters in Prometheus text format to w
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
