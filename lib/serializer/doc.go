// Package serializer provides the generic object codec of dcodec. It turns any
// registered Go value into a self-describing byte stream and back, without an
// external schema: every stream carries the type tag of its value in front of
// the msgpack encoded payload.
//
// Stream layout:
//
//	Stream := [CompressionEnvelope] TypeTag Payload
//
//	  TypeTag  msgpack string, a stable identifier from the Registry
//	  Payload  msgpack encoding of exactly one value of the tagged type
//
// Key Components:
//
//   - ISerializer: Core interface implemented by msgpackSerializerImpl. Serialize
//     writes tag and payload, optionally inside a compression envelope.
//     Deserialize detects the envelope by sniffing the leading magic bytes, so a
//     reader never needs to know how the producer was configured.
//
//   - Registry: Maps stable tags to Go types. Built-in types (bool, int, int64,
//     uint64, float64, string, bytes, list, map, set) are always present, domain
//     packages register their types explicitly during startup. An unknown tag
//     is a decoding failure, never a silent default.
//
//   - Compression: LZ4 frames, zstd frames and gzip members are supported and
//     detected by their magic bytes. Compressors and decompressors are pooled.
//
//   - Nested streams: EncodeNested and DecodeNested embed a complete stream as
//     a bin blob inside another msgpack stream. The domain codec layer uses this
//     for generic maps and sets.
//
// Failure semantics:
//
//	Every failure is returned as *common.Error. Opened compression wrappers are
//	closed on every exit path; a failure while closing is recorded in
//	common.Error.CloseErr and never hides the original failure.
//
// Thread Safety:
//
//	Serializers hold no per-call state and may be shared between goroutines.
//	A single io.Reader or io.Writer must not be used by concurrent calls.
//
// Usage:
//
//	  s := serializer.NewMsgPackSerializer(serializer.WithCompression(serializer.CompressionLZ4))
//	  data, err := s.Serialize(map[string]any{"answer": int64(42)})
//	  // ... store or send data ...
//	  m, err := serializer.DeserializeAs[map[string]any](s, data)
package serializer
