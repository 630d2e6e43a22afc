package serializer

import (
	"bufio"
	"bytes"
	"github.com/ValentinKolb/dcodec/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"io"
	"reflect"
)

// Logger is the logger of the serializer package
var Logger = logger.GetLogger(common.LoggerSerializer)

// Option configures a serializer created by NewMsgPackSerializer
type Option func(*msgpackSerializerImpl)

// WithCompression wraps produced streams in the given envelope.
// Reading never depends on this setting, the envelope is detected.
func WithCompression(c Compression) Option {
	return func(s *msgpackSerializerImpl) {
		s.compression = c
	}
}

// WithRegistry resolves type tags with r instead of the default registry
func WithRegistry(r *Registry) Option {
	return func(s *msgpackSerializerImpl) {
		s.registry = r
	}
}

// NewMsgPackSerializer creates a serializer writing the type tag and the payload
// with msgpack. Without options it uses the default registry and no compression.
func NewMsgPackSerializer(opts ...Option) ISerializer {
	s := &msgpackSerializerImpl{
		registry:    defaultRegistry,
		compression: CompressionNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// msgpackSerializerImpl implements ISerializer. It holds no per-call state and
// is safe for concurrent use.
type msgpackSerializerImpl struct {
	registry    *Registry
	compression Compression
}

// --------------------------------------------------------------------------
// Default Serializer
// --------------------------------------------------------------------------

var (
	defaultRegistry   = NewRegistry()
	defaultSerializer = NewMsgPackSerializer()
)

// DefaultRegistry returns the process wide registry. Packages owning types
// register them here during startup.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Default returns the uncompressed serializer over the default registry.
// Nested generic collections are always encoded with it.
func Default() ISerializer {
	return defaultSerializer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (s *msgpackSerializerImpl) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.SerializeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *msgpackSerializerImpl) SerializeTo(w io.Writer, v any) (err error) {
	const op = "serialize"
	serializeTotal.Inc()
	defer func() {
		if err != nil {
			serializeErrors.Inc()
			Logger.Errorf("%s %T: %v", op, v, err)
		}
	}()

	if isNil(v) {
		return common.EncodingError(op, ErrNilValue)
	}
	tag, ok := s.registry.TagOf(v)
	if !ok {
		return common.EncodingError(op, errors.Wrapf(ErrUnknownType, "%T", v))
	}

	cw := &countingWriter{w: w}
	defer func() { serializeBytes.Add(int(cw.n)) }()

	var dst io.Writer = cw
	if s.compression != CompressionNone {
		c, cErr := newCompressor(s.compression, cw)
		if cErr != nil {
			return common.EncodingError(op, cErr)
		}
		dst = c
		// the envelope is finalized on every exit path
		defer func() {
			err = common.WithRelease(op, err, releaseCompressor(s.compression, c))
		}()
	}

	enc := getEncoder(dst)
	defer putEncoder(enc)

	if err := enc.EncodeString(tag); err != nil {
		return common.EncodingError(op, errors.Wrap(err, "write type tag"))
	}
	if err := enc.Encode(v); err != nil {
		return common.EncodingError(op, errors.Wrapf(err, "write %s payload", tag))
	}

	Logger.Debugf("%s %s (compression=%s)", op, tag, s.compression)
	return nil
}

func (s *msgpackSerializerImpl) Deserialize(b []byte) (any, error) {
	return s.DeserializeFrom(bytes.NewReader(b))
}

func (s *msgpackSerializerImpl) DeserializeFrom(r io.Reader) (any, error) {
	v, _, _, err := s.decode(r)
	return v, err
}

func (s *msgpackSerializerImpl) Inspect(b []byte) (StreamInfo, error) {
	v, tag, c, err := s.decode(bytes.NewReader(b))
	if err != nil {
		return StreamInfo{}, err
	}

	info := StreamInfo{
		Compression: c,
		Tag:         tag,
		EncodedSize: len(b),
		PayloadSize: len(b),
		Value:       v,
	}
	if c != CompressionNone {
		// the payload size is only known after inflating the stream again
		payload, err := Decompress(b)
		if err != nil {
			return StreamInfo{}, err
		}
		info.PayloadSize = len(payload)
	}
	return info, nil
}

func (s *msgpackSerializerImpl) Registry() *Registry {
	return s.registry
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// decode reads one stream from r and returns the value, its tag and the detected envelope
func (s *msgpackSerializerImpl) decode(r io.Reader) (v any, tag string, c Compression, err error) {
	const op = "deserialize"
	deserializeTotal.Inc()
	defer func() {
		if err != nil {
			deserializeErrors.Inc()
			Logger.Errorf("%s: %v", op, err)
		}
	}()

	cr := &countingReader{r: r}
	defer func() { deserializeBytes.Add(int(cr.n)) }()

	br := bufio.NewReader(cr)
	c, err = sniff(br)
	if err != nil {
		return nil, "", "", common.DecodingError(op, errors.Wrap(err, "read stream header"))
	}

	var src io.Reader = br
	if c != CompressionNone {
		dr, dErr := newDecompressor(c, br)
		if dErr != nil {
			return nil, "", c, common.DecodingError(op, errors.Wrapf(dErr, "open %s envelope", c))
		}
		// the decompressor is released on every exit path
		defer func() {
			err = common.WithRelease(op, err, releaseDecompressor(c, dr))
		}()
		src = bufio.NewReader(dr)
	}

	dec := getDecoder(src)
	defer putDecoder(dec)

	tag, err = dec.DecodeString()
	if err != nil {
		return nil, "", c, common.DecodingError(op, errors.Wrap(err, "read type tag"))
	}
	t, ok := s.registry.Lookup(tag)
	if !ok {
		return nil, tag, c, common.DecodingError(op, errors.Wrapf(ErrUnknownTag, "%q", tag))
	}

	ptr := reflect.New(t)
	if err := dec.Decode(ptr.Interface()); err != nil {
		return nil, tag, c, common.DecodingError(op, errors.Wrapf(err, "read %s payload", tag))
	}

	Logger.Debugf("%s %s (compression=%s)", op, tag, c)
	return ptr.Elem().Interface(), tag, c, nil
}

// Decompress removes the envelope of an encoded stream. Uncompressed streams are returned as is.
func Decompress(b []byte) (out []byte, err error) {
	const op = "decompress"
	c := SniffCompression(b)
	if c == CompressionNone {
		return b, nil
	}
	dr, err := newDecompressor(c, bytes.NewReader(b))
	if err != nil {
		return nil, common.DecodingError(op, errors.Wrapf(err, "open %s envelope", c))
	}
	defer func() {
		err = common.WithRelease(op, err, releaseDecompressor(c, dr))
	}()
	out, err = io.ReadAll(dr)
	if err != nil {
		return nil, common.DecodingError(op, errors.Wrapf(err, "inflate %s envelope", c))
	}
	return out, nil
}

// isNil reports whether v carries no concrete value: nil itself or a nil
// pointer, map, slice or interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// countingWriter counts the bytes written to w
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// countingReader counts the bytes read from r
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
