package serializer

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"io"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Compression Envelopes
// --------------------------------------------------------------------------

// Compression identifies the optional envelope wrapped around an encoded stream.
// The envelope is never announced by a flag; readers detect it by the magic
// bytes the compression format writes at the start of the stream.
// Changing the magic bytes of an envelope breaks compatibility with stored streams.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
	CompressionGzip Compression = "gzip"
)

// Magic bytes of the supported envelopes. An uncompressed stream starts with
// a msgpack string header (0xa0-0xbf, 0xd9-0xdb), which none of them collide with.
var (
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicGzip = []byte{0x1f, 0x8b}
)

// maxMagicLen is the number of leading bytes needed to detect any envelope
const maxMagicLen = 4

// ParseCompression converts a name (case-insensitive, empty means none) into a Compression
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(name))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionLZ4, CompressionZstd, CompressionGzip:
		return c, nil
	default:
		return "", fmt.Errorf("invalid compression %q. must be one of none, lz4, zstd, gzip", name)
	}
}

// SniffCompression inspects the leading bytes of an encoded stream and returns its envelope
func SniffCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, magicLZ4):
		return CompressionLZ4
	case bytes.HasPrefix(prefix, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(prefix, magicGzip):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// sniff peeks at the start of br without consuming anything
func sniff(br *bufio.Reader) (Compression, error) {
	prefix, err := br.Peek(maxMagicLen)
	if len(prefix) == 0 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	// a short stream is fine as long as something could be read
	return SniffCompression(prefix), nil
}

// --------------------------------------------------------------------------
// Compressor / Decompressor
// --------------------------------------------------------------------------

// compressor is a reusable writer that compresses into an underlying sink.
// Close finalizes the envelope but never closes the sink.
type compressor interface {
	io.Writer
	Close() error
	Reset(w io.Writer)
}

// decompressor is a reusable reader over compressed data.
// Close releases the source but never closes it.
type decompressor interface {
	io.Reader
	Close() error
	Reset(r io.Reader) error
}

// lz4Reader adapts *lz4.Reader to the decompressor interface
type lz4Reader struct{ *lz4.Reader }

func (r lz4Reader) Close() error {
	r.Reader.Reset(nil)
	return nil
}

func (r lz4Reader) Reset(src io.Reader) error {
	r.Reader.Reset(src)
	return nil
}

// zstdReader adapts *zstd.Decoder to the decompressor interface.
// zstd.Decoder.Close would make the decoder unusable, so Close only drops the source.
type zstdReader struct{ *zstd.Decoder }

func (r zstdReader) Close() error {
	return r.Decoder.Reset(nil)
}

// --------------------------------------------------------------------------
// Pools
// --------------------------------------------------------------------------

// envelopePool holds reusable compressors and decompressors of one envelope.
// The pooled objects carry no state of a finished call.
type envelopePool struct {
	compressors   sync.Pool
	decompressors sync.Pool
}

var pools = map[Compression]*envelopePool{
	CompressionLZ4: {
		compressors:   sync.Pool{New: func() any { return lz4.NewWriter(nil) }},
		decompressors: sync.Pool{New: func() any { return lz4Reader{lz4.NewReader(nil)} }},
	},
	CompressionZstd: {
		compressors: sync.Pool{New: func() any {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
			if err != nil {
				panic("serializer: zstd encoder initialization failed: " + err.Error())
			}
			return enc
		}},
		decompressors: sync.Pool{New: func() any {
			dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic("serializer: zstd decoder initialization failed: " + err.Error())
			}
			return zstdReader{dec}
		}},
	},
	CompressionGzip: {
		compressors:   sync.Pool{New: func() any { return gzip.NewWriter(nil) }},
		decompressors: sync.Pool{New: func() any { return new(gzip.Reader) }},
	},
}

// newCompressor returns a compressor writing c's envelope into w
func newCompressor(c Compression, w io.Writer) (compressor, error) {
	p, ok := pools[c]
	if !ok {
		return nil, fmt.Errorf("no compressor for %q", c)
	}
	cw := p.compressors.Get().(compressor)
	cw.Reset(w)
	return cw, nil
}

// releaseCompressor finalizes the envelope and returns the compressor to its pool
func releaseCompressor(c Compression, cw compressor) error {
	err := cw.Close()
	cw.Reset(io.Discard) // don't keep references
	pools[c].compressors.Put(cw)
	return err
}

// newDecompressor returns a decompressor reading c's envelope from r
func newDecompressor(c Compression, r io.Reader) (decompressor, error) {
	p, ok := pools[c]
	if !ok {
		return nil, fmt.Errorf("no decompressor for %q", c)
	}
	dr := p.decompressors.Get().(decompressor)
	if err := dr.Reset(r); err != nil {
		// the broken reader is not returned to the pool
		return nil, err
	}
	return dr, nil
}

// releaseDecompressor drops the source and returns the decompressor to its pool
func releaseDecompressor(c Compression, dr decompressor) error {
	err := dr.Close()
	pools[c].decompressors.Put(dr)
	return err
}
