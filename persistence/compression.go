package persistence

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the body compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 compresses the body as an LZ4 frame (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd compresses the body as a Zstd frame (better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) valid() bool { return c <= CompressionZstd }

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func putZstdEncoder(enc *zstd.Encoder) {
	enc.Reset(nil)
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

// compressWriter returns a writer compressing into w. Close flushes the
// frame without closing w.
func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		enc, err := getZstdEncoder(w)
		if err != nil {
			return nil, err
		}
		return &pooledZstdWriter{enc}, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

// decompressReader returns a reader decoding the body and a release func.
// Decoder failures surface as ErrCorruptFormat.
func decompressReader(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionLZ4:
		return corruptReader{lz4.NewReader(r)}, func() {}, nil
	case CompressionZstd:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
		}
		return corruptReader{dec}, func() { putZstdDecoder(dec) }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptFormat, c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type pooledZstdWriter struct{ enc *zstd.Encoder }

func (p *pooledZstdWriter) Write(b []byte) (int, error) { return p.enc.Write(b) }

func (p *pooledZstdWriter) Close() error {
	err := p.enc.Close()
	putZstdEncoder(p.enc)
	return err
}

// corruptReader maps decoder errors other than EOF to ErrCorruptFormat.
type corruptReader struct{ r io.Reader }

func (c corruptReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrCorruptFormat) {
		err = fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	return n, err
}
