package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// None stores data verbatim.
type None struct{}

// Name implements Compressor.
func (None) Name() string { return "none" }

// Compress implements Compressor.
func (None) Compress(src []byte, _ Kind) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

// Decompress implements Compressor.
func (None) Decompress(src []byte) ([]byte, error) { return src, nil }

// --------------------------------------------------------------------

// Snappy uses the snappy block format.
type Snappy struct{}

// Name implements Compressor.
func (Snappy) Name() string { return "snappy" }

// Compress implements Compressor.
func (Snappy) Compress(src []byte, _ Kind) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

// Decompress implements Compressor.
func (Snappy) Decompress(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

// --------------------------------------------------------------------

// S2 uses the s2 block format, a snappy extension.
type S2 struct{}

// Name implements Compressor.
func (S2) Name() string { return "s2" }

// Compress implements Compressor.
func (S2) Compress(src []byte, _ Kind) ([]byte, error) {
	return s2.Encode(nil, src), nil
}

// Decompress implements Compressor.
func (S2) Decompress(src []byte) ([]byte, error) {
	return s2.Decode(nil, src)
}

// --------------------------------------------------------------------

// Zstd uses pooled zstandard encoders and decoders.
type Zstd struct {
	level    zstd.EncoderLevel
	encoders sync.Pool
	decoders sync.Pool
}

// NewZstd inits a zstd compressor.
func NewZstd(level Level) *Zstd {
	c := &Zstd{level: zstdLevel(level)}
	c.encoders.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
		return enc
	}
	c.decoders.New = func() interface{} {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}
	return c
}

// Name implements Compressor.
func (*Zstd) Name() string { return "zstd" }

// Compress implements Compressor.
func (c *Zstd) Compress(src []byte, _ Kind) ([]byte, error) {
	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	return enc.EncodeAll(src, nil), nil
}

// Decompress implements Compressor.
func (c *Zstd) Decompress(src []byte) ([]byte, error) {
	dec := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	return dec.DecodeAll(src, nil)
}

func zstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// --------------------------------------------------------------------

// Gzip uses pooled gzip writers and readers.
type Gzip struct {
	level   int
	writers sync.Pool
	readers sync.Pool
}

// NewGzip inits a gzip compressor.
func NewGzip(level Level) *Gzip {
	c := &Gzip{level: gzipLevel(level)}
	c.writers.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, c.level)
		return w
	}
	c.readers.New = func() interface{} {
		return new(gzip.Reader)
	}
	return c
}

// Name implements Compressor.
func (*Gzip) Name() string { return "gzip" }

// Compress implements Compressor.
func (c *Gzip) Compress(src []byte, _ Kind) ([]byte, error) {
	w := c.writers.Get().(*gzip.Writer)
	defer c.writers.Put(w)

	buf := bytes.NewBuffer(make([]byte, 0, len(src)/2+64))
	w.Reset(buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (c *Gzip) Decompress(src []byte) ([]byte, error) {
	r := c.readers.Get().(*gzip.Reader)
	defer c.readers.Put(r)

	if err := r.Reset(bytes.NewReader(src)); err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func gzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

// --------------------------------------------------------------------

// LZ4 uses the lz4 frame format.
type LZ4 struct {
	level lz4.CompressionLevel
}

// NewLZ4 inits an lz4 compressor.
func NewLZ4(level Level) *LZ4 {
	return &LZ4{level: lz4Level(level)}
}

// Name implements Compressor.
func (*LZ4) Name() string { return "lz4" }

// Compress implements Compressor.
func (c *LZ4) Compress(src []byte, _ Kind) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(src)/2+64))
	w := lz4.NewWriter(buf)
	if err := w.Apply(lz4.CompressionLevelOption(c.level)); err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress implements Compressor.
func (c *LZ4) Decompress(src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

func lz4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}
