package colblock

import (
	"bytes"
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriterOptions define block writer specific options.
type WriterOptions struct {
	// BlockSize is the byte budget of a block. Appends fail with
	// ErrBlockOverflow once the estimated block size reaches it and
	// CreateFixed pads blocks to exactly this size.
	// Default: 4MiB.
	BlockSize int `yaml:"block_size"`

	// Compression is the short name of the compressor applied to the
	// metadata section, see package compress.
	// Default: snappy.
	Compression string `yaml:"compression"`

	// Codec options applied by AppendColumns.
	Codec CodecOptions `yaml:"codec"`

	// Logger receives debug events.
	// Default: zap.NewNop().
	Logger *zap.Logger `yaml:"-"`

	// Registerer registers the writer metrics, unregistered if nil.
	Registerer prometheus.Registerer `yaml:"-"`
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockSize < 1 {
		oo.BlockSize = 4 << 20
	}
	if oo.Compression == "" {
		oo.Compression = "snappy"
	}
	if oo.Logger == nil {
		oo.Logger = zap.NewNop()
	}
	oo.Codec = *oo.Codec.norm()

	return &oo
}

// ParseWriterOptions parses YAML encoded options, e.g.:
//
//	block_size: 65536
//	compression: zstd
//	codec:
//	  compression: lz4
//	  byte_order: big
//
// Unknown fields are rejected.
func ParseWriterOptions(data []byte) (*WriterOptions, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	o := new(WriterOptions)
	if err := dec.Decode(o); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return o, nil
}
