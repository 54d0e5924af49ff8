package colblock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bsm/colblock/compress"
)

// Codec identifiers of the built-in codecs.
const (
	DictionaryCodec = "dict"
	ConstantCodec   = "const"
)

// CodecOptions define column codec specific options.
type CodecOptions struct {
	// Compression is the short name of the compressor applied to
	// column bodies.
	// Default: snappy.
	Compression string `yaml:"compression"`

	// ByteOrder of encoded column bodies.
	// Default: LittleEndian.
	ByteOrder ByteOrder `yaml:"byte_order"`
}

func (o *CodecOptions) norm() *CodecOptions {
	var oo CodecOptions
	if o != nil {
		oo = *o
	}

	if oo.Compression == "" {
		oo.Compression = "snappy"
	}
	if oo.ByteOrder != BigEndian {
		oo.ByteOrder = LittleEndian
	}
	return &oo
}

// Codec encodes columns into column binaries and decodes them back.
type Codec interface {
	// Name returns the codec identifier stored in column binaries.
	Name() string
	// Encode encodes a column.
	Encode(col Column, o *CodecOptions) (*ColumnBinary, error)
	// Decode returns a lazy view of a column binary.
	Decode(cb *ColumnBinary) (ColumnView, error)
	// EstimateSize predicts the uncompressed body size for an analysis.
	EstimateSize(a *Analysis) int
	// SetRangeIndex merges the value range of cb into the tree node
	// named after the column.
	SetRangeIndex(tree *IndexTree, cb *ColumnBinary) error
}

var (
	codecs   = make(map[string]Codec)
	codecsMu sync.RWMutex
)

// RegisterCodec registers a codec under its name, replacing any codec
// previously registered under the same name.
func RegisterCodec(c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()

	codecs[c.Name()] = c
}

// LookupCodec returns the codec registered under name.
func LookupCodec(name string) (Codec, error) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	if c, ok := codecs[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
}

// CodecNames returns the sorted identifiers of all registered codecs.
func CodecNames() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterCodec(dictCodec{})
	RegisterCodec(constCodec{})
}

// Encode encodes a column with the dictionary codec, which falls back
// to the constant codec for single-valued columns without nulls.
func Encode(col Column, o *CodecOptions) (*ColumnBinary, error) {
	return dictCodec{}.Encode(col, o)
}

// Decode returns a lazy view of a column binary, using the codec
// recorded in the binary.
func Decode(cb *ColumnBinary) (ColumnView, error) {
	codec, err := LookupCodec(cb.Codec)
	if err != nil {
		return nil, err
	}
	return codec.Decode(cb)
}

// DecodeAs is like Decode but returns a typed view.
func DecodeAs[T Scalar](cb *ColumnBinary) (View[T], error) {
	v, err := Decode(cb)
	if err != nil {
		return nil, err
	}
	return AsView[T](v)
}

func lookupCompressor(name string) (compress.Compressor, error) {
	c, err := compress.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return c, nil
}

func typeMismatch(col Column) error {
	return fmt.Errorf("%w: unsupported column %T", ErrTypeMismatch, col)
}

// --------------------------------------------------------------------

// ColumnView is a decoded, possibly not yet materialized column.
type ColumnView interface {
	// Name returns the column name.
	Name() string
	// Type returns the scalar type.
	Type() ColumnType
	// Len returns the number of rows.
	Len() int
	// IsNull reports whether a row is null. It panics if row is out
	// of range.
	IsNull(row int) (bool, error)
}

// View is a typed ColumnView.
type View[T Scalar] interface {
	ColumnView

	// Get returns the value at row, false for nulls. It panics if row
	// is out of range. The first access materializes the column,
	// errors are sticky.
	Get(row int) (T, bool, error)

	// Load copies all non-null values into dst and declares the row
	// count.
	Load(dst Target[T]) error
}

// AsView converts a view into its typed form.
func AsView[T Scalar](v ColumnView) (View[T], error) {
	tv, ok := v.(View[T])
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, not %s", ErrTypeMismatch, v.Name(), v.Type(), typeOf[T]())
	}
	return tv, nil
}
