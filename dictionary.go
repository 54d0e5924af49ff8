package colblock

import (
	"encoding/binary"
	"sync"

	"github.com/bsm/colblock/compress"
)

// dictionary assigns indexes to distinct values in insertion order.
// Index 0 is the null sentinel and never maps to a value.
type dictionary[T Scalar] struct {
	values []T
	lookup map[uint64]uint32
}

func newDictionary[T Scalar]() *dictionary[T] {
	var zero T
	return &dictionary[T]{
		values: []T{zero},
		lookup: make(map[uint64]uint32),
	}
}

// add returns the index of v, and true if v was new.
func (d *dictionary[T]) add(v T) (uint32, bool) {
	key := scalarKey(v)
	if idx, ok := d.lookup[key]; ok {
		return idx, false
	}
	idx := uint32(len(d.values))
	d.values = append(d.values, v)
	d.lookup[key] = idx
	return idx, true
}

func (d *dictionary[T]) len() int { return len(d.values) }

// span tracks the range of non-null values. NaNs are only kept when
// nothing else was seen.
type span[T Scalar] struct {
	ok       bool
	min, max T
}

func (s *span[T]) observe(v T) {
	if v != v {
		if !s.ok {
			s.ok, s.min, s.max = true, v, v
		}
		return
	}
	if !s.ok || s.min != s.min {
		s.ok, s.min, s.max = true, v, v
		return
	}
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
}

// --------------------------------------------------------------------

// dictCodec is the dictionary codec.
//
// Payload:
//
//	+-----------+-----------+------------------+----------------------------------------+
//	| min (BE)  | max (BE)  | byte order (1)   | compressed(index array | dictionary)   |
//	+-----------+-----------+------------------+----------------------------------------+
type dictCodec struct{}

func (dictCodec) Name() string { return DictionaryCodec }

func (dictCodec) Encode(col Column, o *CodecOptions) (*ColumnBinary, error) {
	switch c := col.(type) {
	case *Cells[int8]:
		return encodeDict(c, o)
	case *Cells[int16]:
		return encodeDict(c, o)
	case *Cells[int32]:
		return encodeDict(c, o)
	case *Cells[int64]:
		return encodeDict(c, o)
	case *Cells[float32]:
		return encodeDict(c, o)
	case *Cells[float64]:
		return encodeDict(c, o)
	}
	return nil, typeMismatch(col)
}

func (dictCodec) Decode(cb *ColumnBinary) (ColumnView, error) {
	switch cb.Type {
	case Int8Type:
		return decodeDict[int8](cb)
	case Int16Type:
		return decodeDict[int16](cb)
	case Int32Type:
		return decodeDict[int32](cb)
	case Int64Type:
		return decodeDict[int64](cb)
	case Float32Type:
		return decodeDict[float32](cb)
	case Float64Type:
		return decodeDict[float64](cb)
	}
	return nil, corruptf("column %q has invalid type %s", cb.Name, cb.Type)
}

func (dictCodec) EstimateSize(a *Analysis) int {
	card := a.Distinct + 1
	return a.RowCount*IndexWidth(card) + card*a.Type.Width()
}

func (dictCodec) SetRangeIndex(tree *IndexTree, cb *ColumnBinary) error {
	w := cb.Type.Width()
	if w == 0 {
		return corruptf("column %q has invalid type %s", cb.Name, cb.Type)
	}
	if len(cb.Data) < 2*w+1 {
		return corruptf("column %q header truncated", cb.Name)
	}

	node := tree.Node(cb.Name)
	if cb.Cardinality <= 1 {
		node.Merge(Unsupported)
		return nil
	}

	idx, err := readRange(cb.Type, cb.Data)
	if err != nil {
		return err
	}
	node.Merge(idx)
	return nil
}

func encodeDict[T Scalar](c *Cells[T], o *CodecOptions) (*ColumnBinary, error) {
	o = o.norm()
	comp, err := compress.Lookup(o.Compression)
	if err != nil {
		return nil, err
	}

	numRows := c.Len()
	dict := newDictionary[T]()
	indexes := make([]uint32, numRows)

	var rng span[T]
	var hasNull bool
	var nonNull int
	for i := 0; i < numRows; i++ {
		v, ok := c.Get(i)
		if !ok {
			hasNull = true
			continue
		}
		nonNull++

		idx, added := dict.add(v)
		if added {
			rng.observe(v)
		}
		indexes[i] = idx
	}

	if !hasNull && dict.len() == 2 {
		return encodeConst(c.Name(), dict.values[1], numRows), nil
	}

	sc := NewScalarCodec[T]()
	order := o.ByteOrder.binary()
	iw := IndexWidth(dict.len())
	ilen := numRows * iw

	body := make([]byte, ilen+dict.len()*sc.Width())
	for i, idx := range indexes {
		putIndex(order, body[i*iw:], iw, idx)
	}
	for i, v := range dict.values {
		sc.Put(order, body[ilen+i*sc.Width():], v)
	}

	packed, err := comp.Compress(body, compress.KindNumber)
	if err != nil {
		return nil, err
	}

	hlen := 2*sc.Width() + 1
	data := make([]byte, hlen, hlen+len(packed))
	if rng.ok {
		sc.Put(binary.BigEndian, data[0:], rng.min)
		sc.Put(binary.BigEndian, data[sc.Width():], rng.max)
	}
	data[hlen-1] = o.ByteOrder.flag()
	data = append(data, packed...)

	return &ColumnBinary{
		Codec:       DictionaryCodec,
		Compressor:  comp.Name(),
		Name:        c.Name(),
		Type:        c.Type(),
		RowCount:    numRows,
		LogicalSize: sc.Width() * nonNull,
		Cardinality: dict.len(),
		Data:        data,
	}, nil
}

func decodeDict[T Scalar](cb *ColumnBinary) (View[T], error) {
	sc := NewScalarCodec[T]()
	hlen := 2*sc.Width() + 1
	if len(cb.Data) < hlen {
		return nil, corruptf("column %q header truncated", cb.Name)
	}
	if cb.RowCount < 0 || cb.Cardinality < 1 {
		return nil, corruptf("column %q has %d rows, cardinality %d", cb.Name, cb.RowCount, cb.Cardinality)
	}

	order, err := orderFromFlag(cb.Data[hlen-1])
	if err != nil {
		return nil, err
	}
	comp, err := lookupCompressor(cb.Compressor)
	if err != nil {
		return nil, err
	}

	return &dictView[T]{
		cb:    cb,
		sc:    sc,
		order: order,
		comp:  comp,
	}, nil
}

// --------------------------------------------------------------------

// dictView resolves rows through the dictionary. The body is decompressed
// on first access only.
type dictView[T Scalar] struct {
	cb    *ColumnBinary
	sc    ScalarCodec[T]
	order binary.ByteOrder
	comp  compress.Compressor

	once    sync.Once
	indexes []uint32
	values  []T
	err     error
}

func (v *dictView[T]) Name() string     { return v.cb.Name }
func (v *dictView[T]) Type() ColumnType { return v.cb.Type }
func (v *dictView[T]) Len() int         { return v.cb.RowCount }

func (v *dictView[T]) IsNull(row int) (bool, error) {
	if err := v.materialize(); err != nil {
		return false, err
	}
	return v.indexes[row] == 0, nil
}

func (v *dictView[T]) Get(row int) (T, bool, error) {
	var zero T
	if err := v.materialize(); err != nil {
		return zero, false, err
	}

	idx := v.indexes[row]
	if idx == 0 {
		return zero, false, nil
	}
	return v.values[idx], true, nil
}

func (v *dictView[T]) Load(dst Target[T]) error {
	if err := v.materialize(); err != nil {
		return err
	}

	for row, idx := range v.indexes {
		if idx == 0 {
			continue
		}
		if err := dst.Set(row, v.values[idx]); err != nil {
			return err
		}
	}
	return dst.SetValueCount(len(v.indexes))
}

func (v *dictView[T]) materialize() error {
	v.once.Do(func() {
		v.indexes, v.values, v.err = v.unpack()
	})
	return v.err
}

func (v *dictView[T]) unpack() ([]uint32, []T, error) {
	hlen := 2*v.sc.Width() + 1
	body, err := v.comp.Decompress(v.cb.Data[hlen:])
	if err != nil {
		return nil, nil, corruptf("column %q: %v", v.cb.Name, err)
	}

	numRows, card := v.cb.RowCount, v.cb.Cardinality
	iw := IndexWidth(card)
	ilen := numRows * iw
	if want := ilen + card*v.sc.Width(); len(body) != want {
		return nil, nil, corruptf("column %q body has %d bytes, expected %d", v.cb.Name, len(body), want)
	}

	indexes := make([]uint32, numRows)
	for i := range indexes {
		idx := getIndex(v.order, body[i*iw:], iw)
		if int(idx) >= card {
			return nil, nil, corruptf("column %q row %d references dictionary entry %d of %d", v.cb.Name, i, idx, card)
		}
		indexes[i] = idx
	}

	values := make([]T, card)
	for i := 1; i < card; i++ {
		values[i] = v.sc.Get(v.order, body[ilen+i*v.sc.Width():])
	}
	return indexes, values, nil
}
