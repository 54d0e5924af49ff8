package colblock

import (
	"encoding/binary"
)

// constCodec stores a single-valued column without nulls.
//
// Payload:
//
//	+--------------------+-------------------------+
//	| value (BE, width)  | row count (4 bytes, BE) |
//	+--------------------+-------------------------+
type constCodec struct{}

func (constCodec) Name() string { return ConstantCodec }

func (constCodec) Encode(col Column, _ *CodecOptions) (*ColumnBinary, error) {
	switch c := col.(type) {
	case *Cells[int8]:
		return encodeConstCells(c)
	case *Cells[int16]:
		return encodeConstCells(c)
	case *Cells[int32]:
		return encodeConstCells(c)
	case *Cells[int64]:
		return encodeConstCells(c)
	case *Cells[float32]:
		return encodeConstCells(c)
	case *Cells[float64]:
		return encodeConstCells(c)
	}
	return nil, typeMismatch(col)
}

func (constCodec) Decode(cb *ColumnBinary) (ColumnView, error) {
	switch cb.Type {
	case Int8Type:
		return decodeConst[int8](cb)
	case Int16Type:
		return decodeConst[int16](cb)
	case Int32Type:
		return decodeConst[int32](cb)
	case Int64Type:
		return decodeConst[int64](cb)
	case Float32Type:
		return decodeConst[float32](cb)
	case Float64Type:
		return decodeConst[float64](cb)
	}
	return nil, corruptf("column %q has invalid type %s", cb.Name, cb.Type)
}

func (constCodec) EstimateSize(a *Analysis) int {
	return a.Type.Width() + 4
}

func (constCodec) SetRangeIndex(tree *IndexTree, cb *ColumnBinary) error {
	if len(cb.Data) != cb.Type.Width()+4 || !cb.Type.isValid() {
		return corruptf("column %q has bad constant payload", cb.Name)
	}

	// a constant is a range with min == max
	idx, err := readConstRange(cb.Type, cb.Data)
	if err != nil {
		return err
	}
	tree.Node(cb.Name).Merge(idx)
	return nil
}

func encodeConstCells[T Scalar](c *Cells[T]) (*ColumnBinary, error) {
	if c.Len() == 0 {
		return nil, errNotConstant
	}

	first, ok := c.Get(0)
	if !ok {
		return nil, errNotConstant
	}
	for i := 1; i < c.Len(); i++ {
		if v, ok := c.Get(i); !ok || scalarKey(v) != scalarKey(first) {
			return nil, errNotConstant
		}
	}
	return encodeConst(c.Name(), first, c.Len()), nil
}

func encodeConst[T Scalar](name string, v T, numRows int) *ColumnBinary {
	sc := NewScalarCodec[T]()
	data := make([]byte, sc.Width()+4)
	sc.Put(binary.BigEndian, data, v)
	binary.BigEndian.PutUint32(data[sc.Width():], uint32(numRows))

	return &ColumnBinary{
		Codec:       ConstantCodec,
		Compressor:  "none",
		Name:        name,
		Type:        typeOf[T](),
		RowCount:    numRows,
		LogicalSize: sc.Width() * numRows,
		Cardinality: 2,
		Data:        data,
	}
}

func decodeConst[T Scalar](cb *ColumnBinary) (View[T], error) {
	sc := NewScalarCodec[T]()
	if len(cb.Data) != sc.Width()+4 {
		return nil, corruptf("column %q constant payload has %d bytes", cb.Name, len(cb.Data))
	}

	numRows := int(binary.BigEndian.Uint32(cb.Data[sc.Width():]))
	if numRows != cb.RowCount {
		return nil, corruptf("column %q has %d rows, payload declares %d", cb.Name, cb.RowCount, numRows)
	}

	return &constView[T]{
		name:  cb.Name,
		value: sc.Get(binary.BigEndian, cb.Data),
		rows:  numRows,
	}, nil
}

// --------------------------------------------------------------------

type constView[T Scalar] struct {
	name  string
	value T
	rows  int
}

func (v *constView[T]) Name() string     { return v.name }
func (v *constView[T]) Type() ColumnType { return typeOf[T]() }
func (v *constView[T]) Len() int         { return v.rows }

func (v *constView[T]) IsNull(row int) (bool, error) {
	v.check(row)
	return false, nil
}

func (v *constView[T]) Get(row int) (T, bool, error) {
	v.check(row)
	return v.value, true, nil
}

func (v *constView[T]) Load(dst Target[T]) error {
	for row := 0; row < v.rows; row++ {
		if err := dst.Set(row, v.value); err != nil {
			return err
		}
	}
	return dst.SetValueCount(v.rows)
}

func (v *constView[T]) check(row int) {
	if row < 0 || row >= v.rows {
		panic("colblock: row out of range")
	}
}
