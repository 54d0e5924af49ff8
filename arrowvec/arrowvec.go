// Package arrowvec loads colblock columns into Apache Arrow arrays.
package arrowvec

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/bsm/colblock"
)

// Vector is a colblock.Target backed by an arrow builder. Rows must be
// set in ascending order, skipped rows become nulls.
type Vector[T colblock.Scalar] struct {
	b      array.Builder
	append func(T)
	next   int
}

// New creates a vector. A nil allocator selects the Go allocator.
func New[T colblock.Scalar](mem memory.Allocator) *Vector[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	v := new(Vector[T])
	var zero T
	switch any(zero).(type) {
	case int8:
		b := array.NewInt8Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(int8(x)) }
	case int16:
		b := array.NewInt16Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(int16(x)) }
	case int32:
		b := array.NewInt32Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(int32(x)) }
	case int64:
		b := array.NewInt64Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(int64(x)) }
	case float32:
		b := array.NewFloat32Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(float32(x)) }
	case float64:
		b := array.NewFloat64Builder(mem)
		v.b, v.append = b, func(x T) { b.Append(float64(x)) }
	}
	return v
}

// Set implements colblock.Target.
func (v *Vector[T]) Set(row int, x T) error {
	if row < v.next {
		return fmt.Errorf("arrowvec: row %d set out of order, next is %d", row, v.next)
	}
	if n := row - v.next; n > 0 {
		v.b.AppendNulls(n)
	}
	v.append(x)
	v.next = row + 1
	return nil
}

// SetValueCount implements colblock.Target.
func (v *Vector[T]) SetValueCount(n int) error {
	if n < v.next {
		return fmt.Errorf("arrowvec: value count %d below %d set rows", n, v.next)
	}
	if pad := n - v.next; pad > 0 {
		v.b.AppendNulls(pad)
	}
	v.next = n
	return nil
}

// Len returns the number of rows.
func (v *Vector[T]) Len() int { return v.next }

// NewArray returns the built array and resets the vector. The array
// must be released by the caller.
func (v *Vector[T]) NewArray() arrow.Array {
	v.next = 0
	return v.b.NewArray()
}

// Release releases the builder.
func (v *Vector[T]) Release() { v.b.Release() }

// --------------------------------------------------------------------

// DataType returns the arrow type of a column type.
func DataType(t colblock.ColumnType) (arrow.DataType, error) {
	switch t {
	case colblock.Int8Type:
		return arrow.PrimitiveTypes.Int8, nil
	case colblock.Int16Type:
		return arrow.PrimitiveTypes.Int16, nil
	case colblock.Int32Type:
		return arrow.PrimitiveTypes.Int32, nil
	case colblock.Int64Type:
		return arrow.PrimitiveTypes.Int64, nil
	case colblock.Float32Type:
		return arrow.PrimitiveTypes.Float32, nil
	case colblock.Float64Type:
		return arrow.PrimitiveTypes.Float64, nil
	}
	return nil, fmt.Errorf("%w: no arrow type for %s", colblock.ErrTypeMismatch, t)
}

// Load builds an array from a column view.
func Load[T colblock.Scalar](mem memory.Allocator, view colblock.ColumnView) (arrow.Array, error) {
	vec := New[T](mem)
	defer vec.Release()

	if err := colblock.Load[T](view, vec); err != nil {
		return nil, err
	}
	return vec.NewArray(), nil
}

// NewRecord reads all columns of row group g into a record, with one
// nullable field per column. The record must be released by the caller.
func NewRecord(mem memory.Allocator, r *colblock.BlockReader, g int) (arrow.Record, error) {
	infos, err := r.Columns(g)
	if err != nil {
		return nil, err
	}
	numRows, err := r.RowCount(g)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, 0, len(infos))
	cols := make([]arrow.Array, 0, len(infos))
	defer func() {
		for _, col := range cols {
			col.Release()
		}
	}()

	for _, info := range infos {
		dt, err := DataType(info.Type)
		if err != nil {
			return nil, err
		}
		view, err := r.Column(g, info.Name)
		if err != nil {
			return nil, err
		}
		col, err := loadAny(mem, view)
		if err != nil {
			return nil, fmt.Errorf("arrowvec: column %q: %w", info.Name, err)
		}
		if col.Len() != numRows {
			col.Release()
			return nil, fmt.Errorf("arrowvec: column %q has %d rows, row group has %d", info.Name, col.Len(), numRows)
		}

		fields = append(fields, arrow.Field{Name: info.Name, Type: dt, Nullable: true})
		cols = append(cols, col)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, cols, int64(numRows)), nil
}

func loadAny(mem memory.Allocator, view colblock.ColumnView) (arrow.Array, error) {
	switch view.Type() {
	case colblock.Int8Type:
		return Load[int8](mem, view)
	case colblock.Int16Type:
		return Load[int16](mem, view)
	case colblock.Int32Type:
		return Load[int32](mem, view)
	case colblock.Int64Type:
		return Load[int64](mem, view)
	case colblock.Float32Type:
		return Load[float32](mem, view)
	case colblock.Float64Type:
		return Load[float64](mem, view)
	}
	return nil, fmt.Errorf("%w: unsupported type %s", colblock.ErrTypeMismatch, view.Type())
}
