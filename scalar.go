package colblock

import (
	"encoding/binary"
	"math"
)

// Scalar is the set of supported column value types.
type Scalar interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

func typeOf[T Scalar]() ColumnType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8Type
	case int16:
		return Int16Type
	case int32:
		return Int32Type
	case int64:
		return Int64Type
	case float32:
		return Float32Type
	case float64:
		return Float64Type
	}
	return UnknownType
}

// scalarKey identifies distinct values. Floats are compared by their
// bits so signed zeros stay apart, all NaNs share one key.
func scalarKey[T Scalar](v T) uint64 {
	switch x := any(v).(type) {
	case float32:
		if x != x {
			return 0x7fc00000
		}
		return uint64(math.Float32bits(x))
	case float64:
		if x != x {
			return 0x7ff8000000000001
		}
		return math.Float64bits(x)
	}
	return uint64(int64(v))
}

// ScalarCodec reads and writes fixed-width scalars. Accessing a buffer
// which is too short panics.
type ScalarCodec[T Scalar] struct {
	width int
	put   func(binary.ByteOrder, []byte, T)
	get   func(binary.ByteOrder, []byte) T
}

// NewScalarCodec returns the codec for T.
func NewScalarCodec[T Scalar]() ScalarCodec[T] {
	c := ScalarCodec[T]{width: typeOf[T]().Width()}

	switch typeOf[T]() {
	case Int8Type:
		c.put = func(_ binary.ByteOrder, b []byte, v T) { b[0] = byte(int8(v)) }
		c.get = func(_ binary.ByteOrder, b []byte) T { return T(int8(b[0])) }
	case Int16Type:
		c.put = func(o binary.ByteOrder, b []byte, v T) { o.PutUint16(b, uint16(int16(v))) }
		c.get = func(o binary.ByteOrder, b []byte) T { return T(int16(o.Uint16(b))) }
	case Int32Type:
		c.put = func(o binary.ByteOrder, b []byte, v T) { o.PutUint32(b, uint32(int32(v))) }
		c.get = func(o binary.ByteOrder, b []byte) T { return T(int32(o.Uint32(b))) }
	case Int64Type:
		c.put = func(o binary.ByteOrder, b []byte, v T) { o.PutUint64(b, uint64(int64(v))) }
		c.get = func(o binary.ByteOrder, b []byte) T { return T(int64(o.Uint64(b))) }
	case Float32Type:
		c.put = func(o binary.ByteOrder, b []byte, v T) { o.PutUint32(b, math.Float32bits(float32(v))) }
		c.get = func(o binary.ByteOrder, b []byte) T { return T(math.Float32frombits(o.Uint32(b))) }
	case Float64Type:
		c.put = func(o binary.ByteOrder, b []byte, v T) { o.PutUint64(b, math.Float64bits(float64(v))) }
		c.get = func(o binary.ByteOrder, b []byte) T { return T(math.Float64frombits(o.Uint64(b))) }
	}
	return c
}

// Width returns the encoded size of a scalar in bytes.
func (c ScalarCodec[T]) Width() int { return c.width }

// Put writes v to the start of b.
func (c ScalarCodec[T]) Put(order binary.ByteOrder, b []byte, v T) { c.put(order, b, v) }

// Get reads a scalar from the start of b.
func (c ScalarCodec[T]) Get(order binary.ByteOrder, b []byte) T { return c.get(order, b) }

// --------------------------------------------------------------------

// IndexWidth returns the narrowest index width in bytes (1, 2 or 4) able
// to address a dictionary of n entries, including the null sentinel.
func IndexWidth(n int) int {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

func putIndex(order binary.ByteOrder, b []byte, width int, v uint32) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	default:
		order.PutUint32(b, v)
	}
}

func getIndex(order binary.ByteOrder, b []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(order.Uint16(b))
	default:
		return order.Uint32(b)
	}
}
