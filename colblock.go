package colblock

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBlockOverflow is returned by BlockWriter.Append when the block has
// reached its size budget. The row group was recorded, the caller must
// create the block before appending more row groups.
var ErrBlockOverflow = errors.New("colblock: block overflow")

// ErrBlockTooLarge is returned when the accumulated content does not fit
// into a fixed size block.
var ErrBlockTooLarge = errors.New("colblock: block content exceeds fixed block size")

// ErrCorrupt is returned when a column binary or a block cannot be decoded.
var ErrCorrupt = errors.New("colblock: corrupt data")

// ErrUnknownCodec is returned when a codec identifier is not registered.
var ErrUnknownCodec = errors.New("colblock: unknown codec")

// ErrTypeMismatch is returned when a column is accessed with the wrong
// scalar type.
var ErrTypeMismatch = errors.New("colblock: type mismatch")

// ErrNarrowing is returned when a value does not fit into a narrower
// scalar type.
var ErrNarrowing = errors.New("colblock: numeric narrowing out of range")

// ErrColumnNotFound is returned when a row group has no column of the
// requested name.
var ErrColumnNotFound = errors.New("colblock: column not found")

// ErrRowGroupRange is returned when a row group position is out of range.
var ErrRowGroupRange = errors.New("colblock: row group out of range")

var errNotConstant = errors.New("colblock: column is not constant")

func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------

// ColumnType is the scalar type tag of a column.
type ColumnType byte

// Supported column types.
const (
	UnknownType ColumnType = iota
	Int8Type
	Int16Type
	Int32Type
	Int64Type
	Float32Type
	Float64Type
)

func (t ColumnType) isValid() bool {
	return t > UnknownType && t <= Float64Type
}

func (t ColumnType) String() string {
	switch t {
	case Int8Type:
		return "int8"
	case Int16Type:
		return "int16"
	case Int32Type:
		return "int32"
	case Int64Type:
		return "int64"
	case Float32Type:
		return "float32"
	case Float64Type:
		return "float64"
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

// Width returns the encoded width of a single scalar in bytes.
func (t ColumnType) Width() int {
	switch t {
	case Int8Type:
		return 1
	case Int16Type:
		return 2
	case Int32Type, Float32Type:
		return 4
	case Int64Type, Float64Type:
		return 8
	}
	return 0
}

// --------------------------------------------------------------------

// ByteOrder selects the byte order of encoded column bodies.
type ByteOrder byte

// Supported byte orders. The zero value selects little endian.
const (
	DefaultOrder ByteOrder = iota
	LittleEndian
	BigEndian
)

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// flag returns the single byte stored in column binary headers:
// 0 for big, 1 for little endian.
func (o ByteOrder) flag() byte {
	if o == BigEndian {
		return 0
	}
	return 1
}

func orderFromFlag(b byte) (binary.ByteOrder, error) {
	switch b {
	case 0:
		return binary.BigEndian, nil
	case 1:
		return binary.LittleEndian, nil
	}
	return nil, corruptf("bad byte order flag %d", b)
}

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *ByteOrder) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "default":
		*o = DefaultOrder
	case "little":
		*o = LittleEndian
	case "big":
		*o = BigEndian
	default:
		return fmt.Errorf("colblock: invalid byte order %q", text)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (o ByteOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
