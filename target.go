package colblock

import (
	"fmt"
	"math"
)

// Target is a vector receiving decoded column values in bulk. Rows which
// are never Set are nulls.
type Target[T Scalar] interface {
	// Set stores v at row.
	Set(row int, v T) error
	// SetValueCount declares the total number of rows, including
	// trailing nulls.
	SetValueCount(n int) error
}

// Load copies all values of a view into dst. Non-null values are set,
// nulls are left unset, finally the row count is declared.
func Load[T Scalar](v ColumnView, dst Target[T]) error {
	tv, err := AsView[T](v)
	if err != nil {
		return err
	}
	return tv.Load(dst)
}

// --------------------------------------------------------------------

// Narrow converts v to D, failing with ErrNarrowing if the value cannot
// be represented exactly. Float to float conversions only check the
// magnitude, integers must survive a round trip.
func Narrow[D, S Scalar](v S) (D, error) {
	d := D(v)

	switch typeOf[D]() {
	case Float32Type:
		if f := float64(v); !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return d, narrowingErr[D](v)
		}
		if isFloat[S]() {
			return d, nil
		}
	case Float64Type:
		if isFloat[S]() {
			return d, nil
		}
	}

	if S(d) != v {
		return d, narrowingErr[D](v)
	}
	if isFloat[S]() && !isFloat[D]() && (float64(v) < minOf[D]() || float64(v) > maxOf[D]()) {
		return d, narrowingErr[D](v)
	}
	return d, nil
}

// Convert returns a target accepting S values and forwarding them to dst
// as D, using Narrow.
func Convert[S, D Scalar](dst Target[D]) Target[S] {
	return &convertTarget[S, D]{dst: dst}
}

type convertTarget[S, D Scalar] struct {
	dst Target[D]
}

func (t *convertTarget[S, D]) Set(row int, v S) error {
	d, err := Narrow[D](v)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return t.dst.Set(row, d)
}

func (t *convertTarget[S, D]) SetValueCount(n int) error {
	return t.dst.SetValueCount(n)
}

func narrowingErr[D, S Scalar](v S) error {
	return fmt.Errorf("%w: %v does not fit %s", ErrNarrowing, v, typeOf[D]())
}

func isFloat[T Scalar]() bool {
	t := typeOf[T]()
	return t == Float32Type || t == Float64Type
}

func minOf[T Scalar]() float64 {
	switch typeOf[T]() {
	case Int8Type:
		return math.MinInt8
	case Int16Type:
		return math.MinInt16
	case Int32Type:
		return math.MinInt32
	case Int64Type:
		return math.MinInt64
	case Float32Type:
		return -math.MaxFloat32
	}
	return -math.MaxFloat64
}

func maxOf[T Scalar]() float64 {
	switch typeOf[T]() {
	case Int8Type:
		return math.MaxInt8
	case Int16Type:
		return math.MaxInt16
	case Int32Type:
		return math.MaxInt32
	case Int64Type:
		return math.MaxInt64
	case Float32Type:
		return math.MaxFloat32
	}
	return math.MaxFloat64
}

// --------------------------------------------------------------------

// SliceTarget collects values into a plain slice with a validity mask.
type SliceTarget[T Scalar] struct {
	Values []T
	Valid  []bool
}

// Set implements Target.
func (t *SliceTarget[T]) Set(row int, v T) error {
	t.grow(row + 1)
	t.Values[row] = v
	t.Valid[row] = true
	return nil
}

// SetValueCount implements Target.
func (t *SliceTarget[T]) SetValueCount(n int) error {
	if n < len(t.Values) {
		return fmt.Errorf("colblock: value count %d below %d set rows", n, len(t.Values))
	}
	t.grow(n)
	return nil
}

func (t *SliceTarget[T]) grow(n int) {
	for len(t.Values) < n {
		var zero T
		t.Values = append(t.Values, zero)
		t.Valid = append(t.Valid, false)
	}
}
