package colblock

// Column is a named, typed column of cells to encode.
type Column interface {
	// Name returns the column name.
	Name() string
	// Type returns the scalar type.
	Type() ColumnType
	// Len returns the number of rows.
	Len() int
}

// Cells is a nullable column of scalars.
type Cells[T Scalar] struct {
	name   string
	values []T
	valid  []bool
}

// NewCells creates an empty column.
func NewCells[T Scalar](name string) *Cells[T] {
	return &Cells[T]{name: name}
}

// Name implements Column.
func (c *Cells[T]) Name() string { return c.name }

// Type implements Column.
func (c *Cells[T]) Type() ColumnType { return typeOf[T]() }

// Len implements Column.
func (c *Cells[T]) Len() int { return len(c.values) }

// Append appends a value.
func (c *Cells[T]) Append(v T) {
	c.values = append(c.values, v)
	c.valid = append(c.valid, true)
}

// AppendNull appends a null.
func (c *Cells[T]) AppendNull() {
	var zero T
	c.values = append(c.values, zero)
	c.valid = append(c.valid, false)
}

// Get returns the value at row and true, or false if the row is null
// or out of range.
func (c *Cells[T]) Get(row int) (T, bool) {
	if row < 0 || row >= len(c.values) || !c.valid[row] {
		var zero T
		return zero, false
	}
	return c.values[row], true
}

// --------------------------------------------------------------------

// ColumnBinary is the encoded form of one column of one row group.
// It must not be modified once created.
type ColumnBinary struct {
	// Codec is the identifier of the codec which produced Data.
	Codec string
	// Compressor is the short name of the compressor used for the body.
	Compressor string
	// Name is the column name.
	Name string
	// Type is the scalar type.
	Type ColumnType
	// RowCount is the number of rows, including nulls.
	RowCount int
	// LogicalSize estimates the decoded size in bytes.
	LogicalSize int
	// Cardinality is the dictionary size, including the null sentinel.
	Cardinality int
	// Data is the encoded payload.
	Data []byte
}

// Size returns the binary length of the payload.
func (b *ColumnBinary) Size() int { return len(b.Data) }

// --------------------------------------------------------------------

// Analysis summarizes a column ahead of encoding.
type Analysis struct {
	Type      ColumnType
	RowCount  int
	NullCount int
	Distinct  int // distinct non-null values
}

// Analyze scans a column.
func Analyze(col Column) (*Analysis, error) {
	switch c := col.(type) {
	case *Cells[int8]:
		return analyzeCells(c), nil
	case *Cells[int16]:
		return analyzeCells(c), nil
	case *Cells[int32]:
		return analyzeCells(c), nil
	case *Cells[int64]:
		return analyzeCells(c), nil
	case *Cells[float32]:
		return analyzeCells(c), nil
	case *Cells[float64]:
		return analyzeCells(c), nil
	}
	return nil, typeMismatch(col)
}

func analyzeCells[T Scalar](c *Cells[T]) *Analysis {
	a := &Analysis{Type: c.Type(), RowCount: c.Len()}
	seen := make(map[uint64]struct{})
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Get(i)
		if !ok {
			a.NullCount++
			continue
		}
		seen[scalarKey(v)] = struct{}{}
	}
	a.Distinct = len(seen)
	return a
}
