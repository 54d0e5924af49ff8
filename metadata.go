package colblock

import (
	"encoding/binary"
)

// ColumnInfo describes a column binary stored in a block.
type ColumnInfo struct {
	Codec       string
	Compressor  string
	Name        string
	Type        ColumnType
	RowCount    int
	LogicalSize int
	Cardinality int

	// Offset and Length locate the payload within the data section.
	Offset, Length int
}

func appendColumnInfo(a *arena, cb *ColumnBinary, offset int) {
	a.AppendString(cb.Codec)
	a.AppendString(cb.Compressor)
	a.AppendString(cb.Name)
	a.AppendByte(byte(cb.Type))
	a.AppendUvarint(uint64(cb.RowCount))
	a.AppendUvarint(uint64(cb.LogicalSize))
	a.AppendUvarint(uint64(cb.Cardinality))
	a.AppendUvarint(uint64(offset))
	a.AppendUvarint(uint64(len(cb.Data)))
}

func columnInfoSize(cb *ColumnBinary, offset int) int {
	return uvarintLen(uint64(len(cb.Codec))) + len(cb.Codec) +
		uvarintLen(uint64(len(cb.Compressor))) + len(cb.Compressor) +
		uvarintLen(uint64(len(cb.Name))) + len(cb.Name) +
		1 +
		uvarintLen(uint64(cb.RowCount)) +
		uvarintLen(uint64(cb.LogicalSize)) +
		uvarintLen(uint64(cb.Cardinality)) +
		uvarintLen(uint64(offset)) +
		uvarintLen(uint64(len(cb.Data)))
}

// parseMetadata decodes the uncompressed metadata section of numGroups
// row groups and validates all payloads against the data section length.
func parseMetadata(b []byte, numGroups, dataLen int) ([][]ColumnInfo, error) {
	d := decbuf{b: b}
	groups := make([][]ColumnInfo, numGroups)
	for g := range groups {
		n := d.uvarint()
		if d.err != nil {
			break
		}
		if n > uint64(len(d.b)) {
			return nil, corruptf("row group %d declares %d columns", g, n)
		}

		cols := make([]ColumnInfo, 0, int(n))
		for i := 0; i < int(n) && d.err == nil; i++ {
			ci := ColumnInfo{
				Codec:       d.string(),
				Compressor:  d.string(),
				Name:        d.string(),
				Type:        ColumnType(d.byte()),
				RowCount:    d.int(),
				LogicalSize: d.int(),
				Cardinality: d.int(),
				Offset:      d.int(),
				Length:      d.int(),
			}
			if d.err == nil && (ci.Offset > dataLen || ci.Length > dataLen-ci.Offset) {
				return nil, corruptf("column %q of row group %d exceeds the data section", ci.Name, g)
			}
			cols = append(cols, ci)
		}
		groups[g] = cols
	}

	if d.err != nil {
		return nil, corruptf("metadata: %v", d.err)
	}
	if len(d.b) != 0 {
		return nil, corruptf("metadata has %d trailing bytes", len(d.b))
	}
	return groups, nil
}

// --------------------------------------------------------------------

// decbuf consumes a byte slice, the first failure is sticky.
type decbuf struct {
	b   []byte
	err error
}

var errTruncated = corruptf("truncated")

func (d *decbuf) uint32() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 4 {
		d.err = errTruncated
		return 0
	}
	v := binary.BigEndian.Uint32(d.b)
	d.b = d.b[4:]
	return v
}

// int32 reads a non-negative big-endian int32.
func (d *decbuf) int32() int {
	v := int32(d.uint32())
	if v < 0 && d.err == nil {
		d.err = corruptf("negative length %d", v)
		return 0
	}
	return int(v)
}

func (d *decbuf) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.b)
	if n <= 0 {
		d.err = errTruncated
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decbuf) int() int {
	v := d.uvarint()
	if v > 1<<31-1 && d.err == nil {
		d.err = corruptf("value %d out of range", v)
		return 0
	}
	return int(v)
}

func (d *decbuf) byte() byte {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 1 {
		d.err = errTruncated
		return 0
	}
	c := d.b[0]
	d.b = d.b[1:]
	return c
}

func (d *decbuf) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n > len(d.b) {
		d.err = errTruncated
		return nil
	}
	p := d.b[:n:n]
	d.b = d.b[n:]
	return p
}

func (d *decbuf) string() string {
	n := d.int()
	return string(d.bytes(n))
}
