package colblock

import (
	"fmt"

	"github.com/bsm/colblock/compress"
)

// BlockReader reads a block. It is immutable once opened and safe for
// concurrent use.
type BlockReader struct {
	comp      compress.Compressor
	index     *IndexTree
	rowCounts []int
	groups    [][]ColumnInfo
	data      []byte
}

// OpenBlock opens a block. Only the header and the metadata section are
// decoded, column payloads are sliced from b on access, so b must not be
// modified while the reader is in use.
func OpenBlock(b []byte) (*BlockReader, error) {
	d := decbuf{b: b}

	name := string(d.bytes(d.int32()))
	indexBytes := d.bytes(d.int32())
	numGroups := d.int32()
	if d.err == nil && numGroups > len(d.b)/4 {
		return nil, corruptf("block declares %d row groups", numGroups)
	}
	rowCounts := make([]int, 0, numGroups)
	for i := 0; i < numGroups && d.err == nil; i++ {
		rowCounts = append(rowCounts, d.int32())
	}
	metaBytes := d.bytes(d.int32())
	if d.err != nil {
		return nil, corruptf("block header: %v", d.err)
	}
	data := d.b

	comp, err := lookupCompressor(name)
	if err != nil {
		return nil, err
	}
	index, err := UnmarshalIndexTree(indexBytes)
	if err != nil {
		return nil, err
	}

	meta, err := comp.Decompress(metaBytes)
	if err != nil {
		return nil, corruptf("metadata: %v", err)
	}
	groups, err := parseMetadata(meta, numGroups, len(data))
	if err != nil {
		return nil, err
	}

	return &BlockReader{
		comp:      comp,
		index:     index,
		rowCounts: rowCounts,
		groups:    groups,
		data:      data,
	}, nil
}

// Compressor returns the short name of the metadata compressor.
func (r *BlockReader) Compressor() string { return r.comp.Name() }

// Index returns the range index of the block.
func (r *BlockReader) Index() *IndexTree { return r.index }

// CanSkip returns true if the range index proves that no value of the
// named column matches f.
func (r *BlockReader) CanSkip(name string, f Filter) bool { return r.index.CanSkip(name, f) }

// NumRowGroups returns the number of row groups.
func (r *BlockReader) NumRowGroups() int { return len(r.rowCounts) }

// RowCount returns the number of rows in row group g.
func (r *BlockReader) RowCount(g int) (int, error) {
	if err := r.checkGroup(g); err != nil {
		return 0, err
	}
	return r.rowCounts[g], nil
}

// Columns returns the column descriptors of row group g. The result must
// not be modified.
func (r *BlockReader) Columns(g int) ([]ColumnInfo, error) {
	if err := r.checkGroup(g); err != nil {
		return nil, err
	}
	return r.groups[g], nil
}

// ColumnBinary returns the named column binary of row group g. The
// payload is a sub-slice of the block.
func (r *BlockReader) ColumnBinary(g int, name string) (*ColumnBinary, error) {
	if err := r.checkGroup(g); err != nil {
		return nil, err
	}

	for _, ci := range r.groups[g] {
		if ci.Name != name {
			continue
		}

		end := ci.Offset + ci.Length
		return &ColumnBinary{
			Codec:       ci.Codec,
			Compressor:  ci.Compressor,
			Name:        ci.Name,
			Type:        ci.Type,
			RowCount:    ci.RowCount,
			LogicalSize: ci.LogicalSize,
			Cardinality: ci.Cardinality,
			Data:        r.data[ci.Offset:end:end],
		}, nil
	}
	return nil, fmt.Errorf("%w: %q in row group %d", ErrColumnNotFound, name, g)
}

// Column returns a lazy view of the named column of row group g. The
// payload is not decompressed until the first value access.
func (r *BlockReader) Column(g int, name string) (ColumnView, error) {
	cb, err := r.ColumnBinary(g, name)
	if err != nil {
		return nil, err
	}
	return Decode(cb)
}

func (r *BlockReader) checkGroup(g int) error {
	if g < 0 || g >= len(r.rowCounts) {
		return fmt.Errorf("%w: %d of %d", ErrRowGroupRange, g, len(r.rowCounts))
	}
	return nil
}
