package colblock

import (
	"fmt"

	"github.com/bsm/colblock/compress"
	"go.uber.org/zap"
)

// BlockWriter accumulates row groups of column binaries into a block.
// It is not safe for concurrent use.
type BlockWriter struct {
	o       *WriterOptions
	comp    compress.Compressor
	log     *zap.Logger
	metrics *writerMetrics

	index     *IndexTree
	rowCounts []int
	meta      arena // uncompressed metadata
	data      arena // data section
	out       arena
}

// NewBlockWriter creates a writer.
func NewBlockWriter(o *WriterOptions) (*BlockWriter, error) {
	o = o.norm()

	comp, err := compress.Lookup(o.Compression)
	if err != nil {
		return nil, err
	}
	metrics, err := newWriterMetrics(o.Registerer)
	if err != nil {
		return nil, err
	}

	return &BlockWriter{
		o:       o,
		comp:    comp,
		log:     o.Logger.With(zap.String("compressor", comp.Name())),
		metrics: metrics,
		index:   NewIndexTree(),
	}, nil
}

// Append appends a row group. Nil binaries are skipped. It returns
// ErrBlockOverflow if the block size is reached, the row group is still
// retained and the block must be created before the next append.
func (w *BlockWriter) Append(rowCount int, binaries []*ColumnBinary) error {
	if rowCount < 0 {
		return fmt.Errorf("colblock: invalid row count %d", rowCount)
	}

	// collect ranges first, so a failure leaves the block untouched
	part, err := collectRanges(binaries)
	if err != nil {
		return err
	}
	numCols := 0
	for _, cb := range binaries {
		if cb != nil {
			numCols++
		}
	}
	for _, name := range part.Names() {
		node, _ := part.Lookup(name)
		w.index.Node(name).Merge(node.Index())
	}

	w.meta.AppendUvarint(uint64(numCols))
	for _, cb := range binaries {
		if cb == nil {
			continue
		}
		appendColumnInfo(&w.meta, cb, w.data.Len())
		w.data.Append(cb.Data)
	}
	w.rowCounts = append(w.rowCounts, rowCount)
	w.metrics.rowGroups.Inc()

	if sz := w.Size(); sz >= w.o.BlockSize {
		w.metrics.overflows.Inc()
		w.log.Debug("block overflow",
			zap.Int("size", sz),
			zap.Int("block_size", w.o.BlockSize),
			zap.Int("row_groups", len(w.rowCounts)),
		)
		return ErrBlockOverflow
	}
	return nil
}

// AppendColumns encodes columns of equal length with the configured
// codec options and appends them as a row group.
func (w *BlockWriter) AppendColumns(cols ...Column) error {
	if len(cols) == 0 {
		return nil
	}

	rowCount := cols[0].Len()
	binaries := make([]*ColumnBinary, 0, len(cols))
	for _, col := range cols {
		if n := col.Len(); n != rowCount {
			return fmt.Errorf("colblock: column %q has %d rows, expected %d", col.Name(), n, rowCount)
		}

		cb, err := Encode(col, &w.o.Codec)
		if err != nil {
			return err
		}
		binaries = append(binaries, cb)
	}
	return w.Append(rowCount, binaries)
}

// CanAppend predicts whether a row group of binaries can be appended
// without reaching the block size. Binaries which Append would reject
// cannot be appended.
func (w *BlockWriter) CanAppend(binaries []*ColumnBinary) bool {
	part, err := collectRanges(binaries)
	if err != nil {
		return false
	}

	indexSize := w.index.BinarySize()
	newNodes := 0
	for _, name := range part.Names() {
		node, _ := part.Lookup(name)
		if prev, ok := w.index.Lookup(name); ok {
			indexSize += prev.merged(node.Index()).binarySize(name) - prev.binarySize(name)
		} else {
			indexSize += new(IndexNode).merged(node.Index()).binarySize(name)
			newNodes++
		}
	}
	indexSize += uvarintLen(uint64(w.index.Len()+newNodes)) - uvarintLen(uint64(w.index.Len()))

	metaLen := w.meta.Len()
	dataLen := w.data.Len()
	numCols := 0
	for _, cb := range binaries {
		if cb == nil {
			continue
		}
		numCols++
		metaLen += columnInfoSize(cb, dataLen)
		dataLen += len(cb.Data)
	}
	metaLen += uvarintLen(uint64(numCols))

	return w.estimate(indexSize, len(w.rowCounts)+1, metaLen, dataLen) < w.o.BlockSize
}

// Size returns the estimated size of the block if created now. The
// estimate is an upper bound of the variable size.
func (w *BlockWriter) Size() int {
	return w.estimate(w.index.BinarySize(), len(w.rowCounts), w.meta.Len(), w.data.Len())
}

// NumRowGroups returns the number of appended row groups.
func (w *BlockWriter) NumRowGroups() int { return len(w.rowCounts) }

// Index returns the range index of the current block.
func (w *BlockWriter) Index() *IndexTree { return w.index }

// CreateFixed creates a block of exactly BlockSize bytes. It returns
// ErrBlockTooLarge if the content does not fit, in which case the state
// is kept and CreateVariable may be used instead.
func (w *BlockWriter) CreateFixed() ([]byte, error) {
	return w.Create(w.o.BlockSize)
}

// CreateVariable creates a block which is exactly as large as needed.
func (w *BlockWriter) CreateVariable() ([]byte, error) {
	return w.Create(-1)
}

// Create creates a block padded to size bytes, or a variable size block
// if size is negative. On success the returned slice is owned by the
// caller and the writer is reset.
func (w *BlockWriter) Create(size int) ([]byte, error) {
	meta, err := w.comp.Compress(w.meta.Bytes(), compress.KindBinary)
	if err != nil {
		return nil, err
	}

	name := w.comp.Name()
	indexSize := w.index.BinarySize()
	need := 4 + len(name) + 4 + indexSize + 4 + 4*len(w.rowCounts) + 4 + len(meta) + w.data.Len()
	if size < 0 {
		size = need
	} else if need > size {
		return nil, fmt.Errorf("%w: %d bytes required, %d available", ErrBlockTooLarge, need, size)
	}

	w.out.Grow(size)
	w.out.AppendUint32(uint32(len(name)))
	w.out.Append([]byte(name))
	w.out.AppendUint32(uint32(indexSize))
	w.out.buf = w.index.AppendBinary(w.out.buf)
	w.out.AppendUint32(uint32(len(w.rowCounts)))
	for _, n := range w.rowCounts {
		w.out.AppendUint32(uint32(n))
	}
	w.out.AppendUint32(uint32(len(meta)))
	w.out.Append(meta)
	w.out.Append(w.data.Bytes())
	w.out.Pad(size)

	block := w.out.Take()
	w.metrics.blocks.Inc()
	w.metrics.bytes.Add(float64(len(block)))
	w.log.Debug("block created",
		zap.Int("row_groups", len(w.rowCounts)),
		zap.Int("columns", w.index.Len()),
		zap.Int("bytes", len(block)),
		zap.Int("padding", size-need),
	)

	w.Reset()
	return block, nil
}

// Reset discards all accumulated state.
func (w *BlockWriter) Reset() {
	w.index.Reset()
	w.rowCounts = w.rowCounts[:0]
	w.meta.Reset()
	w.data.Reset()
}

// collectRanges merges the ranges of binaries into a fresh tree.
func collectRanges(binaries []*ColumnBinary) (*IndexTree, error) {
	part := NewIndexTree()
	for _, cb := range binaries {
		if cb == nil {
			continue
		}
		codec, err := LookupCodec(cb.Codec)
		if err != nil {
			return nil, err
		}
		if err := codec.SetRangeIndex(part, cb); err != nil {
			return nil, err
		}
	}
	return part, nil
}

func (w *BlockWriter) estimate(indexSize, numGroups, metaLen, dataLen int) int {
	return 4 + len(w.comp.Name()) + 4 + indexSize + 4 + 4*numGroups + 4 + metaBound(metaLen) + dataLen
}

// metaBound is the worst case compressed size of n metadata bytes
// across the built-in compressors.
func metaBound(n int) int {
	return n + n/6 + 64
}
