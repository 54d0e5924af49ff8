package colblock

import (
	"encoding/binary"
	"sort"
)

// IndexType tags the kind of a range index entry.
type IndexType byte

// Supported index types.
const (
	IndexUnsupported IndexType = iota
	IndexRange
)

// Index is a mergeable per-column block summary.
type Index interface {
	// Type returns the index type.
	Type() IndexType
	// Merge widens the index by other. It returns false if other cannot
	// be merged, in which case the index must not be used for skipping.
	Merge(other Index) bool
	// AppendBinary appends the serialized payload to dst.
	AppendBinary(dst []byte) []byte

	clone() Index
}

// Unsupported is the index of columns which cannot be summarized.
var Unsupported Index = unsupportedIndex{}

type unsupportedIndex struct{}

func (unsupportedIndex) Type() IndexType                { return IndexUnsupported }
func (unsupportedIndex) Merge(Index) bool               { return false }
func (unsupportedIndex) AppendBinary(dst []byte) []byte { return dst }
func (unsupportedIndex) clone() Index                   { return Unsupported }

// Range is a closed [Min, Max] interval of a typed column.
type Range[T Scalar] struct {
	Min, Max T
}

// NewRange returns a range.
func NewRange[T Scalar](min, max T) *Range[T] {
	return &Range[T]{Min: min, Max: max}
}

// Type implements Index.
func (r *Range[T]) Type() IndexType { return IndexRange }

// ColumnType returns the scalar type of the range.
func (r *Range[T]) ColumnType() ColumnType { return typeOf[T]() }

// Merge implements Index.
func (r *Range[T]) Merge(other Index) bool {
	o, ok := other.(*Range[T])
	if !ok {
		return false
	}

	if o.Min < r.Min {
		r.Min = o.Min
	}
	if o.Max > r.Max {
		r.Max = o.Max
	}
	return true
}

// AppendBinary implements Index.
func (r *Range[T]) AppendBinary(dst []byte) []byte {
	sc := NewScalarCodec[T]()
	w := sc.Width()

	dst = append(dst, byte(typeOf[T]()))
	n := len(dst)
	dst = append(dst, make([]byte, 2*w)...)
	sc.Put(binary.BigEndian, dst[n:], r.Min)
	sc.Put(binary.BigEndian, dst[n+w:], r.Max)
	return dst
}

func (r *Range[T]) clone() Index {
	c := *r
	return &c
}

// parseRange reads a big-endian [min][max] pair of type typ from the
// start of b and returns the number of bytes consumed.
func parseRange(typ ColumnType, b []byte) (Index, int, error) {
	switch typ {
	case Int8Type:
		return parseRangeOf[int8](b)
	case Int16Type:
		return parseRangeOf[int16](b)
	case Int32Type:
		return parseRangeOf[int32](b)
	case Int64Type:
		return parseRangeOf[int64](b)
	case Float32Type:
		return parseRangeOf[float32](b)
	case Float64Type:
		return parseRangeOf[float64](b)
	}
	return nil, 0, corruptf("bad range type %s", typ)
}

func parseRangeOf[T Scalar](b []byte) (Index, int, error) {
	sc := NewScalarCodec[T]()
	n := 2 * sc.Width()
	if len(b) < n {
		return nil, 0, corruptf("range truncated")
	}
	return NewRange(sc.Get(binary.BigEndian, b), sc.Get(binary.BigEndian, b[sc.Width():])), n, nil
}

func readRange(typ ColumnType, b []byte) (Index, error) {
	idx, _, err := parseRange(typ, b)
	return idx, err
}

func readConstRange(typ ColumnType, b []byte) (Index, error) {
	w := typ.Width()
	if w == 0 || len(b) < w {
		return nil, corruptf("constant range truncated")
	}

	// duplicate the value into a [min][max] pair
	pair := make([]byte, 2*w)
	copy(pair, b[:w])
	copy(pair[w:], b[:w])
	return readRange(typ, pair)
}

// --------------------------------------------------------------------

// Filter is a value range predicate used to skip blocks.
type Filter struct {
	typ      ColumnType
	disjoint func(Index) bool
}

// NewRangeFilter creates a filter matching values within [min, max].
func NewRangeFilter[T Scalar](min, max T) Filter {
	return Filter{
		typ: typeOf[T](),
		disjoint: func(idx Index) bool {
			r, ok := idx.(*Range[T])
			if !ok {
				return false
			}
			return r.Max < min || r.Min > max
		},
	}
}

// ColumnType returns the scalar type the filter applies to.
func (f Filter) ColumnType() ColumnType { return f.typ }

// --------------------------------------------------------------------

// IndexNode holds the merged index of a single column.
type IndexNode struct {
	idx      Index
	poisoned bool
}

// Merge merges idx into the node. Once a merge fails, the node is
// poisoned and stays unusable for skipping.
func (n *IndexNode) Merge(idx Index) {
	switch {
	case n.poisoned:
	case idx == nil || idx.Type() == IndexUnsupported:
		n.poison()
	case n.idx == nil:
		n.idx = idx.clone()
	case !n.idx.Merge(idx):
		n.poison()
	}
}

// Index returns the merged index, Unsupported if poisoned or nil if
// nothing was merged yet.
func (n *IndexNode) Index() Index { return n.idx }

// Poisoned reports whether the node was poisoned.
func (n *IndexNode) Poisoned() bool { return n.poisoned }

// CanSkip returns true if the node proves no value matches f.
func (n *IndexNode) CanSkip(f Filter) bool {
	if n.poisoned || n.idx == nil || f.disjoint == nil {
		return false
	}
	return f.disjoint(n.idx)
}

func (n *IndexNode) poison() {
	n.poisoned = true
	n.idx = Unsupported
}

// --------------------------------------------------------------------

// IndexTree holds the index nodes of a block, keyed by column name.
//
// Binary layout:
//
//	+-----------------------+----------+-------+----------+
//	| node count (uvarint)  | node 1   |  ...  | node n   |
//	+-----------------------+----------+-------+----------+
//
//	Node:
//	+------------------------+--------+-----------+-------------------------------------+
//	| name length (uvarint)  |  name  | tag (1)   | range: type (1) | min (BE) | max (BE) |
//	+------------------------+--------+-----------+-------------------------------------+
//
// Nodes are written in name order, the range part is present for
// IndexRange tags only.
type IndexTree struct {
	nodes map[string]*IndexNode
}

// NewIndexTree creates an empty tree.
func NewIndexTree() *IndexTree {
	return &IndexTree{nodes: make(map[string]*IndexNode)}
}

// Node returns the node of a column, creating it if necessary.
func (t *IndexTree) Node(name string) *IndexNode {
	if t.nodes == nil {
		t.nodes = make(map[string]*IndexNode)
	}

	n, ok := t.nodes[name]
	if !ok {
		n = new(IndexNode)
		t.nodes[name] = n
	}
	return n
}

// Lookup returns the node of a column.
func (t *IndexTree) Lookup(name string) (*IndexNode, bool) {
	n, ok := t.nodes[name]
	return n, ok
}

// CanSkip returns true if the named column's node proves that no value
// matches f. Unknown columns cannot be skipped.
func (t *IndexTree) CanSkip(name string, f Filter) bool {
	if n, ok := t.nodes[name]; ok {
		return n.CanSkip(f)
	}
	return false
}

// Len returns the number of nodes.
func (t *IndexTree) Len() int { return len(t.nodes) }

// Names returns the sorted column names.
func (t *IndexTree) Names() []string {
	names := make([]string, 0, len(t.nodes))
	for name := range t.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes all nodes.
func (t *IndexTree) Reset() {
	for name := range t.nodes {
		delete(t.nodes, name)
	}
}

// BinarySize returns the length of the serialized tree.
func (t *IndexTree) BinarySize() int {
	sz := uvarintLen(uint64(len(t.nodes)))
	for name, n := range t.nodes {
		sz += n.binarySize(name)
	}
	return sz
}

// binarySize returns the serialized length of the node stored as name.
func (n *IndexNode) binarySize(name string) int {
	sz := uvarintLen(uint64(len(name))) + len(name) + 1
	if r, ok := n.idx.(interface{ ColumnType() ColumnType }); ok && !n.poisoned {
		sz += 1 + 2*r.ColumnType().Width()
	}
	return sz
}

// merged returns a copy of the node with idx merged into it.
func (n *IndexNode) merged(idx Index) *IndexNode {
	m := &IndexNode{poisoned: n.poisoned}
	if n.idx != nil {
		m.idx = n.idx.clone()
	}
	m.Merge(idx)
	return m
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *IndexTree) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(make([]byte, 0, t.BinarySize())), nil
}

// AppendBinary appends the serialized tree to dst.
func (t *IndexTree) AppendBinary(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(t.nodes)))
	for _, name := range t.Names() {
		n := t.nodes[name]

		dst = binary.AppendUvarint(dst, uint64(len(name)))
		dst = append(dst, name...)
		if n.poisoned || n.idx == nil {
			dst = append(dst, byte(IndexUnsupported))
			continue
		}
		dst = append(dst, byte(n.idx.Type()))
		dst = n.idx.AppendBinary(dst)
	}
	return dst
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *IndexTree) UnmarshalBinary(b []byte) error {
	count, n := binary.Uvarint(b)
	if n <= 0 {
		return corruptf("index tree truncated")
	}
	b = b[n:]

	nodes := make(map[string]*IndexNode, int(min(count, 1024)))
	for i := uint64(0); i < count; i++ {
		nlen, n := binary.Uvarint(b)
		if n <= 0 || nlen >= uint64(len(b)-n) {
			return corruptf("index tree node %d truncated", i)
		}
		name := string(b[n : n+int(nlen)])
		b = b[n+int(nlen):]

		tag := IndexType(b[0])
		b = b[1:]

		node := new(IndexNode)
		switch tag {
		case IndexUnsupported:
			node.poison()
		case IndexRange:
			if len(b) == 0 {
				return corruptf("index tree node %q truncated", name)
			}
			idx, sz, err := parseRange(ColumnType(b[0]), b[1:])
			if err != nil {
				return err
			}
			node.idx = idx
			b = b[1+sz:]
		default:
			return corruptf("index tree node %q has bad tag %d", name, tag)
		}
		nodes[name] = node
	}
	if len(b) != 0 {
		return corruptf("index tree has %d trailing bytes", len(b))
	}

	t.nodes = nodes
	return nil
}

// UnmarshalIndexTree parses a serialized tree.
func UnmarshalIndexTree(b []byte) (*IndexTree, error) {
	t := new(IndexTree)
	if err := t.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return t, nil
}

func uvarintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}
