package colblock

import "encoding/binary"

// arena is an owned, growable byte buffer. Reset keeps the capacity for
// reuse, Take hands the contents over and detaches them from the arena.
type arena struct {
	buf []byte
}

func (a *arena) Len() int      { return len(a.buf) }
func (a *arena) Bytes() []byte { return a.buf }
func (a *arena) Reset()        { a.buf = a.buf[:0] }

// Grow ensures capacity for n more bytes.
func (a *arena) Grow(n int) {
	if free := cap(a.buf) - len(a.buf); free < n {
		buf := make([]byte, len(a.buf), len(a.buf)+n)
		copy(buf, a.buf)
		a.buf = buf
	}
}

// Take returns the contents. The arena starts over with an empty buffer,
// so the result is never written to again.
func (a *arena) Take() []byte {
	b := a.buf
	a.buf = nil
	return b
}

func (a *arena) Append(p []byte) { a.buf = append(a.buf, p...) }
func (a *arena) AppendByte(c byte) { a.buf = append(a.buf, c) }

func (a *arena) AppendUint32(v uint32) {
	a.buf = binary.BigEndian.AppendUint32(a.buf, v)
}

func (a *arena) AppendUvarint(v uint64) {
	a.buf = binary.AppendUvarint(a.buf, v)
}

func (a *arena) AppendString(s string) {
	a.AppendUvarint(uint64(len(s)))
	a.buf = append(a.buf, s...)
}

// Pad appends zero bytes up to a total length of n.
func (a *arena) Pad(n int) {
	for len(a.buf) < n {
		a.buf = append(a.buf, 0)
	}
}
