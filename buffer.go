// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

// A Buffer is a growable, append-only byte container used both as the
// encoder's output and as internal scratch space for encoding identities and
// reconstruction tuples.
//
// Growth is doubling: a write that needs n bytes beyond the current
// capacity grows the backing array to max(needed, 2*current). The initial
// allocation is 32 bytes. A Buffer never shrinks.
//
// Buffer keeps a movable start offset so an external transport can drain
// bytes off the front without an extra copy; the codec itself never uses
// the drain path and always appends sequentially from the front.
type Buffer struct {
	data  []byte
	start int
}

const minBufferCap = 32

// NewBuffer returns an empty Buffer. capacityHint, if positive, preallocates
// at least that many bytes.
func NewBuffer(capacityHint int) *Buffer {
	n := minBufferCap
	if capacityHint > n {
		n = capacityHint
	}
	return &Buffer{data: make([]byte, 0, n)}
}

// Len reports the number of live bytes in the buffer, i.e. those not yet
// drained from the front.
func (b *Buffer) Len() int {
	return len(b.data) - b.start
}

// AsSlice returns the live bytes of the buffer. The slice is invalidated by
// any subsequent append to b.
func (b *Buffer) AsSlice() []byte {
	return b.data[b.start:]
}

// Freeze returns a copy of the live bytes, safe to retain independent of the
// buffer's subsequent lifetime.
func (b *Buffer) Freeze() []byte {
	out := make([]byte, b.Len())
	copy(out, b.AsSlice())
	return out
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	b.data = append(b.data, c)
	b.pad()
}

// Append appends the contents of p.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.data = append(b.data, p...)
	b.pad()
}

// Append2 appends the contents of a followed by c, charged as a single
// growth step.
func (b *Buffer) Append2(a, c []byte) {
	b.grow(len(a) + len(c))
	b.data = append(b.data, a...)
	b.data = append(b.data, c...)
	b.pad()
}

// grow ensures the backing array can hold n more bytes without reallocating.
func (b *Buffer) grow(n int) {
	need := len(b.data) + n + 1 // +1 for the trailing NUL convenience byte
	if need <= cap(b.data) {
		return
	}
	newCap := cap(b.data) * 2
	if newCap < need {
		newCap = need
	}
	if newCap < minBufferCap {
		newCap = minBufferCap
	}
	next := make([]byte, len(b.data), newCap)
	copy(next, b.data)
	b.data = next
}

// pad maintains a trailing NUL byte just past the logical end of the
// buffer, purely as an inspection convenience; it is never part of the
// payload returned by AsSlice or Freeze.
func (b *Buffer) pad() {
	if cap(b.data) > len(b.data) {
		b.data[:len(b.data)+1][len(b.data)] = 0
	}
}

// DrainFront removes and returns the first n bytes of the buffer, advancing
// the movable start. It exists for an external stream transport peeling
// framed messages off a shared buffer; Pack, Unpack, Encode, and Size never
// call it.
func (b *Buffer) DrainFront(n int) ([]byte, error) {
	if n < 0 || n > b.Len() {
		return nil, ErrOutOfInput
	}
	out := make([]byte, n)
	copy(out, b.data[b.start:b.start+n])
	b.start += n
	return out, nil
}
