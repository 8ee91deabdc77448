// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

var errInvalidUTF8 = fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidLength)

// A Decoder unpacks values from the wire format of this package, reading
// sequentially from a fixed byte slice. The zero value is ready for use and
// applies the default recursion limit; NewDecoder returns one with that
// limit set explicitly, and the package-level Unpack does a one-shot decode
// with it.
type Decoder struct {
	// RecursionLimit bounds the nesting depth of tuples, lists, mappings,
	// sets, frozen sets, and instance payloads. Zero means
	// defaultRecursionLimit.
	RecursionLimit int

	data  []byte
	pos   int
	depth int
}

// NewDecoder returns a Decoder with the default recursion limit.
func NewDecoder() *Decoder {
	return &Decoder{RecursionLimit: defaultRecursionLimit}
}

// Unpack decodes a single value from the front of data using a fresh
// Decoder.
func Unpack(data []byte) (any, error) {
	return NewDecoder().Unpack(data)
}

// Unpack decodes a single value from the front of data.
func (d *Decoder) Unpack(data []byte) (any, error) {
	d.data = data
	d.pos = 0
	d.depth = 0
	return d.decodeValue()
}

func (d *Decoder) limit() int {
	if d.RecursionLimit > 0 {
		return d.RecursionLimit
	}
	return defaultRecursionLimit
}

func (d *Decoder) enter() error {
	if d.depth >= d.limit() {
		return ErrRecursionLimit
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() { d.depth-- }

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, ErrOutOfInput
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) readN(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, ErrOutOfInput
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// remaining returns the bytes not yet consumed.
func (d *Decoder) remaining() int {
	return len(d.data) - d.pos
}

// readLength reads sc bytes as a little-endian signed integer and rejects a
// negative result: a declared length must never be negative.
func (d *Decoder) readLength(sc byte) (int64, error) {
	switch sc {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: size class %d", ErrInvalidTag, sc)
	}
	b, err := d.readN(int(sc))
	if err != nil {
		return 0, err
	}
	n := readSignedLE(b, int(sc))
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrInvalidLength, n)
	}
	return n, nil
}

// readSignedLE decodes the low width bytes of b as a little-endian
// two's-complement signed integer.
func readSignedLE(b []byte, width int) int64 {
	var u uint64
	for i := width - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	if width < 8 {
		signBit := uint64(1) << uint(8*width-1)
		if u&signBit != 0 {
			u |= ^uint64(0) << uint(8*width)
		}
	}
	return int64(u)
}

// decodeValue reads one tag byte and dispatches on it.
func (d *Decoder) decodeValue() (any, error) {
	tagByte, err := d.readByte()
	if err != nil {
		return nil, err
	}

	switch tagByte {
	case tagUnit:
		return Unit{}, nil
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	case tagInt1, tagInt2, tagInt4, tagInt8:
		return d.decodeInt(tagByte)
	case tagUint:
		return d.decodeUint()
	case tagFloat:
		return d.decodeFloat()
	case tagComplex:
		return d.decodeComplex()
	}

	switch tagByte & tagKindMask {
	case tagStr:
		return d.decodeTextBody(tagByte)
	case tagBytes:
		return d.decodeBytesBody(tagByte, false)
	case tagMutBytes:
		return d.decodeBytesBody(tagByte, true)
	case tagTuple:
		return d.decodeSeq(tagByte, true)
	case tagList:
		return d.decodeSeq(tagByte, false)
	case tagDict:
		return d.decodeDict(tagByte)
	case tagSet:
		return d.decodeSet(tagByte, false)
	case tagFrozenSet:
		return d.decodeSet(tagByte, true)
	case tagClass:
		return d.decodeIdentity(tagByte, tagClass)
	case tagSingleton:
		return d.decodeIdentity(tagByte, tagSingleton)
	case tagInstance:
		return d.decodeInstance(tagByte)
	}
	return nil, invalidTagf(tagByte)
}

func (d *Decoder) decodeInt(tagByte byte) (any, error) {
	width := widthOf(tagByte)
	b, err := d.readN(width)
	if err != nil {
		return nil, err
	}
	return readSignedLE(b, width), nil
}

func (d *Decoder) decodeUint() (any, error) {
	b, err := d.readN(8)
	if err != nil {
		return nil, err
	}
	var u uint64
	for i := 7; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u, nil
}

func (d *Decoder) decodeFloat() (any, error) {
	b, err := d.readN(8)
	if err != nil {
		return nil, err
	}
	var u uint64
	for i := 7; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return math.Float64frombits(u), nil
}

func (d *Decoder) decodeComplex() (any, error) {
	rb, err := d.readN(8)
	if err != nil {
		return nil, err
	}
	var ru uint64
	for i := 7; i >= 0; i-- {
		ru = ru<<8 | uint64(rb[i])
	}
	ib, err := d.readN(8)
	if err != nil {
		return nil, err
	}
	var iu uint64
	for i := 7; i >= 0; i-- {
		iu = iu<<8 | uint64(ib[i])
	}
	return complex(math.Float64frombits(ru), math.Float64frombits(iu)), nil
}

// decodeTextBody reads the length and bytes of a STR value and validates
// UTF-8.
func (d *Decoder) decodeTextBody(tagByte byte) (any, error) {
	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: text length %d exceeds remaining input", ErrInvalidLength, n)
	}
	data, err := d.readN(int(n))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}
	return string(data), nil
}

func (d *Decoder) decodeBytesBody(tagByte byte, mutable bool) (any, error) {
	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: length %d exceeds remaining input", ErrInvalidLength, n)
	}
	data, err := d.readN(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	if mutable {
		return MutableBytes(out), nil
	}
	return Bytes(out), nil
}

func (d *Decoder) decodeSeq(tagByte byte, isTuple bool) (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: element count %d exceeds remaining input", ErrInvalidLength, n)
	}
	items := make([]any, 0, n)
	for i := int64(0); i < n; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, v)
	}
	if isTuple {
		return Tuple(items), nil
	}
	return List(items), nil
}

func (d *Decoder) decodeDict(tagByte byte) (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: pair count %d exceeds remaining input", ErrInvalidLength, n)
	}
	out := make(Dict, n)
	for i := int64(0); i < n; i++ {
		k, err := d.decodeValue()
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		if !isHashable(k) {
			return nil, fmt.Errorf("%w: dict key of type %T is not hashable", ErrInvalidLength, k)
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[k] = v
	}
	return out, nil
}

func (d *Decoder) decodeSet(tagByte byte, frozen bool) (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: element count %d exceeds remaining input", ErrInvalidLength, n)
	}
	out := make(map[any]struct{}, n)
	for i := int64(0); i < n; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if !isHashable(v) {
			return nil, fmt.Errorf("%w: set element of type %T is not hashable", ErrInvalidLength, v)
		}
		out[v] = struct{}{}
	}
	if frozen {
		return FrozenSet(out), nil
	}
	return Set(out), nil
}

func isHashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// decodeIdentity reads a class or singleton identity and resolves it
// through the registry. A miss is reported against the identity bytes
// already in hand; since this format is length-prefixed, the identity
// bytes are already available for the error message without any
// rewind-and-reparse step.
func (d *Decoder) decodeIdentity(tagByte, kind byte) (any, error) {
	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: identity length %d exceeds remaining input", ErrInvalidLength, n)
	}
	data, err := d.readN(int(n))
	if err != nil {
		return nil, err
	}
	if obj, ok := Lookup(data); ok {
		return obj, nil
	}
	return nil, unknownIdentityf(kind, data)
}

// decodeInstance decodes an INSTANCE payload's inner reconstruction value
// in a sub-decoder scoped to the inner slice, guarded the same way the
// encoder's instance path shares its own recursion counter across the
// reduce tuple's children: enter/leave brackets the whole inner decode,
// and the sub-decoder inherits the current depth so a chain of nested
// instances accumulates against one limit instead of each instance
// resetting the counter to zero.
func (d *Decoder) decodeInstance(tagByte byte) (any, error) {
	n, err := d.readLength(tagByte & tagSizeMask)
	if err != nil {
		return nil, err
	}
	if n > int64(d.remaining()) {
		return nil, fmt.Errorf("%w: instance length %d exceeds remaining input", ErrInvalidLength, n)
	}
	inner, err := d.readN(int(n))
	if err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	sub := &Decoder{RecursionLimit: d.RecursionLimit, data: inner, depth: d.depth}
	reduced, err := sub.decodeValue()
	if err != nil {
		return nil, err
	}
	return reconstructObject(reduced)
}

// decodePackedText decodes a single packed text value starting at offset in
// data, returning the text and the offset just past it. Used by the
// registry to recover a class/singleton identity for error messages.
func decodePackedText(data []byte, offset int) (string, int, error) {
	if offset < 0 || offset >= len(data) {
		return "", 0, ErrOutOfInput
	}
	sub := &Decoder{data: data[offset:]}
	tagByte, err := sub.readByte()
	if err != nil {
		return "", 0, err
	}
	if tagByte&tagKindMask != tagStr {
		return "", 0, invalidTagf(tagByte)
	}
	v, err := sub.decodeTextBody(tagByte)
	if err != nil {
		return "", 0, err
	}
	return v.(string), offset + sub.pos, nil
}
