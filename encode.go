// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import (
	"fmt"
	"math"
)

// defaultRecursionLimit bounds nesting depth for both Encoder and Decoder,
// an explicit analogue of the ambient interpreter recursion budget
// original_source/src/pack.c reads via Py_EnterRecursiveCall.
const defaultRecursionLimit = 1000

// An Encoder packs values into the wire format of this package. The zero
// value is ready for use and applies the default recursion limit; NewEncoder
// returns one with that limit set explicitly, and the package-level Pack
// does a one-shot encode with it.
type Encoder struct {
	// RecursionLimit bounds the nesting depth of tuples, lists, mappings,
	// sets, frozen sets, and the tuple path of an instance. Zero means
	// defaultRecursionLimit.
	RecursionLimit int

	depth int
}

// NewEncoder returns an Encoder with the default recursion limit.
func NewEncoder() *Encoder {
	return &Encoder{RecursionLimit: defaultRecursionLimit}
}

// Pack encodes v into an unframed body using a fresh Encoder.
func Pack(v any) ([]byte, error) {
	return NewEncoder().Pack(v)
}

// Pack encodes v into an unframed body.
func (e *Encoder) Pack(v any) ([]byte, error) {
	buf := NewBuffer(0)
	if err := e.packInto(buf, v); err != nil {
		return nil, err
	}
	return buf.Freeze(), nil
}

func (e *Encoder) limit() int {
	if e.RecursionLimit > 0 {
		return e.RecursionLimit
	}
	return defaultRecursionLimit
}

// enter and leave bracket every recursive kind's children: leaf kinds
// (scalars, text, bytes, class, singleton) never call these; every
// container kind and the tuple path of an instance does.
func (e *Encoder) enter() error {
	if e.depth >= e.limit() {
		return ErrRecursionLimit
	}
	e.depth++
	return nil
}

func (e *Encoder) leave() { e.depth-- }

// packInto dispatches on the concrete kind of v. Dispatch is by exact type,
// not reflect.Kind, so a named type that merely looks like a built-in
// container (e.g. a user slice type) falls through to the Class/Reducer
// path instead of being treated as a List or Tuple.
func (e *Encoder) packInto(buf *Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.AppendByte(tagUnit)
		return nil
	case Unit:
		buf.AppendByte(tagUnit)
		return nil
	case bool:
		if t {
			buf.AppendByte(tagTrue)
		} else {
			buf.AppendByte(tagFalse)
		}
		return nil
	case int:
		return packSigned(buf, int64(t))
	case int8:
		return packSigned(buf, int64(t))
	case int16:
		return packSigned(buf, int64(t))
	case int32:
		return packSigned(buf, int64(t))
	case int64:
		return packSigned(buf, t)
	case uint:
		return packUnsigned(buf, uint64(t))
	case uint8:
		return packUnsigned(buf, uint64(t))
	case uint16:
		return packUnsigned(buf, uint64(t))
	case uint32:
		return packUnsigned(buf, uint64(t))
	case uint64:
		return packUnsigned(buf, t)
	case float64:
		packFloat(buf, t)
		return nil
	case complex128:
		packComplex(buf, t)
		return nil
	case string:
		packText(buf, t)
		return nil
	case Bytes:
		packSized(buf, tagBytes, []byte(t))
		return nil
	case MutableBytes:
		packSized(buf, tagMutBytes, []byte(t))
		return nil
	case Tuple:
		return e.packSeq(buf, tagTuple, []any(t))
	case List:
		return e.packSeq(buf, tagList, []any(t))
	case Dict:
		return e.packDict(buf, t)
	case Set:
		return e.packSet(buf, tagSet, t)
	case FrozenSet:
		return e.packSet(buf, tagFrozenSet, t)
	default:
		if cls, ok := v.(Class); ok {
			return packClass(buf, cls)
		}
		if red, ok := v.(Reducer); ok {
			return e.packReduce(buf, red)
		}
		return fmt.Errorf("%w: %T", ErrUnencodableKind, v)
	}
}

// packSigned encodes n with the narrowest signed tag whose range strictly
// contains it.
func packSigned(buf *Buffer, n int64) error {
	tag := intWidth(n)
	buf.AppendByte(tag)
	writeLE(buf, uint64(n), widthOf(tag))
	return nil
}

// packUnsigned encodes u using the signed path if it fits in int64,
// otherwise as UINT with a full u64 payload.
func packUnsigned(buf *Buffer, u uint64) error {
	if u > math.MaxInt64 {
		buf.AppendByte(tagUint)
		writeLE(buf, u, 8)
		return nil
	}
	return packSigned(buf, int64(u))
}

func packFloat(buf *Buffer, f float64) {
	buf.AppendByte(tagFloat)
	writeLE(buf, math.Float64bits(f), 8)
}

func packComplex(buf *Buffer, c complex128) {
	buf.AppendByte(tagComplex)
	writeLE(buf, math.Float64bits(real(c)), 8)
	writeLE(buf, math.Float64bits(imag(c)), 8)
}

// packText encodes s as the STR kind.
func packText(buf *Buffer, s string) {
	packSized(buf, tagStr, []byte(s))
}

// packSized emits kind|sizeClass, the length field, then data verbatim.
func packSized(buf *Buffer, kind byte, data []byte) {
	sc := sizeClass(int64(len(data)))
	buf.AppendByte(kind | sc)
	lenBuf := make([]byte, sc)
	putLE(lenBuf, uint64(len(data)), int(sc))
	buf.Append2(lenBuf, data)
}

// writeLE appends the little-endian encoding of n's low width bytes.
func writeLE(buf *Buffer, n uint64, width int) {
	b := make([]byte, width)
	putLE(b, n, width)
	buf.Append(b)
}

func putLE(b []byte, n uint64, width int) {
	for i := 0; i < width; i++ {
		b[i] = byte(n >> (8 * uint(i)))
	}
}

// packSeq encodes a recursion-guarded ordered container: kind|sizeClass,
// element count, then each element in order.
func (e *Encoder) packSeq(buf *Buffer, kind byte, items []any) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	sc := sizeClass(int64(len(items)))
	buf.AppendByte(kind | sc)
	writeLE(buf, uint64(len(items)), int(sc))
	for i, item := range items {
		if err := e.packInto(buf, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// packDict encodes a recursion-guarded mapping: kind|sizeClass, pair count,
// then each (key, value) pair in the map's own iteration order.
func (e *Encoder) packDict(buf *Buffer, d Dict) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	sc := sizeClass(int64(len(d)))
	buf.AppendByte(tagDict | sc)
	writeLE(buf, uint64(len(d)), int(sc))
	for k, v := range d {
		if err := e.packInto(buf, k); err != nil {
			return fmt.Errorf("key: %w", err)
		}
		if err := e.packInto(buf, v); err != nil {
			return fmt.Errorf("value: %w", err)
		}
	}
	return nil
}

// packSet encodes a recursion-guarded unique collection.
func (e *Encoder) packSet(buf *Buffer, kind byte, s map[any]struct{}) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	sc := sizeClass(int64(len(s)))
	buf.AppendByte(kind | sc)
	writeLE(buf, uint64(len(s)), int(sc))
	for item := range s {
		if err := e.packInto(buf, item); err != nil {
			return fmt.Errorf("element: %w", err)
		}
	}
	return nil
}

// packClass encodes a class-by-identity value: the identity is a leaf
// payload (two packed text values), so no recursion guard is needed.
func packClass(buf *Buffer, cls Class) error {
	module, qualname := cls.ClassIdentity()
	packSized(buf, tagClass, encodeClassIdentity(module, qualname))
	return nil
}

// packReduce invokes obj's reconstruction accessor and encodes the result
// as either a singleton-by-identity or an instance.
func (e *Encoder) packReduce(buf *Buffer, obj Reducer) error {
	reduced, err := obj.Reduce()
	if err != nil {
		return err
	}
	switch rv := reduced.(type) {
	case string:
		packSized(buf, tagSingleton, encodeSingletonIdentity(rv))
		return nil
	case Tuple:
		inner := NewBuffer(0)
		if err := e.packInto(inner, rv); err != nil {
			return err
		}
		packSized(buf, tagInstance, inner.Freeze())
		return nil
	default:
		return fmt.Errorf("%w: Reduce() returned %T, want string or Tuple", ErrBadReconstruct, reduced)
	}
}
