// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import "fmt"

// Encode packs v and wraps the result with a self-describing length
// prefix: sizeClassByte | length | body, where sizeClassByte (1, 2, 4, or
// 8) names the byte width of length. A transport reads sizeClassByte, then
// that many more bytes to learn the body length, then that many body
// bytes.
func Encode(v any) ([]byte, error) {
	body, err := Pack(v)
	if err != nil {
		return nil, err
	}
	sc := sizeClass(int64(len(body)))
	out := NewBuffer(1 + int(sc) + len(body))
	out.AppendByte(sc)
	lenField := make([]byte, sc)
	putLE(lenField, uint64(len(body)), int(sc))
	out.Append2(lenField, body)
	return out.Freeze(), nil
}

// Size decodes a framed body length from prefix, which must be exactly 1,
// 2, 4, or 8 bytes — the length field that follows an Encode message's
// leading size-class byte.
func Size(prefix []byte) (int, error) {
	switch len(prefix) {
	case 1, 2, 4, 8:
		n := readSignedLE(prefix, len(prefix))
		if n < 0 {
			return 0, fmt.Errorf("%w: negative body length %d", ErrInvalidLength, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: prefix length %d, want 1, 2, 4, or 8", ErrInvalidLength, len(prefix))
	}
}
