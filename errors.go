// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap these with fmt.Errorf("...: %w", ...) for
// context; compare with errors.Is.
var (
	ErrOutOfInput      = errors.New("ippc: ran out of input")
	ErrInvalidTag      = errors.New("ippc: invalid tag")
	ErrInvalidLength   = errors.New("ippc: invalid length")
	ErrUnencodableKind = errors.New("ippc: unencodable kind")
	ErrBadReconstruct  = errors.New("ippc: bad reconstruction tuple")
	ErrUnknownIdentity = errors.New("ippc: unknown identity")
	ErrStateError      = errors.New("ippc: state/extend/update failed")
	ErrRecursionLimit  = errors.New("ippc: recursion limit exceeded")
	ErrAllocation      = errors.New("ippc: allocation failure")
	ErrIntegerOverflow = errors.New("ippc: integer overflow")
)

// invalidTagf reports an unknown or zero tag byte.
func invalidTagf(tag byte) error {
	return fmt.Errorf("%w: 0x%02x", ErrInvalidTag, tag)
}

// unknownIdentityf names the identity that failed to resolve in the
// registry, formatted the way a class or singleton would print.
func unknownIdentityf(kind byte, identity []byte) error {
	switch kind {
	case tagClass:
		mod, qual, ok := splitClassIdentity(identity)
		if ok {
			return fmt.Errorf("%w: cannot unpack <class '%s.%s'>", ErrUnknownIdentity, mod, qual)
		}
	case tagSingleton:
		name, ok := decodeTextIdentity(identity)
		if ok {
			return fmt.Errorf("%w: cannot unpack '%s'", ErrUnknownIdentity, name)
		}
	}
	return fmt.Errorf("%w: cannot unpack %x", ErrUnknownIdentity, identity)
}
