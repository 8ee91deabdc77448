// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

// Unit is the unit value (the source language's None); there is exactly one
// value of this type and it carries no payload.
type Unit struct{}

// Bytes is an immutable byte string (kind tag 0x40).
type Bytes []byte

// MutableBytes is a mutable byte buffer (kind tag 0x50), distinct from
// Bytes so the encoder can route the two to different tags the way the
// source language distinguishes bytes from bytearray.
type MutableBytes []byte

// Tuple is an ordered, fixed sequence (kind tag 0x60).
type Tuple []any

// List is an ordered, growable sequence (kind tag 0x70).
type List []any

// Dict is a keyed mapping (kind tag 0x80). Iteration order when packing is
// Go's native (randomized) map order; decoders must not rely on it.
type Dict map[any]any

// Set is a mutable unique collection (kind tag 0x90).
type Set map[any]struct{}

// FrozenSet is an immutable unique collection (kind tag 0xa0). Go cannot
// enforce immutability on a map at the type level; FrozenSet exists as a
// distinct named type purely so the encoder can route it to its own tag.
type FrozenSet map[any]struct{}

// Class identifies a registrable type by its fully-qualified module and
// qualified name, and knows how to build a fresh instance from the args
// half of a reconstruction tuple. Packing a value that implements Class emits
// the class-by-identity kind, even if it also implements Reducer; the
// registry resolves the identity back to the same Class value on decode, and
// reconstruct.go invokes New as the reconstruction tuple's callable.
type Class interface {
	ClassIdentity() (module, qualname string)
	New(args Tuple) (any, error)
}

// Reducer is implemented by any instance that needs custom wire
// representation: Reduce returns either a string (the object is a
// registered singleton, identified by that string) or a Tuple of length
// 2..5 — (callable, args, state?, extend?, update?) — describing how to
// rebuild the instance. Any other return is a BadReconstruction error.
type Reducer interface {
	Reduce() (any, error)
}

// StateSetter is the first of the three optional reconstruction phases:
// SetState applies the reconstruction tuple's "state" slot.
type StateSetter interface {
	SetState(state any) error
}

// AttrSetter is the fallback used when an object has no StateSetter and its
// state is a Dict: each (key, value) pair is assigned with SetAttr, where
// key must be text.
type AttrSetter interface {
	SetAttr(key string, value any) error
}

// Extender is the second reconstruction phase: Extend applies the
// reconstruction tuple's "extend" slot, appending items in place.
type Extender interface {
	Extend(items any) error
}

// Updater is the third reconstruction phase: Update applies the
// reconstruction tuple's "update" slot.
type Updater interface {
	Update(pairs any) error
}

// ItemSetter is the fallback used when an object has no Updater: each
// (key, value) pair produced by iterating "update" is assigned with
// SetItem.
type ItemSetter interface {
	SetItem(key, value any) error
}
