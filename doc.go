// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package ippc implements a compact, self-describing binary codec for a
// dynamic object graph: integers, floats, complex numbers, the unit value,
// booleans, text, byte sequences, homogeneous sequences, mappings, sets,
// registered classes and singletons, and arbitrary instances rebuilt from a
// reconstruction tuple.
//
// A packed value is a single tag byte followed by a payload whose layout is
// fixed by the tag; sized kinds carry their length's byte width in the low
// nibble of the tag. See Pack, Unpack, Encode, and Size.
//
// Classes and singletons are transmitted by a compact registered identity
// rather than by value: call Register before packing or unpacking anything
// that needs one, apart from NotImplemented and Ellipsis, which this
// package registers automatically at init.
//
// Arbitrary instances implement Reducer to describe how they should be
// rebuilt on the other side: either as a registered singleton (Reduce
// returns its identity string) or via a reconstruction tuple (Reduce
// returns a Tuple of (Class, args, state?, extend?, update?)). See
// reconstruct.go for the three-phase rebuild protocol.
package ippc
