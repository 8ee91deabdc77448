// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackIntegerWorkedExamples(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want int64
	}{
		{"zero", []byte{0x01, 0x00}, 0},
		{"127", []byte{0x02, 0x7f, 0x00}, 127},
		{"128", []byte{0x02, 0x80, 0x00}, 128},
		{"-128", []byte{0x01, 0x80}, -128},
		{"-129", []byte{0x02, 0x7f, 0xff}, -129},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Unpack(c.data)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestUnpackTextRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0x31, 0x01, 0xff}
	_, err := Unpack(data)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestUnpackUnknownTagByte(t *testing.T) {
	_, err := Unpack([]byte{0x00})
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestUnpackRejectsInvalidSizeClass(t *testing.T) {
	// tagStr (0x30) with size-class nibble 3, which is not in {1,2,4,8}.
	_, err := Unpack([]byte{0x33, 0x01, 'a'})
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestUnpackErrorsOnEveryShortPrefix(t *testing.T) {
	full, err := Pack(Tuple{1, "hello", true})
	require.NoError(t, err)
	for n := 0; n < len(full); n++ {
		_, err := Unpack(full[:n])
		require.Error(t, err, "prefix length %d should fail to decode", n)
	}
	// The full encoding itself must succeed.
	_, err = Unpack(full)
	require.NoError(t, err)
}

func TestUnpackRecursionLimit(t *testing.T) {
	deep, err := Pack(List{List{List{1}}})
	require.NoError(t, err)

	d := &Decoder{RecursionLimit: 2}
	_, err = d.Unpack(deep)
	require.ErrorIs(t, err, ErrRecursionLimit)
}

// chainReducer reduces to an instance whose single arg is another
// chainReducer, producing a stream of nested INSTANCE payloads.
type chainReducer struct {
	cls   *testClass
	depth int
}

func (c *chainReducer) Reduce() (any, error) {
	if c.depth <= 0 {
		return Tuple{c.cls, Tuple{}}, nil
	}
	return Tuple{c.cls, Tuple{&chainReducer{cls: c.cls, depth: c.depth - 1}}}, nil
}

// TestUnpackNestedInstanceRecursionLimit guards against the decode path for
// INSTANCE treating each instance's inner payload as a fresh, unguarded
// decode: a chain of nested instances must accumulate against the same
// recursion limit as nested containers, not reset it to zero per instance.
func TestUnpackNestedInstanceRecursionLimit(t *testing.T) {
	cls := &testClass{module: "rec", qualname: "Chain"}
	require.NoError(t, Register(cls))

	deep, err := Pack(&chainReducer{cls: cls, depth: 5})
	require.NoError(t, err)

	d := &Decoder{RecursionLimit: 2}
	_, err = d.Unpack(deep)
	require.ErrorIs(t, err, ErrRecursionLimit)
}

func TestUnpackUnknownIdentity(t *testing.T) {
	identity := encodeSingletonIdentity("nobody.home")
	body := append([]byte{tagSingleton | sizeClass(int64(len(identity))), byte(len(identity))}, identity...)
	_, err := Unpack(body)
	require.ErrorIs(t, err, ErrUnknownIdentity)
	require.Contains(t, err.Error(), "nobody.home")
}

func TestUnpackSingletonRoundTrips(t *testing.T) {
	packed, err := Pack(NotImplemented)
	require.NoError(t, err)

	got, err := Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, NotImplemented, got)
}

func TestUnpackDictRejectsUnhashableKey(t *testing.T) {
	// A dict whose single key is itself an empty List (unhashable in Go).
	body := []byte{
		0x81, 0x01, // DICT, size-class 1, 1 pair
		0x71, 0x00, // key: List, size-class 1, 0 elements
		0x01, 0x00, // value: int 0
	}
	_, err := Unpack(body)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestUnpackSeqLengthExceedsInput(t *testing.T) {
	body := []byte{0x71, 0x05} // List claiming 5 elements, none present
	_, err := Unpack(body)
	require.Error(t, err)
}
