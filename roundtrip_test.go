// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package ippc

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestRoundTripScalars covers the "encode then decode reproduces the
// original value" property for every leaf kind.
func TestRoundTripScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"zero", 0, int64(0)},
		{"small negative", -5, int64(-5)},
		{"int1 ceiling", 126, int64(126)},
		{"int2 by asymmetry", 127, int64(127)},
		{"int1 floor", -128, int64(-128)},
		{"int4 width", int64(1 << 20), int64(1 << 20)},
		{"int8 width", int64(1) << 40, int64(1) << 40},
		{"float", 3.25, 3.25},
		{"negative float", -0.5, -0.5},
		{"complex", complex(1.5, -2.25), complex(1.5, -2.25)},
		{"empty text", "", ""},
		{"text", "hello, world", "hello, world"},
		{"unit nil", nil, Unit{}},
		{"unit value", Unit{}, Unit{}},
		{"true", true, true},
		{"false", false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			packed, err := Pack(c.in)
			require.NoError(t, err)
			got, err := Unpack(packed)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestRoundTripBytesKinds(t *testing.T) {
	packed, err := Pack(Bytes{1, 2, 3})
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, Bytes{1, 2, 3}, got)

	packed, err = Pack(MutableBytes{4, 5})
	require.NoError(t, err)
	got, err = Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, MutableBytes{4, 5}, got)
}

func TestRoundTripNestedContainers(t *testing.T) {
	in := List{
		Tuple{int64(1), "two", 3.0},
		Dict{"a": int64(1), "b": int64(2)},
		List{},
	}
	packed, err := Pack(in)
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)

	gotList, ok := got.(List)
	require.True(t, ok)
	require.Len(t, gotList, 3)
	require.Equal(t, Tuple{int64(1), "two", 3.0}, gotList[0])
}

func TestRoundTripSetAndFrozenSet(t *testing.T) {
	s := Set{"a": {}, "b": {}}
	packed, err := Pack(s)
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)
	gotSet, ok := got.(Set)
	require.True(t, ok)
	require.Len(t, gotSet, 2)
	_, hasA := gotSet["a"]
	_, hasB := gotSet["b"]
	require.True(t, hasA)
	require.True(t, hasB)

	fs := FrozenSet{"x": {}}
	packed, err = Pack(fs)
	require.NoError(t, err)
	got, err = Unpack(packed)
	require.NoError(t, err)
	_, ok = got.(FrozenSet)
	require.True(t, ok)
}

func TestRoundTripSingletons(t *testing.T) {
	for _, v := range []any{NotImplemented, Ellipsis} {
		packed, err := Pack(v)
		require.NoError(t, err)
		got, err := Unpack(packed)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestRoundTripClass(t *testing.T) {
	cls := &testClass{module: "widgets", qualname: "Gadget"}
	require.NoError(t, Register(cls))

	packed, err := Pack(cls)
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)
	require.Same(t, cls, got)
}

func TestRoundTripInstance(t *testing.T) {
	cls := &testClass{module: "widgets", qualname: "Instanced"}
	require.NoError(t, Register(cls))

	reducer := &reduceToInstance{cls: cls}
	packed, err := Pack(reducer)
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)

	inst, ok := got.(*testInstance)
	require.True(t, ok)
	require.Equal(t, Tuple{"arg"}, inst.args)
}

// TestShortPrefixAlwaysErrors covers the short-read-safety property: every
// strict prefix of a valid encoding fails to decode rather than returning
// a truncated or wrong value.
func TestShortPrefixAlwaysErrors(t *testing.T) {
	values := []any{
		42,
		"a longer piece of text to pack",
		Tuple{1, List{2, 3}, Dict{"k": "v"}},
		3.5,
		complex(1, 2),
		Bytes{9, 9, 9},
	}
	for _, v := range values {
		full, err := Pack(v)
		require.NoError(t, err)
		for n := 0; n < len(full); n++ {
			_, err := Unpack(full[:n])
			require.Errorf(t, err, "value %#v: prefix length %d should fail", v, n)
		}
	}
}

func TestFloatSpecialValuesRoundTrip(t *testing.T) {
	packed, err := Pack(math.Inf(1))
	require.NoError(t, err)
	got, err := Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, math.Inf(1), got)

	packed, err = Pack(math.NaN())
	require.NoError(t, err)
	got, err = Unpack(packed)
	require.NoError(t, err)
	require.True(t, math.IsNaN(got.(float64)))
}

func TestEncodeSizeConcreteExample(t *testing.T) {
	n, err := Size([]byte{0x01})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// TestRoundTripDeepStructureDiff packs and unpacks a deeply nested value and
// diffs the two sides with cmp, the way binpack's own tests compare
// marshal/unmarshal results.
func TestRoundTripDeepStructureDiff(t *testing.T) {
	in := List{
		Tuple{int64(1), int64(2), int64(3)},
		List{"a", "b", List{"c", "d"}},
		Dict{"x": int64(1)},
	}
	packed, err := Pack(in)
	require.NoError(t, err)
	out, err := Unpack(packed)
	require.NoError(t, err)

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
