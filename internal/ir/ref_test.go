package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefEquality(t *testing.T) {
	require.True(t, RefIndex(3).Equal(RefIndex(3)))
	require.False(t, RefIndex(3).Equal(RefIndex(4)))
	require.True(t, RefName("x").Equal(RefName("x")))
	require.False(t, RefName("x").Equal(RefIndex(0)))
}

func TestRefIndexRejectsSentinel(t *testing.T) {
	require.Panics(t, func() { RefIndex(NoIndex) })
}

func TestRefOrdering(t *testing.T) {
	require.True(t, RefIndex(1).Less(RefIndex(2)))
	require.False(t, RefIndex(2).Less(RefIndex(1)))
	require.True(t, RefIndex(100).Less(RefName("a")), "numeric refs sort before string refs")
	require.False(t, RefName("a").Less(RefIndex(100)))
	require.True(t, RefName("a").Less(RefName("b")))
}

func TestSortRefsIsDeterministic(t *testing.T) {
	in := []Ref{RefName("z"), RefIndex(5), RefName("a"), RefIndex(1)}
	out := SortRefs(in)
	want := []Ref{RefIndex(1), RefIndex(5), RefName("a"), RefName("z")}
	require.Equal(t, want, out)
	// original slice must not be mutated
	require.Equal(t, RefName("z"), in[0])
}

func TestRefAccessorsPanicOnWrongVariant(t *testing.T) {
	require.Panics(t, func() { RefIndex(1).Name() })
	require.Panics(t, func() { RefName("x").Index() })
}

func TestRefString(t *testing.T) {
	require.Equal(t, "42", RefIndex(42).String())
	require.Equal(t, "foo", RefName("foo").String())
}
