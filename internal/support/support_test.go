package support

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBareIdentifier(t *testing.T) {
	require.True(t, IsBareIdentifier("foo.bar-1$x"))
	require.True(t, IsBareIdentifier("_leading"))
	require.False(t, IsBareIdentifier(""))
	require.False(t, IsBareIdentifier("1leading"))
	require.False(t, IsBareIdentifier("has space"))
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	cases := []string{"plain", "has space", "quote\"here", "back\\slash", "\x01\x02"}
	for _, c := range cases {
		wrapped := Wrap(c)
		unwrapped, err := Unwrap(wrapped)
		require.NoError(t, err)
		require.Equal(t, c, unwrapped)
	}
}

func TestUnwrapDecodesEscapes(t *testing.T) {
	got, err := Unwrap(`a\5cb`)
	require.NoError(t, err)
	require.Equal(t, "a\\b", got)

	got, err = Unwrap(`x\22y`)
	require.NoError(t, err)
	require.Equal(t, `x"y`, got)
}

func TestUnwrapRejectsBadEscape(t *testing.T) {
	_, err := Unwrap(`bad\zz`)
	require.Error(t, err)
}

func TestParseHexByte(t *testing.T) {
	b, ok := ParseHexByte("0a", 0)
	require.True(t, ok)
	require.Equal(t, byte(0x0a), b)

	_, ok = ParseHexByte("0", 0)
	require.False(t, ok)
}

func TestQuoteIdentifierBareVsQuoted(t *testing.T) {
	require.Equal(t, "foo", QuoteIdentifier("foo"))
	require.Equal(t, `"has space"`, QuoteIdentifier("has space"))
}

func TestRemoveSigil(t *testing.T) {
	require.Equal(t, "x", RemoveSigil("%x"))
	require.Equal(t, "g", RemoveSigil("@g"))
	require.Equal(t, "c", RemoveSigil("$c"))
	require.Equal(t, "bare", RemoveSigil("bare"))
}

func TestContainsAt(t *testing.T) {
	require.True(t, ContainsAt("hello world", 6, "world"))
	require.False(t, ContainsAt("hello world", 0, "world"))
	require.False(t, ContainsAt("hi", 5, "world"))
}

func TestCurrentLine(t *testing.T) {
	src := "a\nb\nc\n"
	require.Equal(t, 1, CurrentLine(src, 0))
	require.Equal(t, 2, CurrentLine(src, 2))
	require.Equal(t, 3, CurrentLine(src, 4))
}
