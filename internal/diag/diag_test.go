package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageFormatting(t *testing.T) {
	err := New(Validation, "bad %s at %d", "thing", 3)
	require.Equal(t, "validation error: bad thing at 3", err.Error())
}

func TestPositionedMessageFormatting(t *testing.T) {
	err := NewPositioned(Syntax, "f.ll", 12, "}", "unexpected closing brace")
	require.Equal(t, `syntax error: f.ll:12: unexpected "}": unexpected closing brace`, err.Error())
}

func TestPositionedFormatsNegativeAndZeroLines(t *testing.T) {
	zero := NewPositioned(Lexical, "f.ll", 0, "x", "m")
	require.Contains(t, zero.Error(), "f.ll:0:")

	neg := NewPositioned(Lexical, "f.ll", -1, "x", "m")
	require.Contains(t, neg.Error(), "f.ll:-1:")
}

func TestErrorsAreStackTraceWrapped(t *testing.T) {
	err := New(Domain, "divide by zero")
	require.Error(t, err)
	// errors.WithStack preserves Cause()-walkability back to the *Error.
	type causer interface{ Cause() error }
	c, ok := err.(causer)
	require.True(t, ok)
	_, ok = c.Cause().(*Error)
	require.True(t, ok)
}

