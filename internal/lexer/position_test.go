package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionString(t *testing.T) {
	p := Position{Filename: "a.ll", Line: 3, Column: 7}
	require.Equal(t, "a.ll:3:7", p.String())
}

func TestPositionOrdering(t *testing.T) {
	a := Position{Offset: 1}
	b := Position{Offset: 5}
	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.False(t, a.IsValid())
	require.True(t, (Position{Line: 1}).IsValid())
}

func TestSpanString(t *testing.T) {
	s := Span{
		Start: Position{Filename: "a.ll", Line: 1, Column: 1},
		End:   Position{Filename: "a.ll", Line: 1, Column: 5},
	}
	require.Equal(t, "a.ll:1:1-5", s.String())
}
