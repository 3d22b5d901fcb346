package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src, "test.ll")
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func TestLexIdentifiersAndLabels(t *testing.T) {
	toks := scanAll(t, "define i32\nentry:\n")
	require.Equal(t, Ident, toks[0].Kind)
	require.Equal(t, "define", toks[0].Lexeme)
	require.Equal(t, Ident, toks[1].Kind)
	require.Equal(t, "i32", toks[1].Lexeme)
	require.Equal(t, Newline, toks[2].Kind)
	require.Equal(t, Label, toks[3].Kind)
	require.Equal(t, "entry", toks[3].Lexeme)
}

func TestLexSigilNames(t *testing.T) {
	toks := scanAll(t, "%x @g $c %12")
	require.Equal(t, LocalName, toks[0].Kind)
	require.Equal(t, "x", toks[0].Lexeme)
	require.Equal(t, GlobalName, toks[1].Kind)
	require.Equal(t, "g", toks[1].Lexeme)
	require.Equal(t, ComdatName, toks[2].Kind)
	require.Equal(t, "c", toks[2].Lexeme)
	require.Equal(t, LocalName, toks[3].Kind)
	require.Equal(t, "12", toks[3].Lexeme)
}

func TestLexQuotedEscapes(t *testing.T) {
	toks := scanAll(t, `@"a\5cb" "x\22y"`)
	require.Equal(t, GlobalName, toks[0].Kind)
	require.Equal(t, "a\\b", toks[0].Lexeme)
	require.Equal(t, QuotedString, toks[1].Kind)
	require.Equal(t, `x"y`, toks[1].Lexeme)
}

func TestLexByteString(t *testing.T) {
	toks := scanAll(t, `c"hi\0a"`)
	require.Equal(t, ByteString, toks[0].Kind)
	require.Equal(t, "hi\n", toks[0].Lexeme)
}

func TestLexNumbers(t *testing.T) {
	toks := scanAll(t, "42 -7 3.14 1e10 -2.5e-3")
	for i, want := range []string{"42", "-7", "3.14", "1e10", "-2.5e-3"} {
		require.Equal(t, Number, toks[i].Kind)
		require.Equal(t, want, toks[i].Lexeme)
	}
}

func TestLexEllipsisAndPunct(t *testing.T) {
	toks := scanAll(t, "(i32, ...) = [3 x i32]")
	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Contains(t, kinds, Ellipsis)
	require.Contains(t, kinds, Punct)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks := scanAll(t, "; a comment\ndefine")
	require.Equal(t, Newline, toks[0].Kind)
	require.Equal(t, Ident, toks[1].Kind)
	require.Equal(t, "define", toks[1].Lexeme)
}

func TestLexUnclosedStringIsError(t *testing.T) {
	l := New(`"abc`, "test.ll")
	_, err := l.Next()
	require.Error(t, err)
}

func TestLexMissingNewlineAtEOF(t *testing.T) {
	toks := scanAll(t, "ret void")
	require.Equal(t, Ident, toks[0].Kind)
	last := toks[len(toks)-1]
	require.Equal(t, EOF, last.Kind)
}

func TestLexQuotedSigilNameMarksQuoted(t *testing.T) {
	toks := scanAll(t, `%"5" %5 @"7" @7`)
	require.Equal(t, LocalName, toks[0].Kind)
	require.Equal(t, "5", toks[0].Lexeme)
	require.True(t, toks[0].Quoted)

	require.Equal(t, LocalName, toks[1].Kind)
	require.Equal(t, "5", toks[1].Lexeme)
	require.False(t, toks[1].Quoted)

	require.Equal(t, GlobalName, toks[2].Kind)
	require.Equal(t, "7", toks[2].Lexeme)
	require.True(t, toks[2].Quoted)

	require.Equal(t, GlobalName, toks[3].Kind)
	require.Equal(t, "7", toks[3].Lexeme)
	require.False(t, toks[3].Quoted)
}
