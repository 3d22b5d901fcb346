package lexer

import (
	"unicode/utf8"

	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/support"
)

// Lexer performs single-pass tokenization over UTF-8 IR source text. A
// final line lacking a trailing newline gets no Newline token; the EOF
// token ends it.
type Lexer struct {
	source   string
	filename string

	start   int
	current int

	line      int
	lineStart int
}

// New builds a Lexer over source, attributed to filename in diagnostics.
func New(source, filename string) *Lexer {
	return &Lexer{source: source, filename: filename, line: 1}
}

func (l *Lexer) atEnd() bool { return l.current >= len(l.source) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.current + offset
	if i >= len(l.source) {
		return 0
	}
	return l.source[i]
}

func (l *Lexer) advance() byte {
	b := l.source[l.current]
	l.current++
	if b == '\n' {
		l.line++
		l.lineStart = l.current
	}
	return b
}

func (l *Lexer) column() int {
	return utf8.RuneCountInString(l.source[l.lineStart:l.current]) + 1
}

func (l *Lexer) pos() Position {
	return Position{Filename: l.filename, Line: l.line, Column: l.column(), Offset: l.start}
}

func (l *Lexer) lexErr(format string, args ...interface{}) error {
	return diag.New(diag.Lexical, "%s: "+format, append([]interface{}{l.pos()}, args...)...)
}

// Next scans and returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipInsignificant()
	l.start = l.current
	if l.atEnd() {
		return Token{Kind: EOF, Pos: l.pos()}, nil
	}

	c := l.peek()
	switch {
	case c == '\n':
		pos := l.pos()
		l.advance()
		return Token{Kind: Newline, Raw: "\n", Pos: pos}, nil
	case c == '"':
		return l.lexQuoted(false)
	case c == 'c' && l.peekAt(1) == '"':
		l.advance()
		return l.lexQuoted(true)
	case c == '%' || c == '@' || c == '$':
		return l.lexSigil()
	case c == '.' && l.peekAt(1) == '.' && l.peekAt(2) == '.':
		l.advance()
		l.advance()
		l.advance()
		return Token{Kind: Ellipsis, Raw: "...", Pos: l.pos()}, nil
	case isDigit(c) || (c == '-' && isDigit(l.peekAt(1))):
		return l.lexNumber()
	case support.IsBareIdentifierStart(c):
		return l.lexIdentOrLabel()
	case isPunct(c):
		l.advance()
		return Token{Kind: Punct, Raw: string(c), Pos: l.pos()}, nil
	default:
		l.advance()
		return Token{}, l.lexErr("unexpected byte %q", c)
	}
}

func (l *Lexer) skipInsignificant() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == ';':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isPunct(b byte) bool {
	switch b {
	case '=', ',', '(', ')', '{', '}', '[', ']', '<', '>', '*':
		return true
	}
	return false
}

func (l *Lexer) lexIdentOrLabel() (Token, error) {
	for !l.atEnd() && support.IsBareIdentifierByte(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	if !l.atEnd() && l.peek() == ':' {
		l.advance()
		return Token{Kind: Label, Lexeme: text, Raw: l.source[l.start:l.current], Pos: l.pos()}, nil
	}
	return Token{Kind: Ident, Lexeme: text, Raw: text, Pos: l.pos()}, nil
}

func (l *Lexer) lexNumber() (Token, error) {
	if l.peek() == '-' {
		l.advance()
	}
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	if !l.atEnd() && (l.peek() == 'e' || l.peek() == 'E') {
		save := l.current
		l.advance()
		if !l.atEnd() && (l.peek() == '+' || l.peek() == '-') {
			l.advance()
		}
		if !l.atEnd() && isDigit(l.peek()) {
			for !l.atEnd() && isDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.current = save
		}
	}
	text := l.source[l.start:l.current]
	return Token{Kind: Number, Lexeme: text, Raw: text, Pos: l.pos()}, nil
}

// lexQuoted scans a "..." (or, if isByteString, c"...") literal and decodes
// its \\ and \xx escapes.
func (l *Lexer) lexQuoted(isByteString bool) (Token, error) {
	l.advance() // opening quote
	bodyStart := l.current
	for {
		if l.atEnd() {
			return Token{}, l.lexErr("unclosed quoted string")
		}
		c := l.peek()
		if c == '"' {
			break
		}
		if c == '\\' {
			l.advance()
			if l.atEnd() {
				return Token{}, l.lexErr("unclosed quoted string")
			}
			if l.peek() == '\\' {
				l.advance()
				continue
			}
			if !isHex(l.peek()) || !isHex(l.peekAt(1)) {
				return Token{}, l.lexErr("invalid escape in quoted string")
			}
			l.advance()
			l.advance()
			continue
		}
		l.advance()
	}
	body := l.source[bodyStart:l.current]
	l.advance() // closing quote
	decoded, err := support.Unwrap(body)
	if err != nil {
		return Token{}, l.lexErr("%s", err)
	}
	kind := QuotedString
	if isByteString {
		kind = ByteString
	}
	return Token{Kind: kind, Lexeme: decoded, Raw: l.source[l.start:l.current], Quoted: true, Pos: l.pos()}, nil
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// lexSigil scans a %, @ or $ prefixed name: either a quoted name, a numeric
// index, or a bare identifier.
func (l *Lexer) lexSigil() (Token, error) {
	sigil := l.advance()
	var kind Kind
	switch sigil {
	case '%':
		kind = LocalName
	case '@':
		kind = GlobalName
	case '$':
		kind = ComdatName
	}
	if !l.atEnd() && l.peek() == '"' {
		tok, err := l.lexQuoted(false)
		if err != nil {
			return tok, err
		}
		tok.Kind = kind
		tok.Raw = string(sigil) + tok.Raw
		return tok, nil
	}
	nameStart := l.current
	if !l.atEnd() && isDigit(l.peek()) {
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	} else {
		for !l.atEnd() && support.IsBareIdentifierByte(l.peek()) {
			l.advance()
		}
	}
	if l.current == nameStart {
		return Token{}, l.lexErr("expected a name after sigil %q", string(sigil))
	}
	name := l.source[nameStart:l.current]
	return Token{Kind: kind, Lexeme: name, Raw: l.source[l.start:l.current], Pos: l.pos()}, nil
}
