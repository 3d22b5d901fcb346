// Package diag defines the error kinds shared across the lexer, parser, IR,
// validator and transform packages, and a small constructor that wraps a
// message with github.com/pkg/errors so CLI callers get a Cause()-walkable
// chain without each package re-inventing one.
package diag

import "github.com/pkg/errors"

// Kind names one of the error categories from the error-handling design:
// lexical and syntax errors from the parser, type errors from term/instruction
// construction, link errors from module merging, validation errors from
// function-body checking, and domain errors from fixed-width arithmetic.
type Kind string

const (
	Lexical    Kind = "lexical error"
	Syntax     Kind = "syntax error"
	TypeErr    Kind = "type error"
	Link       Kind = "link error"
	Validation Kind = "validation error"
	Domain     Kind = "domain error"
)

// Error is a fatal, non-recoverable condition carrying its category and a
// human-readable message. Parser-originated errors additionally carry a
// file/line/token via Positioned below.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// New builds a plain, position-free Error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: errors.Errorf(format, args...).Error()})
}

// Positioned is a parser diagnostic: file name, 1-based line, and the
// offending token text (already rendered with "newline" substituted for a
// literal newline token).
type Positioned struct {
	Kind    Kind
	File    string
	Line    int
	Token   string
	Message string
}

func (e *Positioned) Error() string {
	return string(e.Kind) + ": " + e.File + ":" + itoa(e.Line) + ": unexpected \"" + e.Token + "\": " + e.Message
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// NewPositioned builds a parser diagnostic.
func NewPositioned(kind Kind, file string, line int, token, message string) error {
	return errors.WithStack(&Positioned{Kind: kind, File: file, Line: line, Token: token, Message: message})
}
