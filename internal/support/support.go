// Package support holds small parsing and formatting helpers shared by the
// lexer, parser and printer: identifier escaping, hex-digit parsing, and
// sigil handling for %/@/$ names.
package support

import (
	"fmt"
	"strconv"
	"strings"
)

// IsBareIdentifierByte reports whether b may appear in an unquoted
// identifier body: [A-Za-z0-9_.\-$].
func IsBareIdentifierByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '.' || b == '-' || b == '$':
		return true
	}
	return false
}

// IsBareIdentifierStart reports whether b may start an unquoted identifier:
// [A-Za-z_.].
func IsBareIdentifierStart(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z':
		return true
	case b == '_' || b == '.':
		return true
	}
	return false
}

// IsBareIdentifier reports whether s matches [A-Za-z_.][A-Za-z0-9_.\-$]*.
func IsBareIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if !IsBareIdentifierStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsBareIdentifierByte(s[i]) {
			return false
		}
	}
	return true
}

// ContainsAt reports whether the byte at index i in s is the start of an
// occurrence of substr. It exists as a small named predicate so call sites
// read like the grammar rules they implement (e.g. "does an escape start
// here").
func ContainsAt(s string, i int, substr string) bool {
	if i < 0 || i+len(substr) > len(s) {
		return false
	}
	return s[i:i+len(substr)] == substr
}

// ParseHexByte parses exactly two hex digits starting at s[i] and returns
// the decoded byte. ok is false if fewer than two hex digits are available.
func ParseHexByte(s string, i int) (b byte, ok bool) {
	if i+2 > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+2], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

// Unwrap decodes a quoted-identifier body (the bytes between the opening
// and closing quote, with the quote removed) per the \\ and \xx escape
// rules: \\ is a literal backslash, \xx is two hex digits forming a byte.
func Unwrap(body string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			out.WriteByte(body[i])
			continue
		}
		if i+1 < len(body) && body[i+1] == '\\' {
			out.WriteByte('\\')
			i++
			continue
		}
		b, ok := ParseHexByte(body, i+1)
		if !ok {
			return "", fmt.Errorf("support: invalid escape at offset %d in %q", i, body)
		}
		out.WriteByte(b)
		i += 2
	}
	return out.String(), nil
}

// Wrap encodes s as the body of a quoted identifier: backslash becomes \\,
// the quote character and any byte outside the printable ASCII range
// 32-126 become \xx (lowercase hex).
func Wrap(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			out.WriteString(`\\`)
		case c == '"' || c < 32 || c > 126:
			fmt.Fprintf(&out, `\%02x`, c)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// QuoteIdentifier renders name as printer output: bare if it already
// matches the unquoted identifier grammar, quoted otherwise.
func QuoteIdentifier(name string) string {
	if IsBareIdentifier(name) {
		return name
	}
	return `"` + Wrap(name) + `"`
}

// RemoveSigil strips a single leading %, @ or $ sigil byte, if present.
func RemoveSigil(tok string) string {
	if len(tok) == 0 {
		return tok
	}
	switch tok[0] {
	case '%', '@', '$':
		return tok[1:]
	default:
		return tok
	}
}

// CurrentLine counts 1-based line numbers by counting newlines in the
// consumed prefix src[:offset].
func CurrentLine(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return 1 + strings.Count(src[:offset], "\n")
}
