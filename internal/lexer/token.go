package lexer

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	Invalid
	Newline

	Ident        // bare identifier or keyword
	Label        // identifier that was immediately followed by ':'
	LocalName    // %name or %N (sigil stripped, name in Lexeme)
	GlobalName   // @name or @N
	ComdatName   // $name
	QuotedString // "..." literal, escapes already decoded into Lexeme
	ByteString   // c"..." literal, escapes already decoded into Lexeme
	Number       // numeric literal, raw text preserved in Lexeme
	Punct        // single punctuation byte: = , ( ) { } [ ] < > *
	Ellipsis     // the literal token "..."
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Invalid:
		return "Invalid"
	case Newline:
		return "newline"
	case Ident:
		return "Ident"
	case Label:
		return "Label"
	case LocalName:
		return "LocalName"
	case GlobalName:
		return "GlobalName"
	case ComdatName:
		return "ComdatName"
	case QuotedString:
		return "QuotedString"
	case ByteString:
		return "ByteString"
	case Number:
		return "Number"
	case Punct:
		return "Punct"
	case Ellipsis:
		return "Ellipsis"
	default:
		return "Unknown"
	}
}

// Token is one lexical unit. Lexeme holds the decoded text (escapes already
// resolved for string-shaped kinds); Raw preserves the exact source bytes
// for diagnostics. Quoted records whether Lexeme came from a "..." spelling
// (as opposed to a bare/numeric spelling), which a sigil name needs to know
// to tell an all-digit string Ref like %"5" apart from the numeric Ref %5.
type Token struct {
	Kind   Kind
	Lexeme string
	Raw    string
	Quoted bool
	Pos    Position
}

// Text renders the token for error messages; a Newline token renders as the
// word "newline" per the diagnostic spelling rule.
func (t Token) Text() string {
	if t.Kind == Newline {
		return "newline"
	}
	if t.Kind == EOF {
		return "EOF"
	}
	return t.Raw
}
