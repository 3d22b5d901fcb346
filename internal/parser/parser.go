// Package parser implements a recursive-descent parser that builds an
// ir.Module directly from IR source text, using the lexer's token stream.
// Operand types are always read from the text before the operand itself,
// so the parser never needs to infer a term's type.
package parser

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/lexer"
	"github.com/hassan/olivine/internal/types"
)

// linkageKeywords are recognized and discarded: they carry no semantics in
// the core model beyond marking a global/function as internal or external.
var linkageKeywords = map[string]bool{
	"private": true, "internal": true, "available_externally": true,
	"linkonce": true, "weak": true, "common": true, "appending": true,
	"extern_weak": true, "linkonce_odr": true, "weak_odr": true,
	"external": true, "dso_local": true, "dso_preemptable": true,
}

// paramAttrs are recognized and discarded parameter/argument attributes.
var paramAttrs = map[string]bool{
	"noundef": true, "nuw": true, "nsw": true, "exact": true, "inbounds": true,
	"fast": true, "nnan": true, "ninf": true, "nsz": true,
}

// binOpKeywords maps an instruction mnemonic to its Term tag.
var binOpKeywords = map[string]ir.Tag{
	"add": ir.TagAdd, "sub": ir.TagSub, "mul": ir.TagMul,
	"udiv": ir.TagUDiv, "sdiv": ir.TagSDiv, "urem": ir.TagURem, "srem": ir.TagSRem,
	"and": ir.TagAnd, "or": ir.TagOr, "xor": ir.TagXor,
	"shl": ir.TagShl, "lshr": ir.TagLShr, "ashr": ir.TagAShr,
	"fadd": ir.TagFAdd, "fsub": ir.TagFSub, "fmul": ir.TagFMul, "fdiv": ir.TagFDiv, "frem": ir.TagFRem,
}

// castKeywords lists the cast mnemonics; signedCasts marks the subset
// lowered to SCast rather than Cast.
var castKeywords = map[string]bool{
	"trunc": true, "zext": true, "sext": true, "fptrunc": true, "fpext": true,
	"fptoui": true, "fptosi": true, "uitofp": true, "sitofp": true,
	"ptrtoint": true, "inttoptr": true, "bitcast": true,
}

var signedCasts = map[string]bool{"sext": true, "fptosi": true, "sitofp": true}

// Parser consumes a pre-tokenized IR source and builds an ir.Module.
type Parser struct {
	toks     []lexer.Token
	pos      int
	filename string
}

// Parse tokenizes and parses src, attributed to filename in diagnostics.
func Parse(src, filename string) (*ir.Module, error) {
	toks, err := tokenize(src, filename)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, filename: filename}
	return p.parseModule()
}

func tokenize(src, filename string) ([]lexer.Token, error) {
	l := lexer.New(src, filename)
	var toks []lexer.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			return toks, nil
		}
	}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == lexer.Newline {
		p.advance()
	}
}

func (p *Parser) errf(format string, args ...interface{}) error {
	tok := p.cur()
	return diag.NewPositioned(diag.Syntax, p.filename, tok.Pos.Line, tok.Text(), fmt.Sprintf(format, args...))
}

func (p *Parser) expectIdent(word string) error {
	if p.cur().Kind != lexer.Ident || p.cur().Lexeme != word {
		return p.errf("expected %q", word)
	}
	p.advance()
	return nil
}

func isPunctTok(tok lexer.Token, raw string) bool {
	return tok.Kind == lexer.Punct && tok.Raw == raw
}

func (p *Parser) expectPunct(raw string) error {
	if !isPunctTok(p.cur(), raw) {
		return p.errf("expected %q", raw)
	}
	p.advance()
	return nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// buildRef turns a sigil-name token into a Ref. A quoted spelling (%"5")
// always names a string Ref even when its text is all digits; only a bare,
// unquoted all-digit spelling (%5) is a numeric Ref.
func buildRef(tok lexer.Token) ir.Ref {
	if !tok.Quoted && isAllDigits(tok.Lexeme) {
		if n, err := strconv.ParseUint(tok.Lexeme, 10, 64); err == nil && n != ir.NoIndex {
			return ir.RefIndex(n)
		}
	}
	return ir.RefName(tok.Lexeme)
}

func (p *Parser) skipLinkageKeywords() map[string]bool {
	seen := map[string]bool{}
	for p.cur().Kind == lexer.Ident && linkageKeywords[p.cur().Lexeme] {
		seen[p.cur().Lexeme] = true
		p.advance()
	}
	return seen
}

func (p *Parser) skipAttributes() {
	for p.cur().Kind == lexer.Ident && paramAttrs[p.cur().Lexeme] {
		p.advance()
	}
}

// parseModule is the top-level grammar entry point.
func (p *Parser) parseModule() (*ir.Module, error) {
	mod := ir.NewModule()
	p.skipNewlines()
	for p.cur().Kind != lexer.EOF {
		var err error
		switch {
		case p.cur().Kind == lexer.Ident && p.cur().Lexeme == "target":
			err = p.parseTargetDirective(mod)
		case p.cur().Kind == lexer.ComdatName:
			err = p.parseComdat(mod)
		case p.cur().Kind == lexer.GlobalName:
			err = p.parseGlobal(mod)
		case p.cur().Kind == lexer.Ident && (p.cur().Lexeme == "declare" || p.cur().Lexeme == "define"):
			err = p.parseFunction(mod)
		default:
			err = p.errf("expected a top-level declaration")
		}
		if err != nil {
			return nil, err
		}
		p.skipNewlines()
	}
	return mod, nil
}

func (p *Parser) parseTargetDirective(mod *ir.Module) error {
	p.advance() // "target"
	kindTok := p.cur()
	if kindTok.Kind != lexer.Ident || (kindTok.Lexeme != "datalayout" && kindTok.Lexeme != "triple") {
		return p.errf("expected \"datalayout\" or \"triple\"")
	}
	p.advance()
	if err := p.expectPunct("="); err != nil {
		return err
	}
	if p.cur().Kind != lexer.QuotedString {
		return p.errf("expected a quoted string")
	}
	value := p.advance().Lexeme
	if kindTok.Lexeme == "datalayout" {
		mod.DataLayout = value
	} else {
		mod.TargetTriple = value
	}
	return nil
}

func (p *Parser) parseComdat(mod *ir.Module) error {
	nameTok := p.advance() // $name
	if err := p.expectPunct("="); err != nil {
		return err
	}
	if err := p.expectIdent("comdat"); err != nil {
		return err
	}
	if p.cur().Kind != lexer.Ident {
		return p.errf("expected a comdat selection kind")
	}
	p.advance() // selection kind (any, exactmatch, ...), semantics unused
	mod.Comdats[nameTok.Lexeme] = true
	return nil
}

func (p *Parser) parseGlobal(mod *ir.Module) error {
	nameTok := p.advance() // @name
	if err := p.expectPunct("="); err != nil {
		return err
	}
	linkage := p.skipLinkageKeywords()
	isConstant := false
	switch {
	case p.cur().Kind == lexer.Ident && p.cur().Lexeme == "global":
		p.advance()
	case p.cur().Kind == lexer.Ident && p.cur().Lexeme == "constant":
		p.advance()
		isConstant = true
	default:
		return p.errf("expected \"global\" or \"constant\"")
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	var init *ir.Term
	if p.cur().Kind != lexer.Newline && p.cur().Kind != lexer.EOF {
		init, err = p.parseValueGivenType(typ)
		if err != nil {
			return err
		}
	}
	ref := buildRef(nameTok)
	g := ir.NewGlobal(typ, ref, init)
	g.Constant = isConstant
	mod.Globals = append(mod.Globals, g)
	if linkage["external"] || linkage["extern_weak"] || init == nil {
		mod.MarkExternal(ref)
	}
	return nil
}

func (p *Parser) parseFunction(mod *ir.Module) error {
	isDefine := p.advance().Lexeme == "define"
	linkage := p.skipLinkageKeywords()
	retType, err := p.parseType()
	if err != nil {
		return err
	}
	if p.cur().Kind != lexer.GlobalName {
		return p.errf("expected a function name")
	}
	nameTok := p.advance()
	params, variadic, err := p.parseParamList()
	if err != nil {
		return err
	}
	var body []*ir.Instruction
	if isDefine {
		p.skipLinkageKeywords() // trailing attributes before '{' on some dialects
		if err := p.expectPunct("{"); err != nil {
			return err
		}
		p.skipNewlines()
		for !isPunctTok(p.cur(), "}") {
			inst, err := p.parseInstructionLine()
			if err != nil {
				return err
			}
			body = append(body, inst)
			p.skipNewlines()
		}
		p.advance() // "}"
	}
	ref := buildRef(nameTok)
	fn := ir.NewFunction(retType, ref, params, body)
	fn.Variadic = variadic
	if isDefine {
		mod.Definitions = append(mod.Definitions, fn)
		if !linkage["internal"] && !linkage["private"] {
			mod.MarkExternal(ref)
		}
	} else {
		mod.Declarations = append(mod.Declarations, fn)
		mod.MarkExternal(ref)
	}
	return nil
}

func (p *Parser) parseParamList() ([]*ir.Term, bool, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, false, err
	}
	var params []*ir.Term
	variadic := false
	idx := uint64(0)
	if !isPunctTok(p.cur(), ")") {
		for {
			if p.cur().Kind == lexer.Ellipsis {
				p.advance()
				variadic = true
				break
			}
			p.skipAttributes()
			ptype, err := p.parseType()
			if err != nil {
				return nil, false, err
			}
			var ref ir.Ref
			if p.cur().Kind == lexer.LocalName {
				ref = buildRef(p.advance())
			} else {
				ref = ir.RefIndex(idx)
			}
			idx++
			params = append(params, ir.VarTerm(ref, ptype))
			if isPunctTok(p.cur(), ",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

// parseType parses a Type per the LLVM-style spelling grammar.
func (p *Parser) parseType() (*types.Type, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Ident:
		switch {
		case tok.Lexeme == "void":
			p.advance()
			return types.VoidType(), nil
		case tok.Lexeme == "float":
			p.advance()
			return types.FloatType(), nil
		case tok.Lexeme == "double":
			p.advance()
			return types.DoubleType(), nil
		case tok.Lexeme == "ptr":
			p.advance()
			return types.PtrType(), nil
		case len(tok.Lexeme) > 1 && tok.Lexeme[0] == 'i' && isAllDigits(tok.Lexeme[1:]):
			n, err := strconv.Atoi(tok.Lexeme[1:])
			if err != nil || n < 1 {
				return nil, p.errf("invalid integer bit width %q", tok.Lexeme)
			}
			p.advance()
			return types.IntType(n), nil
		default:
			return nil, p.errf("expected a type")
		}
	case lexer.Punct:
		switch tok.Raw {
		case "[":
			return p.parseArrayOrVecType(false)
		case "<":
			return p.parseArrayOrVecType(true)
		case "{":
			return p.parseStructType()
		default:
			return nil, p.errf("expected a type")
		}
	default:
		return nil, p.errf("expected a type")
	}
}

func (p *Parser) parseArrayOrVecType(isVec bool) (*types.Type, error) {
	open, close := "[", "]"
	if isVec {
		open, close = "<", ">"
	}
	if err := p.expectPunct(open); err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.Number {
		return nil, p.errf("expected a length")
	}
	n, err := strconv.Atoi(p.advance().Lexeme)
	if err != nil || n < 0 {
		return nil, p.errf("invalid length")
	}
	if err := p.expectIdent("x"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if elem.Kind() == types.Void {
		return nil, diag.New(diag.TypeErr, "%s: array/vector element type cannot be void", p.cur().Pos)
	}
	if err := p.expectPunct(close); err != nil {
		return nil, err
	}
	if isVec {
		return types.VecType(n, elem), nil
	}
	return types.ArrayType(n, elem), nil
}

func (p *Parser) parseStructType() (*types.Type, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var fields []*types.Type
	if !isPunctTok(p.cur(), "}") {
		for {
			ft, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if ft.Kind() == types.Void {
				return nil, diag.New(diag.TypeErr, "%s: struct field type cannot be void", p.cur().Pos)
			}
			fields = append(fields, ft)
			if isPunctTok(p.cur(), ",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return types.StructType(fields), nil
}

// zeroValue builds a canonical zero term of the given type, used for the
// "zeroinitializer" and "undef" keywords.
func zeroValue(t *types.Type) (*ir.Term, error) {
	switch t.Kind() {
	case types.Int:
		return ir.IntTerm(t, big.NewInt(0))
	case types.Float, types.Double:
		return ir.FloatTerm(t, "0.0")
	case types.Ptr:
		return ir.NullTerm(), nil
	case types.Array:
		elem, err := zeroValue(t.Elem())
		if err != nil {
			return nil, err
		}
		children := make([]*ir.Term, t.Len())
		for i := range children {
			children[i] = elem
		}
		return ir.ArrayTerm(t.Elem(), children)
	case types.Vec:
		elem, err := zeroValue(t.Elem())
		if err != nil {
			return nil, err
		}
		children := make([]*ir.Term, t.Len())
		for i := range children {
			children[i] = elem
		}
		return ir.VecTerm(t.Elem(), children)
	case types.Struct:
		fields := t.Fields()
		children := make([]*ir.Term, len(fields))
		for i, f := range fields {
			c, err := zeroValue(f)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return ir.TupleTerm(t, children)
	default:
		return nil, diag.New(diag.TypeErr, "no zero value for type %s", t)
	}
}

// parseValueGivenType parses a value whose static type has already been
// read as t.
func (p *Parser) parseValueGivenType(t *types.Type) (*ir.Term, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Ident:
		switch tok.Lexeme {
		case "null":
			p.advance()
			return ir.NullTerm(), nil
		case "true":
			p.advance()
			return ir.IntTerm(t, big.NewInt(1))
		case "false":
			p.advance()
			return ir.IntTerm(t, big.NewInt(0))
		case "zeroinitializer", "undef":
			p.advance()
			return zeroValue(t)
		default:
			return nil, p.errf("expected a value")
		}
	case lexer.Number:
		p.advance()
		if types.IsFloat(t) {
			return ir.FloatTerm(t, tok.Lexeme)
		}
		v, ok := new(big.Int).SetString(tok.Lexeme, 10)
		if !ok {
			return nil, p.errf("invalid integer literal %q", tok.Lexeme)
		}
		return ir.IntTerm(t, v)
	case lexer.LocalName:
		p.advance()
		return ir.VarTerm(buildRef(tok), t), nil
	case lexer.GlobalName:
		p.advance()
		return ir.GlobalRefTerm(buildRef(tok), t), nil
	case lexer.ByteString:
		p.advance()
		i8 := types.IntType(8)
		bytes := []byte(tok.Lexeme)
		children := make([]*ir.Term, len(bytes))
		for i, b := range bytes {
			c, err := ir.IntTerm(i8, big.NewInt(int64(b)))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return ir.ArrayTerm(i8, children)
	case lexer.Punct:
		switch tok.Raw {
		case "[":
			return p.parseAggregateLiteral("[", "]", func(elem *types.Type, children []*ir.Term) (*ir.Term, error) {
				return ir.ArrayTerm(elem, children)
			}, t)
		case "<":
			return p.parseAggregateLiteral("<", ">", func(elem *types.Type, children []*ir.Term) (*ir.Term, error) {
				return ir.VecTerm(elem, children)
			}, t)
		case "{":
			p.advance()
			var children []*ir.Term
			if !isPunctTok(p.cur(), "}") {
				for {
					ct, err := p.parseType()
					if err != nil {
						return nil, err
					}
					cv, err := p.parseValueGivenType(ct)
					if err != nil {
						return nil, err
					}
					children = append(children, cv)
					if isPunctTok(p.cur(), ",") {
						p.advance()
						continue
					}
					break
				}
			}
			if err := p.expectPunct("}"); err != nil {
				return nil, err
			}
			return ir.TupleTerm(t, children)
		default:
			return nil, p.errf("expected a value")
		}
	default:
		return nil, p.errf("expected a value")
	}
}

func (p *Parser) parseAggregateLiteral(open, closeTok string, build func(*types.Type, []*ir.Term) (*ir.Term, error), t *types.Type) (*ir.Term, error) {
	if err := p.expectPunct(open); err != nil {
		return nil, err
	}
	var children []*ir.Term
	var elem *types.Type
	if t.Kind() == types.Array || t.Kind() == types.Vec {
		elem = t.Elem()
	}
	if !isPunctTok(p.cur(), closeTok) {
		for {
			ct, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if elem == nil {
				elem = ct
			}
			cv, err := p.parseValueGivenType(ct)
			if err != nil {
				return nil, err
			}
			children = append(children, cv)
			if isPunctTok(p.cur(), ",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(closeTok); err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, p.errf("cannot infer element type of an empty aggregate")
	}
	return build(elem, children)
}
