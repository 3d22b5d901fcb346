package parser

import (
	"math/big"

	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/lexer"
	"github.com/hassan/olivine/internal/types"
)

// parseInstructionLine parses one instruction or block-label line.
func (p *Parser) parseInstructionLine() (*ir.Instruction, error) {
	tok := p.cur()
	switch {
	case tok.Kind == lexer.Label:
		p.advance()
		return ir.Block(ir.LabelTerm(buildRef(tok))), nil
	case tok.Kind == lexer.LocalName:
		lvalTok := p.advance()
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		return p.parseAssignment(buildRef(lvalTok))
	case tok.Kind == lexer.Ident:
		switch tok.Lexeme {
		case "br":
			return p.parseBr()
		case "store":
			return p.parseStore()
		case "switch":
			return p.parseSwitch()
		case "ret":
			return p.parseRet()
		case "unreachable":
			p.advance()
			return ir.Unreachable(), nil
		case "call":
			callTerm, err := p.parseCallTerm()
			if err != nil {
				return nil, err
			}
			return ir.Drop(callTerm), nil
		default:
			return nil, p.errf("unknown instruction %q", tok.Lexeme)
		}
	default:
		return nil, p.errf("expected an instruction")
	}
}

func (p *Parser) parseLabelOperand() (*ir.Term, error) {
	if err := p.expectIdent("label"); err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.LocalName {
		return nil, p.errf("expected a label name")
	}
	tok := p.advance()
	return ir.LabelTerm(buildRef(tok)), nil
}

func (p *Parser) parseBr() (*ir.Instruction, error) {
	p.advance() // "br"
	if p.cur().Kind == lexer.Ident && p.cur().Lexeme == "label" {
		target, err := p.parseLabelOperand()
		if err != nil {
			return nil, err
		}
		return ir.Jmp(target), nil
	}
	condType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseValueGivenType(condType)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	trueLabel, err := p.parseLabelOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	falseLabel, err := p.parseLabelOperand()
	if err != nil {
		return nil, err
	}
	return ir.Br(cond, trueLabel, falseLabel), nil
}

func (p *Parser) parseStore() (*ir.Instruction, error) {
	p.advance() // "store"
	valType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValueGivenType(valType)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	ptrType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	ptr, err := p.parseValueGivenType(ptrType)
	if err != nil {
		return nil, err
	}
	return ir.Store(val, ptr), nil
}

func (p *Parser) parseSwitch() (*ir.Instruction, error) {
	p.advance() // "switch"
	valType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValueGivenType(valType)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	defaultLabel, err := p.parseLabelOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var cases []ir.SwitchCase
	for !isPunctTok(p.cur(), "]") {
		caseType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		caseVal, err := p.parseValueGivenType(caseType)
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		caseLabel, err := p.parseLabelOperand()
		if err != nil {
			return nil, err
		}
		cases = append(cases, ir.SwitchCase{Value: caseVal, Label: caseLabel})
		p.skipNewlines()
	}
	p.advance() // "]"
	return ir.Switch(val, defaultLabel, cases), nil
}

func (p *Parser) parseRet() (*ir.Instruction, error) {
	p.advance() // "ret"
	if p.cur().Kind == lexer.Ident && p.cur().Lexeme == "void" {
		p.advance()
		return ir.RetVoid(), nil
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValueGivenType(typ)
	if err != nil {
		return nil, err
	}
	return ir.Ret(val), nil
}

func (p *Parser) parseCallTerm() (*ir.Term, error) {
	p.advance() // "call"
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	tok := p.cur()
	if tok.Kind != lexer.GlobalName && tok.Kind != lexer.LocalName {
		return nil, p.errf("expected a callee")
	}
	p.advance()
	calleeRef := buildRef(tok)
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []*ir.Term
	var argTypes []*types.Type
	if !isPunctTok(p.cur(), ")") {
		for {
			p.skipAttributes()
			at, err := p.parseType()
			if err != nil {
				return nil, err
			}
			av, err := p.parseValueGivenType(at)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
			argTypes = append(argTypes, at)
			if isPunctTok(p.cur(), ",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	fnType := types.FnType(retType, argTypes)
	var callee *ir.Term
	if tok.Kind == lexer.GlobalName {
		callee = ir.GlobalRefTerm(calleeRef, fnType)
	} else {
		callee = ir.VarTerm(calleeRef, fnType)
	}
	return ir.CallTerm(callee, args)
}

func (p *Parser) parseAssignment(lval ir.Ref) (*ir.Instruction, error) {
	tok := p.cur()
	if tok.Kind == lexer.Ident && tok.Lexeme == "alloca" {
		return p.parseAlloca(lval)
	}
	if tok.Kind == lexer.Ident && tok.Lexeme == "phi" {
		return p.parsePhi(lval)
	}
	rhs, err := p.parseRHSExpr()
	if err != nil {
		return nil, err
	}
	return ir.Assign(ir.VarTerm(lval, rhs.Type()), rhs), nil
}

func (p *Parser) parseAlloca(lval ir.Ref) (*ir.Instruction, error) {
	p.advance() // "alloca"
	elemType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var count *ir.Term
	if isPunctTok(p.cur(), ",") {
		p.advance()
		countType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		count, err = p.parseValueGivenType(countType)
		if err != nil {
			return nil, err
		}
	} else {
		count, err = ir.IntTerm(types.IntType(64), big.NewInt(1))
		if err != nil {
			return nil, err
		}
	}
	lhs := ir.VarTerm(lval, types.PtrType())
	return ir.Alloca(lhs, ir.TypeWitness(elemType), count), nil
}

func (p *Parser) parsePhi(lval ir.Ref) (*ir.Instruction, error) {
	p.advance() // "phi"
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var pairs []ir.PhiPair
	for {
		if err := p.expectPunct("["); err != nil {
			return nil, err
		}
		val, err := p.parseValueGivenType(typ)
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		if p.cur().Kind != lexer.LocalName {
			return nil, p.errf("expected a predecessor label")
		}
		labelTok := p.advance()
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		pairs = append(pairs, ir.PhiPair{Value: val, Label: ir.LabelTerm(buildRef(labelTok))})
		if isPunctTok(p.cur(), ",") {
			p.advance()
			continue
		}
		break
	}
	return ir.Phi(ir.VarTerm(lval, typ), pairs), nil
}

// parseRHSExpr parses the right-hand side of an assignment that is not
// alloca or phi (those are handled by the caller since they need the lval
// directly).
func (p *Parser) parseRHSExpr() (*ir.Term, error) {
	tok := p.cur()
	if tok.Kind != lexer.Ident {
		return nil, p.errf("expected an expression")
	}
	switch {
	case tok.Lexeme == "call":
		return p.parseCallTerm()
	case tok.Lexeme == "load":
		p.advance()
		resultType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		ptrType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ptr, err := p.parseValueGivenType(ptrType)
		if err != nil {
			return nil, err
		}
		return ir.Load(ptr, resultType)
	case tok.Lexeme == "getelementptr":
		return p.parseGEP()
	case tok.Lexeme == "icmp":
		return p.parseIcmp()
	case tok.Lexeme == "fcmp":
		return p.parseFcmp()
	case tok.Lexeme == "not":
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		v, err := p.parseValueGivenType(t)
		if err != nil {
			return nil, err
		}
		return ir.Not(v)
	case tok.Lexeme == "fneg":
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		v, err := p.parseValueGivenType(t)
		if err != nil {
			return nil, err
		}
		return ir.FNeg(v)
	case castKeywords[tok.Lexeme]:
		return p.parseCast(tok.Lexeme)
	default:
		if tag, ok := binOpKeywords[tok.Lexeme]; ok {
			return p.parseBinOp(tag)
		}
		return nil, p.errf("unknown expression %q", tok.Lexeme)
	}
}

func (p *Parser) parseBinOp(tag ir.Tag) (*ir.Term, error) {
	p.advance()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	a, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	b, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	return ir.BinOp(tag, a, b)
}

func (p *Parser) parseCast(mnemonic string) (*ir.Term, error) {
	p.advance()
	srcType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValueGivenType(srcType)
	if err != nil {
		return nil, err
	}
	if err := p.expectIdent("to"); err != nil {
		return nil, err
	}
	dstType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if signedCasts[mnemonic] {
		return ir.SCast(val, dstType)
	}
	return ir.Cast(val, dstType)
}

var icmpPreds = map[string]func(a, b *ir.Term) (*ir.Term, error){
	"eq": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagEq, a, b) },
	"ne": func(a, b *ir.Term) (*ir.Term, error) {
		eq, err := ir.Cmp(ir.TagEq, a, b)
		if err != nil {
			return nil, err
		}
		return ir.Not(eq)
	},
	"ult": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagULt, a, b) },
	"ule": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagULe, a, b) },
	"ugt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagULt, b, a) },
	"uge": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagULe, b, a) },
	"slt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagSLt, a, b) },
	"sle": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagSLe, a, b) },
	"sgt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagSLt, b, a) },
	"sge": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagSLe, b, a) },
}

func (p *Parser) parseIcmp() (*ir.Term, error) {
	p.advance() // "icmp"
	if p.cur().Kind != lexer.Ident {
		return nil, p.errf("expected an icmp predicate")
	}
	predTok := p.advance()
	build, ok := icmpPreds[predTok.Lexeme]
	if !ok {
		return nil, p.errf("unknown icmp predicate %q", predTok.Lexeme)
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	a, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	b, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	return build(a, b)
}

// fcmpPreds maps fcmp predicates onto FEq/FLt/FLe (no distinction between
// ordered and unordered comparisons, per the spec's deferral of floating
// semantics beyond constant-folding scope).
var fcmpPreds = map[string]func(a, b *ir.Term) (*ir.Term, error){
	"oeq": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFEq, a, b) },
	"eq":  func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFEq, a, b) },
	"one": fcmpNe, "ne": fcmpNe, "une": fcmpNe,
	"olt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, a, b) },
	"ult": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, a, b) },
	"lt":  func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, a, b) },
	"ole": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, a, b) },
	"ule": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, a, b) },
	"le":  func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, a, b) },
	"ogt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, b, a) },
	"ugt": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, b, a) },
	"gt":  func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLt, b, a) },
	"oge": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, b, a) },
	"uge": func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, b, a) },
	"ge":  func(a, b *ir.Term) (*ir.Term, error) { return ir.Cmp(ir.TagFLe, b, a) },
}

func fcmpNe(a, b *ir.Term) (*ir.Term, error) {
	eq, err := ir.Cmp(ir.TagFEq, a, b)
	if err != nil {
		return nil, err
	}
	return ir.Not(eq)
}

func (p *Parser) parseFcmp() (*ir.Term, error) {
	p.advance() // "fcmp"
	if p.cur().Kind != lexer.Ident {
		return nil, p.errf("expected an fcmp predicate")
	}
	predTok := p.advance()
	build, ok := fcmpPreds[predTok.Lexeme]
	if !ok {
		return nil, p.errf("unknown fcmp predicate %q", predTok.Lexeme)
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	a, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	b, err := p.parseValueGivenType(t)
	if err != nil {
		return nil, err
	}
	return build(a, b)
}

func constIndex(t *ir.Term) (int, error) {
	if t.Tag() != ir.TagInt {
		return 0, diag.New(diag.TypeErr, "struct index must be a constant integer")
	}
	return int(t.IntValue().Int64()), nil
}

// parseGEP lowers getelementptr by recursion: at each index, FieldPtr is
// used if the current type is a Struct, ElementPtr otherwise.
func (p *Parser) parseGEP() (*ir.Term, error) {
	p.advance() // "getelementptr"
	elemType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(","); err != nil {
		return nil, err
	}
	baseType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	result, err := p.parseValueGivenType(baseType)
	if err != nil {
		return nil, err
	}
	current := elemType
	for isPunctTok(p.cur(), ",") {
		p.advance()
		idxType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		idx, err := p.parseValueGivenType(idxType)
		if err != nil {
			return nil, err
		}
		if current.Kind() == types.Struct {
			fieldIdx, err := constIndex(idx)
			if err != nil {
				return nil, err
			}
			fields := current.Fields()
			if fieldIdx < 0 || fieldIdx >= len(fields) {
				return nil, diag.New(diag.TypeErr, "struct index %d out of range", fieldIdx)
			}
			fieldType := fields[fieldIdx]
			result, err = ir.FieldPtr(ir.TypeWitness(fieldType), result, idx)
			if err != nil {
				return nil, err
			}
			current = fieldType
		} else {
			elem := current
			if current.Kind() == types.Array || current.Kind() == types.Vec {
				elem = current.Elem()
			}
			result, err = ir.ElementPtr(ir.TypeWitness(elem), result, idx)
			if err != nil {
				return nil, err
			}
			current = elem
		}
	}
	return result, nil
}
