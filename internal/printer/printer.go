// Package printer renders an ir.Module back to LLVM-style IR text. A module
// whose instruction operands are single-level terms (the forms the parser
// itself builds from one instruction line) re-parses to a module equivalent
// (modulo sharing) to the one printed. Terms nested inside other terms are
// printed inline and do not re-parse: a Not over a comparison (as produced
// for icmp ne), a chain of pointer terms from a multi-index getelementptr,
// and an Assign whose right-hand side is a plain value. A FieldPtr whose
// element type is not a struct re-parses as an ElementPtr.
package printer

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/support"
	"github.com/hassan/olivine/internal/types"
)

// Module renders m in full.
func Module(m *ir.Module) string {
	var b strings.Builder
	if m.DataLayout != "" {
		fmt.Fprintf(&b, "target datalayout = \"%s\"\n", support.Wrap(m.DataLayout))
	}
	if m.TargetTriple != "" {
		fmt.Fprintf(&b, "target triple = \"%s\"\n", support.Wrap(m.TargetTriple))
	}
	for _, name := range m.SortedComdats() {
		fmt.Fprintf(&b, "$%s = comdat any\n", name)
	}
	for _, g := range m.Globals {
		b.WriteString(Global(g))
		b.WriteString("\n")
	}
	for _, fn := range m.Declarations {
		b.WriteString(Function(fn))
		b.WriteString("\n")
	}
	for _, fn := range m.Definitions {
		b.WriteString(Function(fn))
		b.WriteString("\n")
	}
	return b.String()
}

func refText(r ir.Ref) string {
	if !r.IsName() {
		return fmt.Sprintf("%d", r.Index())
	}
	return support.QuoteIdentifier(r.Name())
}

// Global renders a global variable declaration.
func Global(g *ir.Global) string {
	kind := "global"
	if g.Constant {
		kind = "constant"
	}
	s := fmt.Sprintf("@%s = %s %s", refText(g.Name), kind, Type(g.Typ))
	if g.Init != nil {
		s += " " + Term(g.Init)
	}
	return s
}

// Function renders a function declaration or definition.
func Function(fn *ir.Function) string {
	var b strings.Builder
	if fn.IsDeclaration() {
		b.WriteString("declare ")
	} else {
		b.WriteString("define ")
	}
	fmt.Fprintf(&b, "%s @%s(", Type(fn.Ret), refText(fn.Name))
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		ref, hasRef := p.Ref()
		if hasRef {
			parts[i] = fmt.Sprintf("%s %%%s", Type(p.Type()), refText(ref))
		} else {
			parts[i] = Type(p.Type())
		}
	}
	if fn.Variadic {
		parts = append(parts, "...")
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	if fn.IsDeclaration() {
		return b.String()
	}
	b.WriteString(" {\n")
	for _, inst := range fn.Body {
		b.WriteString(Instruction(inst))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Type renders t with LLVM-style spellings; this is simply types.Type's own
// String, kept as a named entry point for symmetry with Term/Instruction.
func Type(t *types.Type) string { return t.String() }

func localName(t *ir.Term) string {
	ref, _ := t.Ref()
	return "%" + refText(ref)
}

// Term renders a value or expression term in operand position (no leading
// type, since the grammar always prints the type separately before a value).
func Term(t *ir.Term) string {
	switch t.Tag() {
	case ir.TagNull:
		return "null"
	case ir.TagInt:
		if t.Type().Width() == 1 {
			if t.IntValue().Sign() == 0 {
				return "false"
			}
			return "true"
		}
		return t.IntValue().String()
	case ir.TagFloat:
		return t.FloatText()
	case ir.TagVar, ir.TagLabel:
		return localName(t)
	case ir.TagGlobalRef:
		ref, _ := t.Ref()
		return "@" + refText(ref)
	case ir.TagArray:
		if t.Type().Elem().Kind() == types.Int && t.Type().Elem().Width() == 8 && allByteConsts(t.Children()) {
			return byteString(t.Children())
		}
		return aggregateText("[", "]", t.Type().Elem(), t.Children())
	case ir.TagVec:
		return aggregateText("<", ">", t.Type().Elem(), t.Children())
	case ir.TagTuple:
		parts := make([]string, len(t.Children()))
		fields := t.Type().Fields()
		for i, c := range t.Children() {
			parts[i] = Type(fields[i]) + " " + Term(c)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ir.TagCall:
		return callText(t)
	case ir.TagAdd, ir.TagSub, ir.TagMul, ir.TagUDiv, ir.TagSDiv, ir.TagURem, ir.TagSRem,
		ir.TagAnd, ir.TagOr, ir.TagXor, ir.TagShl, ir.TagLShr, ir.TagAShr,
		ir.TagFAdd, ir.TagFSub, ir.TagFMul, ir.TagFDiv, ir.TagFRem:
		return binOpText(t)
	case ir.TagFNeg:
		return fmt.Sprintf("fneg %s %s", Type(t.Child(0).Type()), Term(t.Child(0)))
	case ir.TagEq, ir.TagULt, ir.TagULe, ir.TagSLt, ir.TagSLe:
		return fmt.Sprintf("icmp %s %s %s, %s", icmpMnemonic(t.Tag()), Type(t.Child(0).Type()), Term(t.Child(0)), Term(t.Child(1)))
	case ir.TagFEq, ir.TagFLt, ir.TagFLe:
		return fmt.Sprintf("fcmp %s %s %s, %s", fcmpMnemonic(t.Tag()), Type(t.Child(0).Type()), Term(t.Child(0)), Term(t.Child(1)))
	case ir.TagNot:
		return fmt.Sprintf("not %s %s", Type(t.Child(0).Type()), Term(t.Child(0)))
	case ir.TagCast, ir.TagSCast:
		return fmt.Sprintf("%s %s %s to %s", castMnemonic(t), Type(t.Child(0).Type()), Term(t.Child(0)), Type(t.Type()))
	case ir.TagLoad:
		return fmt.Sprintf("load %s, ptr %s", Type(t.Type()), Term(t.Child(0)))
	case ir.TagElementPtr, ir.TagFieldPtr:
		return gepText(t)
	default:
		return "<invalid term>"
	}
}

func allByteConsts(children []*ir.Term) bool {
	for _, c := range children {
		if c.Tag() != ir.TagInt {
			return false
		}
	}
	return len(children) > 0
}

func byteString(children []*ir.Term) string {
	bytes := make([]byte, len(children))
	for i, c := range children {
		bytes[i] = byte(c.IntValue().Int64())
	}
	return `c"` + support.Wrap(string(bytes)) + `"`
}

func aggregateText(open, closeTok string, elem *types.Type, children []*ir.Term) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = Type(elem) + " " + Term(c)
	}
	return open + strings.Join(parts, ", ") + closeTok
}

func callText(t *ir.Term) string {
	fn := t.Child(0)
	args := t.Children()[1:]
	parts := make([]string, len(args))
	params := fn.Type().Params()
	for i, a := range args {
		parts[i] = Type(params[i]) + " " + Term(a)
	}
	calleeText := Term(fn)
	return fmt.Sprintf("call %s %s(%s)", Type(t.Type()), calleeText, strings.Join(parts, ", "))
}

func binOpText(t *ir.Term) string {
	mnemonic := map[ir.Tag]string{
		ir.TagAdd: "add", ir.TagSub: "sub", ir.TagMul: "mul",
		ir.TagUDiv: "udiv", ir.TagSDiv: "sdiv", ir.TagURem: "urem", ir.TagSRem: "srem",
		ir.TagAnd: "and", ir.TagOr: "or", ir.TagXor: "xor",
		ir.TagShl: "shl", ir.TagLShr: "lshr", ir.TagAShr: "ashr",
		ir.TagFAdd: "fadd", ir.TagFSub: "fsub", ir.TagFMul: "fmul", ir.TagFDiv: "fdiv", ir.TagFRem: "frem",
	}[t.Tag()]
	return fmt.Sprintf("%s %s %s, %s", mnemonic, Type(t.Child(0).Type()), Term(t.Child(0)), Term(t.Child(1)))
}

func icmpMnemonic(tag ir.Tag) string {
	switch tag {
	case ir.TagEq:
		return "eq"
	case ir.TagULt:
		return "ult"
	case ir.TagULe:
		return "ule"
	case ir.TagSLt:
		return "slt"
	case ir.TagSLe:
		return "sle"
	default:
		return "eq"
	}
}

func fcmpMnemonic(tag ir.Tag) string {
	switch tag {
	case ir.TagFEq:
		return "oeq"
	case ir.TagFLt:
		return "olt"
	case ir.TagFLe:
		return "ole"
	default:
		return "oeq"
	}
}

// castMnemonic chooses an LLVM-accurate mnemonic from the operand/result
// type shapes; any mnemonic consistent with the pair is acceptable per the
// spec's printer tolerance, so width comparisons favor the simplest choice.
func castMnemonic(t *ir.Term) string {
	from, to := t.Child(0).Type(), t.Type()
	signed := t.Tag() == ir.TagSCast
	switch {
	case from.Kind() == types.Int && to.Kind() == types.Int:
		switch {
		case from.Width() < to.Width():
			if signed {
				return "sext"
			}
			return "zext"
		case from.Width() > to.Width():
			return "trunc"
		default:
			return "bitcast"
		}
	case from.Kind() == types.Int && to.Kind() == types.Ptr:
		return "inttoptr"
	case from.Kind() == types.Ptr && to.Kind() == types.Int:
		return "ptrtoint"
	case from.Kind() == types.Int && types.IsFloat(to):
		if signed {
			return "sitofp"
		}
		return "uitofp"
	case types.IsFloat(from) && to.Kind() == types.Int:
		if signed {
			return "fptosi"
		}
		return "fptoui"
	case from.Kind() == types.Float && to.Kind() == types.Double:
		return "fpext"
	case from.Kind() == types.Double && to.Kind() == types.Float:
		return "fptrunc"
	default:
		return "bitcast"
	}
}

func gepText(t *ir.Term) string {
	elemWitness, base, index := t.Child(0), t.Child(1), t.Child(2)
	return fmt.Sprintf("getelementptr %s, ptr %s, %s %s", Type(elemWitness.Type()), Term(base), Type(index.Type()), Term(index))
}

// Instruction renders one instruction or block-label line.
func Instruction(i *ir.Instruction) string {
	switch i.Op() {
	case ir.OpBlock:
		ref, _ := i.Operand(0).Ref()
		return refText(ref) + ":"
	case ir.OpAssign:
		return fmt.Sprintf("%s = %s", localName(i.Operand(0)), Term(i.Operand(1)))
	case ir.OpAlloca:
		lhs, elemWitness, count := i.Operand(0), i.Operand(1), i.Operand(2)
		if count.Tag() == ir.TagInt && count.IntValue().Cmp(big.NewInt(1)) == 0 {
			return fmt.Sprintf("%s = alloca %s", localName(lhs), Type(elemWitness.Type()))
		}
		return fmt.Sprintf("%s = alloca %s, %s %s", localName(lhs), Type(elemWitness.Type()), Type(count.Type()), Term(count))
	case ir.OpStore:
		value, pointer := i.Operand(0), i.Operand(1)
		return fmt.Sprintf("store %s %s, ptr %s", Type(value.Type()), Term(value), Term(pointer))
	case ir.OpBr:
		cond, tl, fl := i.Operand(0), i.Operand(1), i.Operand(2)
		return fmt.Sprintf("br i1 %s, label %s, label %s", Term(cond), Term(tl), Term(fl))
	case ir.OpJmp:
		return fmt.Sprintf("br label %s", Term(i.Operand(0)))
	case ir.OpPhi:
		target := i.PhiTarget()
		parts := make([]string, 0, len(i.PhiPairs()))
		for _, pair := range i.PhiPairs() {
			parts = append(parts, fmt.Sprintf("[ %s, %s ]", Term(pair.Value), Term(pair.Label)))
		}
		return fmt.Sprintf("%s = phi %s %s", localName(target), Type(target.Type()), strings.Join(parts, ", "))
	case ir.OpSwitch:
		value := i.SwitchValue()
		var b strings.Builder
		fmt.Fprintf(&b, "switch %s %s, label %s [\n", Type(value.Type()), Term(value), Term(i.SwitchDefault()))
		for _, c := range i.SwitchCases() {
			fmt.Fprintf(&b, "  %s %s, label %s\n", Type(c.Value.Type()), Term(c.Value), Term(c.Label))
		}
		b.WriteString("]")
		return b.String()
	case ir.OpRet:
		return fmt.Sprintf("ret %s %s", Type(i.Operand(0).Type()), Term(i.Operand(0)))
	case ir.OpRetVoid:
		return "ret void"
	case ir.OpDrop:
		return Term(i.Operand(0))
	case ir.OpUnreachable:
		return "unreachable"
	default:
		return "<invalid instruction>"
	}
}
