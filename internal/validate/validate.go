// Package validate implements the structural and typing checks that the
// rest of the system relies on: per-term and per-instruction invariants,
// and the whole-function consistency rules (label targets, variable
// typing, phi absence, terminator placement).
package validate

import (
	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

// Term re-checks the local invariant a term's own tag implies, by
// reconstructing it through the matching smart constructor and rejecting
// the term when that constructor rejects its children. The term's own
// recorded type is not compared with the type the constructor produces.
// Atomic terms (no children) are trivially valid.
func Term(t *ir.Term) error {
	switch t.Tag() {
	case ir.TagNull, ir.TagInt, ir.TagFloat, ir.TagVar, ir.TagLabel, ir.TagGlobalRef, ir.TagTypeWitness:
		return nil
	case ir.TagAdd, ir.TagSub, ir.TagMul, ir.TagUDiv, ir.TagSDiv, ir.TagURem, ir.TagSRem,
		ir.TagAnd, ir.TagOr, ir.TagXor, ir.TagShl, ir.TagLShr, ir.TagAShr,
		ir.TagFAdd, ir.TagFSub, ir.TagFMul, ir.TagFDiv, ir.TagFRem:
		if _, err := ir.BinOp(t.Tag(), t.Child(0), t.Child(1)); err != nil {
			return err
		}
	case ir.TagFNeg:
		if _, err := ir.FNeg(t.Child(0)); err != nil {
			return err
		}
	case ir.TagEq, ir.TagULt, ir.TagULe, ir.TagSLt, ir.TagSLe, ir.TagFEq, ir.TagFLt, ir.TagFLe:
		if _, err := ir.Cmp(t.Tag(), t.Child(0), t.Child(1)); err != nil {
			return err
		}
	case ir.TagNot:
		if _, err := ir.Not(t.Child(0)); err != nil {
			return err
		}
	case ir.TagCast:
		if _, err := ir.Cast(t.Child(0), t.Type()); err != nil {
			return err
		}
	case ir.TagSCast:
		if _, err := ir.SCast(t.Child(0), t.Type()); err != nil {
			return err
		}
	case ir.TagLoad:
		if _, err := ir.Load(t.Child(0), t.Type()); err != nil {
			return err
		}
	case ir.TagElementPtr:
		if _, err := ir.ElementPtr(t.Child(0), t.Child(1), t.Child(2)); err != nil {
			return err
		}
	case ir.TagFieldPtr:
		if _, err := ir.FieldPtr(t.Child(0), t.Child(1), t.Child(2)); err != nil {
			return err
		}
	case ir.TagArray:
		if _, err := ir.ArrayTerm(t.Type().Elem(), t.Children()); err != nil {
			return err
		}
	case ir.TagVec:
		if _, err := ir.VecTerm(t.Type().Elem(), t.Children()); err != nil {
			return err
		}
	case ir.TagTuple:
		if _, err := ir.TupleTerm(t.Type(), t.Children()); err != nil {
			return err
		}
	case ir.TagCall:
		if _, err := ir.CallTerm(t.Child(0), t.Children()[1:]); err != nil {
			return err
		}
	default:
		return diag.New(diag.Validation, "unrecognized term tag %s", t.Tag())
	}
	return nil
}

// TermRecursive checks t and every descendant.
func TermRecursive(t *ir.Term) error {
	for _, c := range t.Children() {
		if err := TermRecursive(c); err != nil {
			return err
		}
	}
	return Term(t)
}

func isVar(t *ir.Term) bool { return t.Tag() == ir.TagVar }

// Instruction validates operand terms recursively, then the opcode-specific
// constraints.
func Instruction(i *ir.Instruction) error {
	for _, op := range i.Operands() {
		if op.Tag() == ir.TagLabel {
			continue // label operands denote block targets, not values to re-check
		}
		if err := TermRecursive(op); err != nil {
			return err
		}
	}
	switch i.Op() {
	case ir.OpAssign:
		lhs, rhs := i.Operand(0), i.Operand(1)
		if !isVar(lhs) {
			return diag.New(diag.Validation, "Assign lhs must be a Var, got %s", lhs.Tag())
		}
		if lhs.Type() != rhs.Type() {
			return diag.New(diag.Validation, "Assign type mismatch: %s vs %s", lhs.Type(), rhs.Type())
		}
	case ir.OpAlloca:
		lhs, elemWitness := i.Operand(0), i.Operand(1)
		if !isVar(lhs) || lhs.Type().Kind() != types.Ptr {
			return diag.New(diag.Validation, "Alloca lhs must be a Ptr-typed Var")
		}
		if elemWitness.Tag() != ir.TagTypeWitness {
			return diag.New(diag.Validation, "Alloca element operand must be a type witness")
		}
		if i.Operand(2).Type().Kind() != types.Int {
			return diag.New(diag.Validation, "Alloca count must be Int-typed")
		}
	case ir.OpStore:
		if i.Operand(1).Type().Kind() != types.Ptr {
			return diag.New(diag.Validation, "Store pointer operand must be Ptr-typed")
		}
	case ir.OpBlock:
		if i.Operand(0).Tag() != ir.TagLabel {
			return diag.New(diag.Validation, "Block operand must be a Label")
		}
	case ir.OpBr:
		if i.Operand(0).Type() != types.IntType(1) {
			return diag.New(diag.Validation, "Br condition must be Int(1)")
		}
		if i.Operand(1).Tag() != ir.TagLabel || i.Operand(2).Tag() != ir.TagLabel {
			return diag.New(diag.Validation, "Br targets must be Labels")
		}
	case ir.OpJmp:
		if i.Operand(0).Tag() != ir.TagLabel {
			return diag.New(diag.Validation, "Jmp target must be a Label")
		}
	case ir.OpPhi:
		return diag.New(diag.Validation, "Phi is not permitted in internal (post-elimination) form")
	case ir.OpSwitch:
		scrutinee := i.SwitchValue()
		if scrutinee.Type().Kind() != types.Int {
			return diag.New(diag.Validation, "Switch scrutinee must be Int-typed")
		}
		if i.SwitchDefault().Tag() != ir.TagLabel {
			return diag.New(diag.Validation, "Switch default must be a Label")
		}
		for _, c := range i.SwitchCases() {
			if c.Value.Type() != scrutinee.Type() {
				return diag.New(diag.Validation, "Switch case type mismatch: %s vs %s", c.Value.Type(), scrutinee.Type())
			}
			if c.Label.Tag() != ir.TagLabel {
				return diag.New(diag.Validation, "Switch case target must be a Label")
			}
		}
	case ir.OpRet, ir.OpRetVoid, ir.OpDrop, ir.OpUnreachable:
		// no further per-opcode constraint beyond operand validity
	default:
		return diag.New(diag.Validation, "unrecognized opcode %s", i.Op())
	}
	return nil
}

// Function enforces the function-level invariants of §3.5: labels are
// unique and every branch target resolves to one, Var refs are used at a
// single consistent type, no Phi survives, and the body ends in a
// terminator.
func Function(fn *ir.Function) error {
	if fn.IsDeclaration() {
		return nil
	}
	labels := map[string]bool{}
	for _, inst := range fn.Body {
		if inst.Op() == ir.OpBlock {
			ref, _ := inst.Operand(0).Ref()
			if labels[ref.String()] {
				return diag.New(diag.Validation, "label %s is defined more than once", ref)
			}
			labels[ref.String()] = true
		}
	}
	varTypes := map[string]*types.Type{}
	for _, p := range fn.Params {
		ref, _ := p.Ref()
		varTypes[ref.String()] = p.Type()
	}
	checkVarUse := func(t *ir.Term) error {
		var walk func(*ir.Term) error
		walk = func(t *ir.Term) error {
			if t.Tag() == ir.TagVar {
				ref, _ := t.Ref()
				if seen, ok := varTypes[ref.String()]; ok {
					if seen != t.Type() {
						return diag.New(diag.Validation, "variable %s used at inconsistent types %s and %s", ref, seen, t.Type())
					}
				} else {
					varTypes[ref.String()] = t.Type()
				}
			}
			for _, c := range t.Children() {
				if err := walk(c); err != nil {
					return err
				}
			}
			return nil
		}
		return walk(t)
	}
	checkLabelTarget := func(t *ir.Term) error {
		if t.Tag() != ir.TagLabel {
			return diag.New(diag.Validation, "expected a Label operand, got %s", t.Tag())
		}
		ref, _ := t.Ref()
		if !labels[ref.String()] {
			return diag.New(diag.Validation, "branch target %s is not a defined label", ref)
		}
		return nil
	}
	for idx, inst := range fn.Body {
		if err := Instruction(inst); err != nil {
			return err
		}
		switch inst.Op() {
		case ir.OpAssign:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
			if err := checkVarUse(inst.Operand(1)); err != nil {
				return err
			}
		case ir.OpAlloca:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
			if err := checkVarUse(inst.Operand(2)); err != nil {
				return err
			}
		case ir.OpStore:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
			if err := checkVarUse(inst.Operand(1)); err != nil {
				return err
			}
		case ir.OpBr:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
			if err := checkLabelTarget(inst.Operand(1)); err != nil {
				return err
			}
			if err := checkLabelTarget(inst.Operand(2)); err != nil {
				return err
			}
		case ir.OpJmp:
			if err := checkLabelTarget(inst.Operand(0)); err != nil {
				return err
			}
		case ir.OpSwitch:
			if err := checkVarUse(inst.SwitchValue()); err != nil {
				return err
			}
			if err := checkLabelTarget(inst.SwitchDefault()); err != nil {
				return err
			}
			for _, c := range inst.SwitchCases() {
				if err := checkLabelTarget(c.Label); err != nil {
					return err
				}
			}
		case ir.OpRet:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
			if inst.Operand(0).Type() != fn.Ret {
				return diag.New(diag.Validation, "function %s returns %s, want %s", fn.Name, inst.Operand(0).Type(), fn.Ret)
			}
		case ir.OpRetVoid:
			if fn.Ret.Kind() != types.Void {
				return diag.New(diag.Validation, "function %s uses RetVoid but declares return type %s", fn.Name, fn.Ret)
			}
		case ir.OpDrop:
			if err := checkVarUse(inst.Operand(0)); err != nil {
				return err
			}
		}
		if idx == len(fn.Body)-1 && !ir.IsTerminator(inst.Op()) {
			return diag.New(diag.Validation, "function %s body does not end in a terminator", fn.Name)
		}
	}
	if len(fn.Body) == 0 {
		return diag.New(diag.Validation, "function %s has an empty definition body", fn.Name)
	}
	return nil
}

// Global enforces that its initializer, if present, matches the declared
// type.
func Global(g *ir.Global) error {
	if g.Init == nil {
		return nil
	}
	if err := TermRecursive(g.Init); err != nil {
		return err
	}
	if g.Init.Type() != g.Typ {
		return diag.New(diag.Validation, "global %s initializer type %s does not match declared type %s", g.Name, g.Init.Type(), g.Typ)
	}
	return nil
}

// Module validates every global and function in m.
func Module(m *ir.Module) error {
	for _, g := range m.Globals {
		if err := Global(g); err != nil {
			return err
		}
	}
	for _, fn := range m.Declarations {
		if err := Function(fn); err != nil {
			return err
		}
	}
	for _, fn := range m.Definitions {
		if err := Function(fn); err != nil {
			return err
		}
	}
	return nil
}
