// Package transform implements the semantics-preserving rewrites: term
// substitution, linking, renaming, algebraic/constant simplification,
// phi-elimination, and SSA reconstruction.
package transform

import "github.com/hassan/olivine/internal/ir"

// TermMap is a substitution table keyed by a term's canonical Key().
type TermMap map[string]*ir.Term

// Put records that old should be replaced by new.
func (m TermMap) Put(old, new *ir.Term) { m[old.Key()] = new }

// Replace returns t with every subterm appearing as a key in m substituted.
// Each term is looked up before its children, so a matching compound term is
// replaced whole and its replacement is not searched further; otherwise the
// children are substituted recursively. When a compound term's children are all unchanged,
// the original term is returned so sharing is preserved.
func Replace(t *ir.Term, m TermMap) *ir.Term {
	if repl, ok := m[t.Key()]; ok {
		return repl
	}
	if t.NumChildren() == 0 {
		return t
	}
	children := t.Children()
	newChildren := make([]*ir.Term, len(children))
	changed := false
	for i, c := range children {
		nc := Replace(c, m)
		newChildren[i] = nc
		if nc != c {
			changed = true
		}
	}
	if !changed {
		return t
	}
	return t.Rebuild(newChildren)
}

// ReplaceInstruction rebuilds i with substituted operands.
func ReplaceInstruction(i *ir.Instruction, m TermMap) *ir.Instruction {
	operands := i.Operands()
	newOperands := make([]*ir.Term, len(operands))
	changed := false
	for k, op := range operands {
		no := Replace(op, m)
		newOperands[k] = no
		if no != op {
			changed = true
		}
	}
	if !changed {
		return i
	}
	return i.Rebuild(newOperands)
}

// ReplaceGlobal substitutes into g's initializer, if present.
func ReplaceGlobal(g *ir.Global, m TermMap) *ir.Global {
	if g.Init == nil {
		return g
	}
	newInit := Replace(g.Init, m)
	if newInit == g.Init {
		return g
	}
	out := *g
	out.Init = newInit
	return &out
}

// ReplaceFunction substitutes into fn's parameters and body.
func ReplaceFunction(fn *ir.Function, m TermMap) *ir.Function {
	changed := false
	newParams := make([]*ir.Term, len(fn.Params))
	for i, p := range fn.Params {
		np := Replace(p, m)
		newParams[i] = np
		if np != p {
			changed = true
		}
	}
	newBody := make([]*ir.Instruction, len(fn.Body))
	for i, inst := range fn.Body {
		ni := ReplaceInstruction(inst, m)
		newBody[i] = ni
		if ni != inst {
			changed = true
		}
	}
	if !changed {
		return fn
	}
	out := fn.Clone()
	out.Params = newParams
	out.Body = newBody
	return out
}
