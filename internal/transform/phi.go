package transform

import "github.com/hassan/olivine/internal/ir"

type phiInfo struct {
	target *ir.Term
	pairs  []ir.PhiPair
}

// EliminatePhis returns a function with the same signature and block
// structure but no Phi instructions: every phi is replaced by one Assign
// per incoming edge, inserted into the predecessor block just before its
// terminator. Phis are collected in body order; within a predecessor, their
// assignments are emitted in that same collection order.
func EliminatePhis(fn *ir.Function) *ir.Function {
	var phis []phiInfo
	var body []*ir.Instruction
	for _, inst := range fn.Body {
		if inst.Op() == ir.OpPhi {
			phis = append(phis, phiInfo{target: inst.PhiTarget(), pairs: inst.PhiPairs()})
			continue
		}
		body = append(body, inst)
	}

	out := make([]*ir.Instruction, 0, len(body))
	var currentLabel string
	for _, inst := range body {
		if inst.Op() == ir.OpBlock {
			ref, _ := inst.Operand(0).Ref()
			currentLabel = refKey(ref)
			out = append(out, inst)
			continue
		}
		if !ir.IsTerminator(inst.Op()) {
			out = append(out, inst)
			continue
		}
		for _, p := range phis {
			for _, pair := range p.pairs {
				labelRef, _ := pair.Label.Ref()
				if refKey(labelRef) == currentLabel {
					out = append(out, ir.Assign(p.target, pair.Value))
				}
			}
		}
		out = append(out, inst)
	}

	result := fn.Clone()
	result.Body = out
	return result
}
