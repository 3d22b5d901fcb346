package transform

import (
	"math/big"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

// ReconstructSSA reverses phi-elimination by promoting every assigned local
// variable to an explicit stack slot: each parameter gets an Alloca and a
// Store of its incoming value at function entry, each other Assign target
// gets an entry Alloca and its Assign becomes a Store in place, and every
// use of a slotted Var becomes a fresh Load.
func ReconstructSSA(fn *ir.Function) *ir.Function {
	slots := map[string]*ir.Term{} // Var key -> Ptr-typed slot Var
	var entryAllocas []*ir.Instruction
	var entryStores []*ir.Instruction
	slotCounter := 0

	freshSlot := func(elemType *types.Type) *ir.Term {
		slotCounter++
		name := ir.RefName(freshSlotName(slotCounter))
		slot := ir.VarTerm(name, types.PtrType())
		count, _ := ir.IntTerm(types.IntType(64), big.NewInt(1))
		entryAllocas = append(entryAllocas, ir.Alloca(slot, ir.TypeWitness(elemType), count))
		return slot
	}

	for _, p := range fn.Params {
		slot := freshSlot(p.Type())
		ref, _ := p.Ref()
		slots[refKey(ref)] = slot
		entryStores = append(entryStores, ir.Store(p, slot))
	}

	rewriteVars := func(t *ir.Term) *ir.Term {
		m := TermMap{}
		var collect func(*ir.Term)
		collect = func(t *ir.Term) {
			if t.Tag() == ir.TagVar {
				ref, _ := t.Ref()
				if slot, ok := slots[refKey(ref)]; ok {
					load, _ := ir.Load(slot, t.Type())
					m.Put(t, load)
				}
			}
			for _, c := range t.Children() {
				collect(c)
			}
		}
		collect(t)
		return Replace(t, m)
	}

	var body []*ir.Instruction
	for _, inst := range fn.Body {
		if inst.Op() == ir.OpAssign {
			lhs, rhs := inst.Operand(0), inst.Operand(1)
			if lhs.Tag() == ir.TagVar {
				ref, _ := lhs.Ref()
				key := refKey(ref)
				slot, hasSlot := slots[key]
				newRHS := rewriteVars(rhs)
				if !hasSlot {
					slot = freshSlot(lhs.Type())
					slots[key] = slot
				}
				body = append(body, ir.Store(newRHS, slot))
				continue
			}
		}
		body = append(body, instRewritten(inst, rewriteVars))
	}

	out := fn.Clone()
	full := make([]*ir.Instruction, 0, len(entryAllocas)+len(entryStores)+len(body))
	full = append(full, entryAllocas...)
	full = append(full, entryStores...)
	full = append(full, body...)
	out.Body = full
	return out
}

func instRewritten(inst *ir.Instruction, rewrite func(*ir.Term) *ir.Term) *ir.Instruction {
	operands := inst.Operands()
	newOperands := make([]*ir.Term, len(operands))
	changed := false
	for i, op := range operands {
		if op.Tag() == ir.TagLabel {
			newOperands[i] = op
			continue
		}
		no := rewrite(op)
		newOperands[i] = no
		if no != op {
			changed = true
		}
	}
	if !changed {
		return inst
	}
	return inst.Rebuild(newOperands)
}

func freshSlotName(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "slot.0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "slot." + string(buf)
}
