package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
	"github.com/hassan/olivine/internal/validate"
)

func diamondWithPhi() *ir.Function {
	cond := ir.VarTerm(ir.RefName("cond"), types.IntType(1))
	a := ir.VarTerm(ir.RefName("a"), types.IntType(32))
	b := ir.VarTerm(ir.RefName("b"), types.IntType(32))
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))

	entry := ir.LabelTerm(ir.RefName("entry"))
	thenL := ir.LabelTerm(ir.RefName("then"))
	elseL := ir.LabelTerm(ir.RefName("else"))
	mergeL := ir.LabelTerm(ir.RefName("merge"))

	body := []*ir.Instruction{
		ir.Block(entry),
		ir.Br(cond, thenL, elseL),
		ir.Block(thenL),
		ir.Jmp(mergeL),
		ir.Block(elseL),
		ir.Jmp(mergeL),
		ir.Block(mergeL),
		ir.Phi(x, []ir.PhiPair{{Value: a, Label: thenL}, {Value: b, Label: elseL}}),
		ir.Ret(x),
	}
	return ir.NewFunction(types.IntType(32), ir.RefName("f"), []*ir.Term{cond, a, b}, body)
}

func TestEliminatePhisInsertsOneAssignPerPredecessor(t *testing.T) {
	fn := diamondWithPhi()
	out := EliminatePhis(fn)

	for _, inst := range out.Body {
		require.NotEqual(t, ir.OpPhi, inst.Op())
	}

	var thenAssign, elseAssign *ir.Instruction
	var currentLabel string
	for _, inst := range out.Body {
		if inst.Op() == ir.OpBlock {
			ref, _ := inst.Operand(0).Ref()
			currentLabel = ref.Name()
			continue
		}
		if inst.Op() == ir.OpAssign {
			switch currentLabel {
			case "then":
				thenAssign = inst
			case "else":
				elseAssign = inst
			}
		}
	}
	require.NotNil(t, thenAssign)
	require.NotNil(t, elseAssign)

	aRef, _ := thenAssign.Operand(1).Ref()
	require.Equal(t, "a", aRef.Name())
	bRef, _ := elseAssign.Operand(1).Ref()
	require.Equal(t, "b", bRef.Name())
}

func TestEliminatePhisAssignPrecedesTerminator(t *testing.T) {
	fn := diamondWithPhi()
	out := EliminatePhis(fn)

	for i, inst := range out.Body {
		if inst.Op() == ir.OpAssign {
			require.Less(t, i+1, len(out.Body))
			require.True(t, ir.IsTerminator(out.Body[i+1].Op()))
		}
	}
}

func TestEliminatePhisResultPassesValidation(t *testing.T) {
	fn := diamondWithPhi()
	out := EliminatePhis(fn)
	require.NoError(t, validate.Function(out))
}

func TestEliminatePhisOnFunctionWithoutPhisIsUnchanged(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	fn := ir.NewFunction(types.IntType(32), ir.RefName("f"), []*ir.Term{x}, []*ir.Instruction{ir.Ret(x)})
	out := EliminatePhis(fn)
	require.Len(t, out.Body, 1)
	require.Equal(t, ir.OpRet, out.Body[0].Op())
}
