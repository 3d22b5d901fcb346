package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

// foo(i32 %x, i32 %y) { %x = add i32 %x, %y; ret i32 %x }
func reassigningFunction() *ir.Function {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	y := ir.VarTerm(ir.RefName("y"), types.IntType(32))
	sum, _ := ir.BinOp(ir.TagAdd, x, y)
	body := []*ir.Instruction{
		ir.Assign(x, sum),
		ir.Ret(x),
	}
	return ir.NewFunction(types.IntType(32), ir.RefName("foo"), []*ir.Term{x, y}, body)
}

func TestReconstructSSAInsertsEntryAllocasForParams(t *testing.T) {
	fn := reassigningFunction()
	out := ReconstructSSA(fn)

	allocaCount := 0
	for _, inst := range out.Body {
		if inst.Op() == ir.OpAlloca {
			allocaCount++
		} else {
			break
		}
	}
	require.Equal(t, 2, allocaCount, "one alloca per parameter before any other instruction")
}

func TestReconstructSSAStoresParamsAtEntry(t *testing.T) {
	fn := reassigningFunction()
	out := ReconstructSSA(fn)

	storeCount := 0
	for _, inst := range out.Body[2:4] {
		require.Equal(t, ir.OpStore, inst.Op())
		storeCount++
	}
	require.Equal(t, 2, storeCount)
}

func TestReconstructSSARewritesReassignmentAsStore(t *testing.T) {
	fn := reassigningFunction()
	out := ReconstructSSA(fn)

	var sawStoreOfAdd, sawLoadBasedRet bool
	for _, inst := range out.Body {
		if inst.Op() == ir.OpStore {
			if inst.Operand(0).Tag() == ir.TagAdd {
				sawStoreOfAdd = true
				require.Equal(t, ir.TagLoad, inst.Operand(0).Child(0).Tag())
				require.Equal(t, ir.TagLoad, inst.Operand(0).Child(1).Tag())
			}
		}
		if inst.Op() == ir.OpRet && inst.Operand(0).Tag() == ir.TagLoad {
			sawLoadBasedRet = true
		}
	}
	require.True(t, sawStoreOfAdd, "reassignment of x must become a Store of the rewritten rhs")
	require.True(t, sawLoadBasedRet, "the final ret must read x back through a fresh Load")
}

func TestReconstructSSANoRawVarUsesOfSlottedNamesRemain(t *testing.T) {
	fn := reassigningFunction()
	out := ReconstructSSA(fn)

	// x and y are promoted to stack slots: every value-position use of the
	// original names must become a Load, leaving only the fresh slot.N
	// pointer Vars (used as Alloca/Store targets, never as plain values).
	// The first four instructions are the two entry Allocas and the two
	// entry Stores that copy the incoming parameters x and y into their
	// slots; those Stores read the raw parameters, so the check starts after
	// them.
	var walk func(*ir.Term) bool
	walk = func(t *ir.Term) bool {
		if t.Tag() == ir.TagVar {
			ref, _ := t.Ref()
			if ref.IsName() && (ref.Name() == "x" || ref.Name() == "y") {
				return true
			}
		}
		for _, c := range t.Children() {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, inst := range out.Body[4:] {
		for _, op := range inst.Operands() {
			require.False(t, walk(op), "original parameter names must not appear as raw Var uses after SSA reconstruction")
		}
	}
}

func TestReconstructSSAOnFunctionWithNoAssignsOnlyAllocatesParams(t *testing.T) {
	p := ir.VarTerm(ir.RefName("p"), types.IntType(32))
	fn := ir.NewFunction(types.IntType(32), ir.RefName("f"), []*ir.Term{p}, []*ir.Instruction{ir.Ret(p)})
	out := ReconstructSSA(fn)

	require.Equal(t, ir.OpAlloca, out.Body[0].Op())
	require.Equal(t, ir.OpStore, out.Body[1].Op())
	require.Equal(t, ir.OpRet, out.Body[2].Op())
	require.Equal(t, ir.TagLoad, out.Body[2].Operand(0).Tag())
}
