package transform

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

func TestReplacePreservesSharingWhenUnchanged(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	y := ir.VarTerm(ir.RefName("y"), types.IntType(32))
	sum, _ := ir.BinOp(ir.TagAdd, x, y)

	result := Replace(sum, TermMap{})
	require.True(t, result == sum)
}

func TestReplaceSubstitutesNestedSubterm(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	y := ir.VarTerm(ir.RefName("y"), types.IntType(32))
	sum, _ := ir.BinOp(ir.TagAdd, x, y)

	seven, _ := ir.IntTerm(types.IntType(32), big.NewInt(7))
	m := TermMap{}
	m.Put(x, seven)

	result := Replace(sum, m)
	require.Equal(t, ir.TagAdd, result.Tag())
	require.True(t, result.Child(0).Equal(seven))
	require.True(t, result.Child(1).Equal(y))
}

func TestReplaceInstructionRebuildsOnlyWhenChanged(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	ret := ir.Ret(x)

	unchanged := ReplaceInstruction(ret, TermMap{})
	require.True(t, unchanged == ret)

	seven, _ := ir.IntTerm(types.IntType(32), big.NewInt(7))
	m := TermMap{}
	m.Put(x, seven)
	changed := ReplaceInstruction(ret, m)
	require.True(t, changed.Operand(0).Equal(seven))
}

func TestReplaceGlobalSubstitutesInitializer(t *testing.T) {
	old := ir.GlobalRefTerm(ir.RefName("a"), types.PtrType())
	g := ir.NewGlobal(types.PtrType(), ir.RefName("p"), old)

	newRef := ir.GlobalRefTerm(ir.RefName("b"), types.PtrType())
	m := TermMap{}
	m.Put(old, newRef)

	out := ReplaceGlobal(g, m)
	require.True(t, out.Init.Equal(newRef))
	require.True(t, g.Init.Equal(old), "original global must be left untouched")
}

func TestReplaceFunctionSubstitutesBodyAndParams(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	fn := ir.NewFunction(types.IntType(32), ir.RefName("f"), []*ir.Term{x}, []*ir.Instruction{ir.Ret(x)})

	seven, _ := ir.IntTerm(types.IntType(32), big.NewInt(7))
	m := TermMap{}
	m.Put(x, seven)

	out := ReplaceFunction(fn, m)
	require.True(t, out.Params[0].Equal(seven))
	require.True(t, out.Body[0].Operand(0).Equal(seven))
}
