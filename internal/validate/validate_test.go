package validate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

func i32() *types.Type { return types.IntType(32) }

func TestTermValidatesWellFormedBinOp(t *testing.T) {
	a, _ := ir.IntTerm(i32(), big.NewInt(1))
	b, _ := ir.IntTerm(i32(), big.NewInt(2))
	sum, err := ir.BinOp(ir.TagAdd, a, b)
	require.NoError(t, err)
	require.NoError(t, Term(sum))
}

func TestTermRecursiveCatchesNestedError(t *testing.T) {
	a, _ := ir.IntTerm(i32(), big.NewInt(1))
	b, _ := ir.IntTerm(i32(), big.NewInt(2))
	sum, _ := ir.BinOp(ir.TagAdd, a, b)
	// Force an ill-typed term by hand-rebuilding with mismatched children,
	// then nest it one level down inside a well-typed parent.
	bad := sum.Rebuild([]*ir.Term{a, ir.VarTerm(ir.RefName("x"), types.IntType(64))})
	require.Error(t, TermRecursive(bad))
	outer := sum.Rebuild([]*ir.Term{bad, b})
	require.NoError(t, Term(outer))
	require.Error(t, TermRecursive(outer))
}

func TestFunctionRejectsUnknownBranchTarget(t *testing.T) {
	cond, _ := ir.IntTerm(types.IntType(1), big.NewInt(1))
	body := []*ir.Instruction{
		ir.Block(ir.LabelTerm(ir.RefName("entry"))),
		ir.Br(cond, ir.LabelTerm(ir.RefName("missing")), ir.LabelTerm(ir.RefName("entry"))),
	}
	fn := ir.NewFunction(types.VoidType(), ir.RefName("f"), nil, body)
	err := Function(fn)
	require.Error(t, err)
}

func TestFunctionRejectsInconsistentVarType(t *testing.T) {
	x32 := ir.VarTerm(ir.RefName("x"), i32())
	x64 := ir.VarTerm(ir.RefName("x"), types.IntType(64))
	body := []*ir.Instruction{
		ir.Assign(x32, mustInt(i32(), 1)),
		ir.Assign(x64, mustInt(types.IntType(64), 2)),
		ir.RetVoid(),
	}
	fn := ir.NewFunction(types.VoidType(), ir.RefName("f"), nil, body)
	require.Error(t, Function(fn))
}

func TestFunctionRejectsMissingTerminator(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), i32())
	body := []*ir.Instruction{ir.Assign(x, mustInt(i32(), 1))}
	fn := ir.NewFunction(types.VoidType(), ir.RefName("f"), nil, body)
	require.Error(t, Function(fn))
}

func TestFunctionRejectsPhi(t *testing.T) {
	target := ir.VarTerm(ir.RefName("x"), i32())
	body := []*ir.Instruction{
		ir.Block(ir.LabelTerm(ir.RefName("entry"))),
		ir.Phi(target, []ir.PhiPair{{Value: mustInt(i32(), 1), Label: ir.LabelTerm(ir.RefName("entry"))}}),
		ir.Ret(target),
	}
	fn := ir.NewFunction(i32(), ir.RefName("f"), nil, body)
	require.Error(t, Function(fn))
}

func TestFunctionAcceptsWellFormedBody(t *testing.T) {
	p := ir.VarTerm(ir.RefName("x"), i32())
	body := []*ir.Instruction{ir.Ret(p)}
	fn := ir.NewFunction(i32(), ir.RefName("f"), []*ir.Term{p}, body)
	require.NoError(t, Function(fn))
}

func TestFunctionRejectsRetTypeMismatch(t *testing.T) {
	body := []*ir.Instruction{ir.Ret(mustInt(i32(), 1))}
	fn := ir.NewFunction(types.IntType(64), ir.RefName("f"), nil, body)
	require.Error(t, Function(fn))
}

func TestFunctionRejectsRetVoidOnNonVoid(t *testing.T) {
	fn := ir.NewFunction(i32(), ir.RefName("f"), nil, []*ir.Instruction{ir.RetVoid()})
	require.Error(t, Function(fn))
}

func TestFunctionAllowsEmptyDeclaration(t *testing.T) {
	fn := ir.NewFunction(i32(), ir.RefName("decl"), nil, nil)
	require.NoError(t, Function(fn))
}

func TestGlobalInitializerTypeMismatch(t *testing.T) {
	g := ir.NewGlobal(types.IntType(64), ir.RefName("g"), mustInt(i32(), 1))
	require.Error(t, Global(g))
}

func TestGlobalNilInitializerIsValid(t *testing.T) {
	g := ir.NewGlobal(i32(), ir.RefName("g"), nil)
	require.NoError(t, Global(g))
}

func mustInt(t *types.Type, v int64) *ir.Term {
	term, err := ir.IntTerm(t, big.NewInt(v))
	if err != nil {
		panic(err)
	}
	return term
}
