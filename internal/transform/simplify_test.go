package transform

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/bits"
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

func mkInt(v int64) *ir.Term {
	t, err := ir.IntTerm(types.IntType(32), big.NewInt(v))
	if err != nil {
		panic(err)
	}
	return t
}

func TestSimplifyFoldsNestedArithmetic(t *testing.T) {
	// (5+3)*(10-4) == 48
	sum, _ := ir.BinOp(ir.TagAdd, mkInt(5), mkInt(3))
	diff, _ := ir.BinOp(ir.TagSub, mkInt(10), mkInt(4))
	prod, _ := ir.BinOp(ir.TagMul, sum, diff)

	result := Simplify(Env{}, prod)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(48), result.IntValue().Int64())
}

func TestSimplifySubSelfIsZero(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	diff, _ := ir.BinOp(ir.TagSub, x, x)
	result := Simplify(Env{}, diff)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(0), result.IntValue().Int64())
}

func TestSimplifyFoldsArithmeticShiftRight(t *testing.T) {
	// -16 as a 32-bit two's-complement representative, shifted right by 2,
	// yields -4's representative: constant folding always normalizes to the
	// unsigned representative range, so the signed interpretation is checked
	// via bits.SignedValue rather than comparing raw Int64 values.
	neg16, _ := ir.IntTerm(types.IntType(32), big.NewInt(-16))
	two := mkInt(2)
	shr, _ := ir.BinOp(ir.TagAShr, neg16, two)
	result := Simplify(Env{}, shr)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(-4), bits.SignedValue(result.IntValue(), 32).Int64())
}

func TestSimplifyDoesNotFoldShiftOutOfRange(t *testing.T) {
	one := mkInt(1)
	huge := mkInt(64)
	shl, _ := ir.BinOp(ir.TagShl, one, huge)
	result := Simplify(Env{}, shl)
	require.Equal(t, ir.TagShl, result.Tag())
}

func TestSimplifyDoesNotFoldDivisionByZero(t *testing.T) {
	one := mkInt(1)
	zero := mkInt(0)
	div, _ := ir.BinOp(ir.TagUDiv, one, zero)
	result := Simplify(Env{}, div)
	require.Equal(t, ir.TagUDiv, result.Tag())
}

func TestSimplifyAddZeroIdentity(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	lhs, _ := ir.BinOp(ir.TagAdd, x, mkInt(0))
	require.True(t, Simplify(Env{}, lhs).Equal(x))

	rhs, _ := ir.BinOp(ir.TagAdd, mkInt(0), x)
	require.True(t, Simplify(Env{}, rhs).Equal(x))
}

func TestSimplifyMulByZeroAndOne(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	zeroProd, _ := ir.BinOp(ir.TagMul, x, mkInt(0))
	result := Simplify(Env{}, zeroProd)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(0), result.IntValue().Int64())

	oneProd, _ := ir.BinOp(ir.TagMul, mkInt(1), x)
	require.True(t, Simplify(Env{}, oneProd).Equal(x))
}

func TestSimplifyOrAndXorSelfIdentities(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))

	orSelf, _ := ir.BinOp(ir.TagOr, x, x)
	require.True(t, Simplify(Env{}, orSelf).Equal(x))

	andSelf, _ := ir.BinOp(ir.TagAnd, x, x)
	require.True(t, Simplify(Env{}, andSelf).Equal(x))

	xorSelf, _ := ir.BinOp(ir.TagXor, x, x)
	result := Simplify(Env{}, xorSelf)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(0), result.IntValue().Int64())
}

func TestSimplifySubstitutesFromEnv(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	env := Env{}
	env.Bind(x, mkInt(7))
	result := Simplify(env, x)
	require.True(t, result.Equal(mkInt(7)))
}

func TestSimplifyRecursesIntoChildrenBeforeFolding(t *testing.T) {
	x := ir.VarTerm(ir.RefName("x"), types.IntType(32))
	inner, _ := ir.BinOp(ir.TagAdd, mkInt(1), mkInt(2))
	outer, _ := ir.BinOp(ir.TagAdd, x, inner)
	env := Env{}
	env.Bind(x, mkInt(10))
	result := Simplify(env, outer)
	require.Equal(t, ir.TagInt, result.Tag())
	require.Equal(t, int64(13), result.IntValue().Int64())
}

func TestSimplifyIsDeterministic(t *testing.T) {
	sum, _ := ir.BinOp(ir.TagAdd, mkInt(2), mkInt(3))
	r1 := Simplify(Env{}, sum)
	r2 := Simplify(Env{}, sum)
	require.True(t, r1.Equal(r2))
}
