package ir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/types"
)

func TestIsTerminator(t *testing.T) {
	require.True(t, IsTerminator(OpRet))
	require.True(t, IsTerminator(OpRetVoid))
	require.True(t, IsTerminator(OpBr))
	require.True(t, IsTerminator(OpJmp))
	require.True(t, IsTerminator(OpSwitch))
	require.True(t, IsTerminator(OpUnreachable))
	require.False(t, IsTerminator(OpAssign))
	require.False(t, IsTerminator(OpStore))
}

func TestPhiPairsRoundTrip(t *testing.T) {
	target := VarTerm(RefName("x"), types.IntType(32))
	v1, _ := IntTerm(types.IntType(32), big.NewInt(1))
	v2, _ := IntTerm(types.IntType(32), big.NewInt(2))
	l1 := LabelTerm(RefName("a"))
	l2 := LabelTerm(RefName("b"))
	phi := Phi(target, []PhiPair{{Value: v1, Label: l1}, {Value: v2, Label: l2}})

	require.True(t, phi.PhiTarget().Equal(target))
	pairs := phi.PhiPairs()
	require.Len(t, pairs, 2)
	require.True(t, pairs[0].Value.Equal(v1))
	require.True(t, pairs[0].Label.Equal(l1))
	require.True(t, pairs[1].Value.Equal(v2))
	require.True(t, pairs[1].Label.Equal(l2))
}

func TestSwitchCasesRoundTrip(t *testing.T) {
	val, _ := IntTerm(types.IntType(32), big.NewInt(0))
	def := LabelTerm(RefName("default"))
	c1v, _ := IntTerm(types.IntType(32), big.NewInt(1))
	c1l := LabelTerm(RefName("one"))
	sw := Switch(val, def, []SwitchCase{{Value: c1v, Label: c1l}})

	require.True(t, sw.SwitchValue().Equal(val))
	require.True(t, sw.SwitchDefault().Equal(def))
	cases := sw.SwitchCases()
	require.Len(t, cases, 1)
	require.True(t, cases[0].Value.Equal(c1v))
	require.True(t, cases[0].Label.Equal(c1l))
}

func TestInstructionEqualityIgnoresIdentity(t *testing.T) {
	a, _ := IntTerm(types.IntType(32), big.NewInt(1))
	i1 := Ret(a)
	b, _ := IntTerm(types.IntType(32), big.NewInt(1))
	i2 := Ret(b)
	require.True(t, i1.Equal(i2))
	require.True(t, i1 != i2)
}

func TestInstructionRebuild(t *testing.T) {
	a, _ := IntTerm(types.IntType(32), big.NewInt(1))
	i := Ret(a)
	b, _ := IntTerm(types.IntType(32), big.NewInt(2))
	i2 := i.Rebuild([]*Term{b})
	require.Equal(t, OpRet, i2.Op())
	require.True(t, i2.Operand(0).Equal(b))
}
