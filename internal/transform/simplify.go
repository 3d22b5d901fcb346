package transform

import (
	"math/big"

	"github.com/hassan/olivine/internal/bits"
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

// Env maps Var terms (by Key) to substitute values for Simplify.
type Env map[string]*ir.Term

// Lookup returns the value bound to v in env, if any.
func (env Env) Lookup(v *ir.Term) (*ir.Term, bool) {
	t, ok := env[v.Key()]
	return t, ok
}

// Bind records that v simplifies to value.
func (env Env) Bind(v, value *ir.Term) { env[v.Key()] = value }

var intBinFold = map[ir.Tag]func(a, b *intArg) (*intArg, bool){
	ir.TagAdd:  func(a, b *intArg) (*intArg, bool) { r, _ := bits.Add(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagSub:  func(a, b *intArg) (*intArg, bool) { r, _ := bits.Sub(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagMul:  func(a, b *intArg) (*intArg, bool) { r, _ := bits.Mul(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagUDiv: func(a, b *intArg) (*intArg, bool) { r, err := bits.UDiv(a.v, b.v, a.n); return &intArg{r, a.n}, err == nil },
	ir.TagSDiv: func(a, b *intArg) (*intArg, bool) { r, err := bits.SDiv(a.v, b.v, a.n); return &intArg{r, a.n}, err == nil },
	ir.TagURem: func(a, b *intArg) (*intArg, bool) { r, err := bits.URem(a.v, b.v, a.n); return &intArg{r, a.n}, err == nil },
	ir.TagSRem: func(a, b *intArg) (*intArg, bool) { r, err := bits.SRem(a.v, b.v, a.n); return &intArg{r, a.n}, err == nil },
	ir.TagAnd:  func(a, b *intArg) (*intArg, bool) { r, _ := bits.And(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagOr:   func(a, b *intArg) (*intArg, bool) { r, _ := bits.Or(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagXor:  func(a, b *intArg) (*intArg, bool) { r, _ := bits.Xor(a.v, b.v, a.n); return &intArg{r, a.n}, true },
	ir.TagShl: func(a, b *intArg) (*intArg, bool) {
		if !b.v.IsUint64() || b.v.Uint64() >= uint64(a.n) {
			return nil, false
		}
		r, _ := bits.Shl(a.v, b.v.Uint64(), a.n)
		return &intArg{r, a.n}, true
	},
	ir.TagLShr: func(a, b *intArg) (*intArg, bool) {
		if !b.v.IsUint64() || b.v.Uint64() >= uint64(a.n) {
			return nil, false
		}
		r, _ := bits.LShr(a.v, b.v.Uint64(), a.n)
		return &intArg{r, a.n}, true
	},
	ir.TagAShr: func(a, b *intArg) (*intArg, bool) {
		if !b.v.IsUint64() || b.v.Uint64() >= uint64(a.n) {
			return nil, false
		}
		r, _ := bits.AShr(a.v, b.v.Uint64(), a.n)
		return &intArg{r, a.n}, true
	},
}

var intCmpFold = map[ir.Tag]func(a, b *intArg) bool{
	ir.TagEq:  func(a, b *intArg) bool { return bits.Eq(a.v, b.v) },
	ir.TagULt: func(a, b *intArg) bool { return bits.Ult(a.v, b.v) },
	ir.TagULe: func(a, b *intArg) bool { return bits.Ule(a.v, b.v) },
	ir.TagSLt: func(a, b *intArg) bool { return bits.Slt(a.v, b.v, a.n) },
	ir.TagSLe: func(a, b *intArg) bool { return bits.Sle(a.v, b.v, a.n) },
}

type intArg struct {
	v *big.Int
	n int
}

func intArgOf(t *ir.Term) *intArg {
	norm, err := bits.Normalize(t.IntValue(), t.Type().Width())
	if err != nil {
		return nil
	}
	return &intArg{norm, t.Type().Width()}
}

// Simplify returns an equivalent term: environment lookups and recursive
// simplification of children, then integer constant folding, then
// algebraic identities. Children are always simplified first; the parent
// rule may fire even if no child changed.
func Simplify(env Env, t *ir.Term) *ir.Term {
	switch t.Tag() {
	case ir.TagNull, ir.TagInt, ir.TagFloat:
		return t
	case ir.TagVar:
		if v, ok := env.Lookup(t); ok {
			return v
		}
		return t
	}
	children := make([]*ir.Term, t.NumChildren())
	changed := false
	for i, c := range t.Children() {
		nc := Simplify(env, c)
		children[i] = nc
		if nc != c {
			changed = true
		}
	}
	rebuilt := t
	if changed {
		rebuilt = t.Rebuild(children)
	}
	if folded := foldConstants(rebuilt); folded != nil {
		return folded
	}
	if identity := applyIdentity(rebuilt); identity != nil {
		return identity
	}
	return rebuilt
}

func foldConstants(t *ir.Term) *ir.Term {
	fold, isBinOp := intBinFold[t.Tag()]
	cmp, isCmp := intCmpFold[t.Tag()]
	if !isBinOp && !isCmp {
		return nil
	}
	a, b := t.Child(0), t.Child(1)
	if a.Tag() != ir.TagInt || b.Tag() != ir.TagInt || a.Type() != b.Type() {
		return nil
	}
	aa, bb := intArgOf(a), intArgOf(b)
	if aa == nil || bb == nil {
		return nil
	}
	if isCmp {
		result := cmp(aa, bb)
		n := int64(0)
		if result {
			n = 1
		}
		v, _ := ir.IntTerm(t.Type(), big.NewInt(n))
		return v
	}
	r, ok := fold(aa, bb)
	if !ok {
		return nil
	}
	v, _ := ir.IntTerm(a.Type(), r.v)
	return v
}

// applyIdentity implements the algebraic simplifications of §4.8, applied
// only after constant folding does not fire.
func applyIdentity(t *ir.Term) *ir.Term {
	switch t.Tag() {
	case ir.TagAdd:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(a) {
			return b
		}
		if isIntZero(b) {
			return a
		}
	case ir.TagSub:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(b) {
			return a
		}
		if a.Equal(b) {
			return zeroOf(a.Type())
		}
	case ir.TagMul:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(a) || isIntZero(b) {
			return zeroOf(t.Type())
		}
		if isIntOne(a) {
			return b
		}
		if isIntOne(b) {
			return a
		}
	case ir.TagAnd:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(a) || isIntZero(b) {
			return zeroOf(t.Type())
		}
		if a.Equal(b) {
			return a
		}
	case ir.TagOr:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(a) {
			return b
		}
		if isIntZero(b) {
			return a
		}
		if a.Equal(b) {
			return a
		}
	case ir.TagXor:
		a, b := t.Child(0), t.Child(1)
		if isIntZero(a) {
			return b
		}
		if isIntZero(b) {
			return a
		}
		if a.Equal(b) {
			return zeroOf(t.Type())
		}
	}
	return nil
}

func isIntZero(t *ir.Term) bool { return t.Tag() == ir.TagInt && t.IntValue().Sign() == 0 }
func isIntOne(t *ir.Term) bool {
	return t.Tag() == ir.TagInt && t.IntValue().Cmp(big.NewInt(1)) == 0
}

func zeroOf(t *types.Type) *ir.Term {
	v, _ := ir.IntTerm(t, big.NewInt(0))
	return v
}
