// Package bits implements fixed-width two's-complement integer arithmetic
// over math/big, used by the simplifier to fold Int constants at their
// declared bit width.
package bits

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrDivByZero is returned by Div/Rem variants when the divisor is zero.
var ErrDivByZero = errors.New("bits: division by zero")

// ErrInvalidWidth is returned when a width below 1 is supplied.
var ErrInvalidWidth = errors.New("bits: invalid bit width")

func mask(n int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return m.Sub(m, big.NewInt(1))
}

func modulus(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n))
}

// Normalize reduces v into the representative range [0, 2^n).
func Normalize(v *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	r := new(big.Int).Mod(v, modulus(n))
	if r.Sign() < 0 {
		r.Add(r, modulus(n))
	}
	return r, nil
}

// SignedValue interprets a representative rep in [0, 2^n) as a two's
// complement signed value.
func SignedValue(rep *big.Int, n int) *big.Int {
	high := new(big.Int).Rsh(rep, uint(n-1))
	if high.Sign() == 0 {
		return new(big.Int).Set(rep)
	}
	return new(big.Int).Sub(rep, modulus(n))
}

// encodeSigned maps a signed value back into [0, 2^n) two's complement form.
func encodeSigned(v *big.Int, n int) *big.Int {
	r := new(big.Int).Mod(v, modulus(n))
	if r.Sign() < 0 {
		r.Add(r, modulus(n))
	}
	return r
}

func wrap(v *big.Int, n int) *big.Int {
	r := new(big.Int).And(v, mask(n))
	return r
}

// Add returns (a+b) mod 2^n.
func Add(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).Add(a, b), n), nil
}

// Sub returns (a-b) mod 2^n.
func Sub(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).Sub(a, b), n), nil
}

// Mul returns (a*b) mod 2^n.
func Mul(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).Mul(a, b), n), nil
}

// UDiv is unsigned division on the n-bit representatives.
func UDiv(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	if b.Sign() == 0 {
		return nil, ErrDivByZero
	}
	return new(big.Int).Div(a, b), nil
}

// URem is unsigned remainder on the n-bit representatives.
func URem(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	if b.Sign() == 0 {
		return nil, ErrDivByZero
	}
	return new(big.Int).Mod(a, b), nil
}

// SDiv is signed division; operands and result are n-bit two's complement.
func SDiv(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	sb := SignedValue(b, n)
	if sb.Sign() == 0 {
		return nil, ErrDivByZero
	}
	sa := SignedValue(a, n)
	q := new(big.Int).Quo(sa, sb)
	return encodeSigned(q, n), nil
}

// SRem is signed remainder; operands and result are n-bit two's complement.
func SRem(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	sb := SignedValue(b, n)
	if sb.Sign() == 0 {
		return nil, ErrDivByZero
	}
	sa := SignedValue(a, n)
	r := new(big.Int).Rem(sa, sb)
	return encodeSigned(r, n), nil
}

// And, Or, Xor are bitwise operations on the n-bit representatives.
func And(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).And(a, b), n), nil
}

func Or(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).Or(a, b), n), nil
}

func Xor(a, b *big.Int, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	return wrap(new(big.Int).Xor(a, b), n), nil
}

// Shl is a logical left shift. Shifts of n or more bits yield 0.
func Shl(a *big.Int, shift uint64, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	if shift >= uint64(n) {
		return big.NewInt(0), nil
	}
	return wrap(new(big.Int).Lsh(a, uint(shift)), n), nil
}

// LShr is a logical right shift. Shifts of n or more bits yield 0.
func LShr(a *big.Int, shift uint64, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	if shift >= uint64(n) {
		return big.NewInt(0), nil
	}
	return new(big.Int).Rsh(a, uint(shift)), nil
}

// AShr is an arithmetic (sign-extending) right shift.
func AShr(a *big.Int, shift uint64, n int) (*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidWidth
	}
	negative := new(big.Int).Rsh(a, uint(n-1)).Sign() != 0
	if shift >= uint64(n) {
		if negative {
			return mask(n), nil
		}
		return big.NewInt(0), nil
	}
	signed := SignedValue(a, n)
	shifted := new(big.Int).Rsh(signed, uint(shift))
	// big.Int.Rsh on a negative value performs arithmetic shift (floor division).
	return encodeSigned(shifted, n), nil
}

// Eq, Ult, Ule compare n-bit representatives directly (unsigned order).
func Eq(a, b *big.Int) bool { return a.Cmp(b) == 0 }
func Ult(a, b *big.Int) bool { return a.Cmp(b) < 0 }
func Ule(a, b *big.Int) bool { return a.Cmp(b) <= 0 }

// Slt, Sle compare the signed interpretation of n-bit representatives.
func Slt(a, b *big.Int, n int) bool { return SignedValue(a, n).Cmp(SignedValue(b, n)) < 0 }
func Sle(a, b *big.Int, n int) bool { return SignedValue(a, n).Cmp(SignedValue(b, n)) <= 0 }
