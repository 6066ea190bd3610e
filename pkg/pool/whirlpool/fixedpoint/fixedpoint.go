// Package fixedpoint implements the Q64.64 unsigned fixed-point arithmetic
// that the rest of the whirlpool package is built on: multiply-divide with
// explicit rounding, and the 256-bit-carried shift used when multiplying two
// Q64.64 values together.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// ErrMathOverflow is returned whenever an intermediate or final result cannot
// be represented in the target width.
var ErrMathOverflow = errors.New("fixedpoint: math overflow")

var maxUint128 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")

// MulDiv computes floor(x*y/d) or ceil(x*y/d), carrying the x*y product in
// 256-bit width so it never overflows before the division. It fails with
// ErrMathOverflow if the quotient does not fit back into a uint128.
func MulDiv(x, y, d uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	if d.IsZero() {
		return uint128.Zero, ErrMathOverflow
	}

	xw := uint256.NewInt(0).SetBytes(x.Big().Bytes())
	yw := uint256.NewInt(0).SetBytes(y.Big().Bytes())
	dw := uint256.NewInt(0).SetBytes(d.Big().Bytes())

	product := new(uint256.Int).Mul(xw, yw)

	quotient, remainder := new(uint256.Int), new(uint256.Int)
	quotient.DivMod(product, dw, remainder)

	if roundUp && !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}

	if quotient.Gt(maxUint128) {
		return uint128.Zero, ErrMathOverflow
	}

	return uint128.FromBig(quotient.ToBig()), nil
}

// ShiftRightRoundUpIf performs a logical right shift of a 256-bit value by n
// bits, rounding the result up when roundUp is set and any shifted-out bit
// was nonzero. It fails with ErrMathOverflow when the shifted result does not
// fit in a uint128 (the caller asked for a shift that was too small for the
// magnitude of x).
func ShiftRightRoundUpIf(x *uint256.Int, n uint, roundUp bool) (uint128.Uint128, error) {
	shifted := new(uint256.Int).Rsh(x, n)

	if roundUp {
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), n)
		mask.SubUint64(mask, 1)
		remainder := new(uint256.Int).And(x, mask)
		if !remainder.IsZero() {
			shifted.AddUint64(shifted, 1)
		}
	}

	if shifted.Gt(maxUint128) {
		return uint128.Zero, ErrMathOverflow
	}

	return uint128.FromBig(shifted.ToBig()), nil
}

// CheckedMulShiftRight computes floor((x*y) >> 64), the operation used
// whenever a Q64.64 sqrt price is multiplied by another Q64.64 value (e.g.
// liquidity) and the result must be truncated back down to Q64.64.
func CheckedMulShiftRight(x, y uint128.Uint128) (uint128.Uint128, error) {
	xw := uint256.NewInt(0).SetBytes(x.Big().Bytes())
	yw := uint256.NewInt(0).SetBytes(y.Big().Bytes())
	product := new(uint256.Int).Mul(xw, yw)
	return ShiftRightRoundUpIf(product, 64, false)
}

// CheckedMulShiftRightRoundUp is CheckedMulShiftRight with the result rounded
// up instead of truncated, used on the deposit (input) side of position math.
func CheckedMulShiftRightRoundUp(x, y uint128.Uint128) (uint128.Uint128, error) {
	xw := uint256.NewInt(0).SetBytes(x.Big().Bytes())
	yw := uint256.NewInt(0).SetBytes(y.Big().Bytes())
	product := new(uint256.Int).Mul(xw, yw)
	return ShiftRightRoundUpIf(product, 64, true)
}
