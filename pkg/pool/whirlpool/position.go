package whirlpool

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"soltrading/pkg/pool/whirlpool/fixedpoint"
)

// PositionAmounts holds the token_a/token_b amounts implied by a liquidity
// value over a (lower, upper) tick range at a given current price.
type PositionAmounts struct {
	TokenA uint128.Uint128
	TokenB uint128.Uint128
}

// Position is an open liquidity position over a whirlpool's
// [TickLower, TickUpper] range, the shape decrease_liquidity_quote_by_liquidity
// withdraws from.
type Position struct {
	Pool      *WhirlpoolPool
	TickLower int32
	TickUpper int32
	Liquidity uint128.Uint128
}

// tokenAmountsFromLiquidity implements §4.D's three-case table: a position
// entirely above the current price holds only token A, one entirely below
// holds only token B, and an in-range position holds a mix of both. roundUp
// selects deposit rounding (true, pool never under-collects) vs withdraw
// rounding (false, pool never over-pays).
func tokenAmountsFromLiquidity(liquidity uint128.Uint128, sqrtPriceLower, sqrtPriceUpper, sqrtPriceCurrent uint128.Uint128, roundUp bool) (PositionAmounts, error) {
	if sqrtPriceLower.Cmp(sqrtPriceUpper) >= 0 {
		return PositionAmounts{}, newError(ErrTickOrder, "lower sqrt price must be strictly below upper")
	}

	switch {
	case sqrtPriceCurrent.Cmp(sqrtPriceLower) < 0:
		amountA, err := amountADelta(sqrtPriceLower, sqrtPriceUpper, liquidity, roundUp)
		if err != nil {
			return PositionAmounts{}, err
		}
		return PositionAmounts{TokenA: amountA, TokenB: uint128.Zero}, nil

	case sqrtPriceCurrent.Cmp(sqrtPriceUpper) >= 0:
		amountB, err := amountBDelta(sqrtPriceLower, sqrtPriceUpper, liquidity, roundUp)
		if err != nil {
			return PositionAmounts{}, err
		}
		return PositionAmounts{TokenA: uint128.Zero, TokenB: amountB}, nil

	default:
		amountA, err := amountADelta(sqrtPriceCurrent, sqrtPriceUpper, liquidity, roundUp)
		if err != nil {
			return PositionAmounts{}, err
		}
		amountB, err := amountBDelta(sqrtPriceLower, sqrtPriceCurrent, liquidity, roundUp)
		if err != nil {
			return PositionAmounts{}, err
		}
		return PositionAmounts{TokenA: amountA, TokenB: amountB}, nil
	}
}

// amountADelta computes L * (pu - pl) / (pl * pu), the token-A amount a
// liquidity L spans between sqrt prices pl < pu. The numerator is built in
// 256-bit width (liquidity shifted left 64 bits, per the Q64.64 convention)
// before the first division to avoid losing precision the way a naive
// 128-bit multiply-then-divide would.
func amountADelta(pl, pu, liquidity uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	if pl.IsZero() {
		return uint128.Zero, newError(ErrMathOverflow, "lower sqrt price is zero")
	}

	liq256 := uint256.NewInt(0).SetBytes(liquidity.Big().Bytes())
	plW := uint256.NewInt(0).SetBytes(pl.Big().Bytes())
	puW := uint256.NewInt(0).SetBytes(pu.Big().Bytes())

	numerator1 := new(uint256.Int).Lsh(liq256, 64)
	numerator2 := new(uint256.Int).Sub(puW, plW)

	product := new(uint256.Int).Mul(numerator1, numerator2)

	quotient, remainder := new(uint256.Int), new(uint256.Int)
	quotient.DivMod(product, puW, remainder)
	if roundUp && !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}

	final, finalRem := new(uint256.Int), new(uint256.Int)
	final.DivMod(quotient, plW, finalRem)
	if roundUp && !finalRem.IsZero() {
		final.AddUint64(final, 1)
	}

	if final.Gt(maxUint128Value) {
		return uint128.Zero, newError(ErrMathOverflow, "token A amount exceeds u128")
	}
	return uint128.FromBig(final.ToBig()), nil
}

// amountBDelta computes L * (pu - pl) / 2^64, the token-B amount a
// liquidity L spans between sqrt prices pl < pu.
func amountBDelta(pl, pu, liquidity uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	delta := pu.Sub(pl)
	if roundUp {
		return fixedpoint.CheckedMulShiftRightRoundUp(liquidity, delta)
	}
	return fixedpoint.CheckedMulShiftRight(liquidity, delta)
}

var maxUint128Value = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")

// liquidityFromTokenA inverts amountADelta: given a token-A amount and a
// price range entirely at or above the current price, returns the largest
// liquidity that does not require more than amount of token A. Following
// the complementary rule from §4.D, liquidity derived from a given token
// amount rounds down, so the position never over-claims funds that were
// not actually deposited.
func liquidityFromTokenA(pl, pu uint128.Uint128, amount uint128.Uint128) (uint128.Uint128, error) {
	if pl.IsZero() || pu.IsZero() {
		return uint128.Zero, newError(ErrMathOverflow, "zero sqrt price bound")
	}
	plW := uint256.NewInt(0).SetBytes(pl.Big().Bytes())
	puW := uint256.NewInt(0).SetBytes(pu.Big().Bytes())
	amountW := uint256.NewInt(0).SetBytes(amount.Big().Bytes())

	// liquidity = amount * (pl * pu / 2^64) / (pu - pl)
	product := new(uint256.Int).Mul(plW, puW)
	product.Rsh(product, 64)

	numerator := new(uint256.Int).Mul(amountW, product)
	denom := new(uint256.Int).Sub(puW, plW)
	if denom.IsZero() {
		// A degenerate (zero-width) sub-range, e.g. current price sitting
		// exactly on a range boundary, has no room to deposit and commits
		// zero liquidity rather than being an error.
		return uint128.Zero, nil
	}

	quotient := new(uint256.Int).Div(numerator, denom)
	if quotient.Gt(maxUint128Value) {
		return uint128.Zero, newError(ErrMathOverflow, "liquidity exceeds u128")
	}
	return uint128.FromBig(quotient.ToBig()), nil
}

// liquidityFromTokenB inverts amountBDelta: liquidity = amount * 2^64 / (pu - pl).
func liquidityFromTokenB(pl, pu uint128.Uint128, amount uint128.Uint128) (uint128.Uint128, error) {
	delta := pu.Sub(pl)
	if delta.IsZero() {
		return uint128.Zero, nil
	}
	amountW := uint256.NewInt(0).SetBytes(amount.Big().Bytes())
	deltaW := uint256.NewInt(0).SetBytes(delta.Big().Bytes())

	numerator := new(uint256.Int).Lsh(amountW, 64)
	quotient := new(uint256.Int).Div(numerator, deltaW)
	if quotient.Gt(maxUint128Value) {
		return uint128.Zero, newError(ErrMathOverflow, "liquidity exceeds u128")
	}
	return uint128.FromBig(quotient.ToBig()), nil
}

// maxLiquidityFromTokenAmounts picks the correct single-sided inversion (or
// the minimum of the two) depending on where sqrtPriceCurrent sits relative
// to the range, mirroring the case split in tokenAmountsFromLiquidity.
func maxLiquidityFromTokenAmounts(sqrtPriceLower, sqrtPriceUpper, sqrtPriceCurrent uint128.Uint128, amountA, amountB uint128.Uint128) (uint128.Uint128, error) {
	switch {
	case sqrtPriceCurrent.Cmp(sqrtPriceLower) < 0:
		return liquidityFromTokenA(sqrtPriceLower, sqrtPriceUpper, amountA)
	case sqrtPriceCurrent.Cmp(sqrtPriceUpper) >= 0:
		return liquidityFromTokenB(sqrtPriceLower, sqrtPriceUpper, amountB)
	default:
		liqA, err := liquidityFromTokenA(sqrtPriceCurrent, sqrtPriceUpper, amountA)
		if err != nil {
			return uint128.Zero, err
		}
		liqB, err := liquidityFromTokenB(sqrtPriceLower, sqrtPriceCurrent, amountB)
		if err != nil {
			return uint128.Zero, err
		}
		if liqA.Cmp(liqB) < 0 {
			return liqA, nil
		}
		return liqB, nil
	}
}

// adjustSqrtPriceForSlippage scales a Q64.64 sqrt price by sqrt(1 ± slippage)
// using the sqrt(1+x) ~= 1 + x/2 expansion, which is accurate to well under
// a basis point across the slippage ranges real callers configure (tens to
// low hundreds of bps). up selects the direction: true widens the price
// (worst case for a deposit maximum), false narrows it (worst case for a
// withdraw minimum).
func adjustSqrtPriceForSlippage(sqrtPrice uint128.Uint128, slippageBps uint32, up bool) uint128.Uint128 {
	if slippageBps == 0 {
		return sqrtPrice
	}
	priceW := uint256.NewInt(0).SetBytes(sqrtPrice.Big().Bytes())

	// halfBps is slippageBps/2 expressed in hundredths of a basis point
	// (10^6 divisor) to retain precision on small slippage values.
	halfBpsNumerator := uint256.NewInt(uint64(slippageBps) * 50)
	delta := new(uint256.Int).Mul(priceW, halfBpsNumerator)
	delta.Div(delta, uint256.NewInt(1_000_000))

	var adjusted *uint256.Int
	if up {
		adjusted = new(uint256.Int).Add(priceW, delta)
	} else {
		if delta.Gt(priceW) {
			adjusted = uint256.NewInt(0)
		} else {
			adjusted = new(uint256.Int).Sub(priceW, delta)
		}
	}

	if adjusted.Gt(maxUint128Value) {
		adjusted = maxUint128Value
	}
	return uint128.FromBig(adjusted.ToBig())
}
