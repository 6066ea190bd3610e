package whirlpool

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"soltrading/pkg/pool/whirlpool/fixedpoint"
)

// FeeRateDivisor is the denominator Pool.FeeRate is expressed over (hundredths
// of a basis point).
const FeeRateDivisor = 1_000_000

var maxUint64Value = uint128.From64(^uint64(0))

// swapStepResult is the output of a single tick-to-tick swap step.
type swapStepResult struct {
	NextSqrtPriceX64 uint128.Uint128
	AmountIn         uint128.Uint128
	AmountOut        uint128.Uint128
	FeeAmount        uint128.Uint128
}

// computeSwapStep implements §4.E: given the current and target sqrt
// prices, the liquidity active over that interval, the remaining amount,
// and the fee rate, it determines how far the swap can move within this
// step and how much is transferred and charged as fee. aToB selects the
// swap direction (sqrtPriceTarget must be on the correct side of
// sqrtPriceCurrent for that direction); specifiedIsInput selects whether
// amountRemaining is an input budget or an output target.
func computeSwapStep(sqrtPriceCurrent, sqrtPriceTarget uint128.Uint128, liquidity uint128.Uint128, amountRemaining uint128.Uint128, feeRate uint32, aToB bool, specifiedIsInput bool) (swapStepResult, error) {
	var (
		lo, hi uint128.Uint128
	)
	if aToB {
		lo, hi = sqrtPriceTarget, sqrtPriceCurrent
	} else {
		lo, hi = sqrtPriceCurrent, sqrtPriceTarget
	}

	var (
		sqrtPriceNext uint128.Uint128
		fullStep      bool
	)

	if specifiedIsInput {
		amountRemainingLessFee, err := fixedpoint.MulDiv(amountRemaining, uint128.From64(uint64(FeeRateDivisor-feeRate)), uint128.From64(FeeRateDivisor), false)
		if err != nil {
			return swapStepResult{}, wrapError(ErrMathOverflow, err, "computing fee-adjusted remaining amount")
		}

		var maxIn uint128.Uint128
		if aToB {
			maxIn, err = amountADelta(lo, hi, liquidity, true)
		} else {
			maxIn, err = amountBDelta(lo, hi, liquidity, true)
		}
		if err != nil {
			return swapStepResult{}, err
		}

		if amountRemainingLessFee.Cmp(maxIn) >= 0 {
			sqrtPriceNext = sqrtPriceTarget
			fullStep = true
		} else {
			sqrtPriceNext, err = nextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, amountRemainingLessFee, aToB)
			if err != nil {
				return swapStepResult{}, err
			}
		}
	} else {
		var maxOut uint128.Uint128
		var err error
		if aToB {
			maxOut, err = amountBDelta(lo, hi, liquidity, false)
		} else {
			maxOut, err = amountADelta(lo, hi, liquidity, false)
		}
		if err != nil {
			return swapStepResult{}, err
		}

		if amountRemaining.Cmp(maxOut) >= 0 {
			sqrtPriceNext = sqrtPriceTarget
			fullStep = true
		} else {
			sqrtPriceNext, err = nextSqrtPriceFromOutput(sqrtPriceCurrent, liquidity, amountRemaining, aToB)
			if err != nil {
				return swapStepResult{}, err
			}
		}
	}

	if aToB {
		lo, hi = sqrtPriceNext, sqrtPriceCurrent
	} else {
		lo, hi = sqrtPriceCurrent, sqrtPriceNext
	}

	amountIn, err := deltaForInput(lo, hi, liquidity, aToB)
	if err != nil {
		return swapStepResult{}, err
	}
	amountOut, err := deltaForOutput(lo, hi, liquidity, aToB)
	if err != nil {
		return swapStepResult{}, err
	}

	if amountIn.Cmp(maxUint64Value) > 0 {
		return swapStepResult{}, newError(ErrTokenMaxExceeded, "computed input amount exceeds u64::MAX")
	}

	var feeAmount uint128.Uint128
	if specifiedIsInput && !fullStep {
		// Partial step: amountRemaining already includes its fee portion.
		if amountRemaining.Cmp(amountIn) < 0 {
			feeAmount = uint128.Zero
		} else {
			feeAmount = amountRemaining.Sub(amountIn)
		}
	} else {
		feeAmount, err = fixedpoint.MulDiv(amountIn, uint128.From64(uint64(feeRate)), uint128.From64(uint64(FeeRateDivisor-feeRate)), true)
		if err != nil {
			return swapStepResult{}, wrapError(ErrMathOverflow, err, "computing step fee")
		}
	}

	return swapStepResult{
		NextSqrtPriceX64: sqrtPriceNext,
		AmountIn:         amountIn,
		AmountOut:        amountOut,
		FeeAmount:        feeAmount,
	}, nil
}

// deltaForInput returns the token amount moved into the pool across
// [lo, hi], rounded up (input amounts always round in the pool's favor).
func deltaForInput(lo, hi, liquidity uint128.Uint128, aToB bool) (uint128.Uint128, error) {
	if aToB {
		return amountADelta(lo, hi, liquidity, true)
	}
	return amountBDelta(lo, hi, liquidity, true)
}

// deltaForOutput returns the token amount moved out of the pool across
// [lo, hi], rounded down (output amounts never exceed what the pool pays).
func deltaForOutput(lo, hi, liquidity uint128.Uint128, aToB bool) (uint128.Uint128, error) {
	if aToB {
		return amountBDelta(lo, hi, liquidity, false)
	}
	return amountADelta(lo, hi, liquidity, false)
}

// nextSqrtPriceFromInput solves for the sqrt price reached after adding
// amountIn of the input token at the given liquidity, without crossing a
// tick boundary.
func nextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn uint128.Uint128, aToB bool) (uint128.Uint128, error) {
	if aToB {
		return nextSqrtPriceFromAmountA(sqrtPrice, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmountB(sqrtPrice, liquidity, amountIn, true)
}

// nextSqrtPriceFromOutput solves for the sqrt price reached after removing
// amountOut of the output token at the given liquidity.
func nextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut uint128.Uint128, aToB bool) (uint128.Uint128, error) {
	if aToB {
		return nextSqrtPriceFromAmountB(sqrtPrice, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmountA(sqrtPrice, liquidity, amountOut, false)
}

// nextSqrtPriceFromAmountA solves L*(p0-p1)/(p0*p1) = amount for p1 given p0,
// liquidity and amount of token A added (adding=true, price falls) or
// removed (adding=false, price rises). Rounds the result up, since this is
// always used on the input (a_to_b) side or to bound an output (b_to_a),
// both of which must not advantage the trader.
func nextSqrtPriceFromAmountA(price, liquidity, amount uint128.Uint128, adding bool) (uint128.Uint128, error) {
	if amount.IsZero() {
		return price, nil
	}

	liqW := uint256.NewInt(0).SetBytes(liquidity.Big().Bytes())
	priceW := uint256.NewInt(0).SetBytes(price.Big().Bytes())
	amountW := uint256.NewInt(0).SetBytes(amount.Big().Bytes())

	numerator1 := new(uint256.Int).Lsh(liqW, 64)
	product := new(uint256.Int).Mul(amountW, priceW)

	var denominator *uint256.Int
	if adding {
		denominator = new(uint256.Int).Add(numerator1, product)
	} else {
		if product.Cmp(numerator1) >= 0 {
			return uint128.Zero, newError(ErrMathOverflow, "amount removes all liquidity from the pool")
		}
		denominator = new(uint256.Int).Sub(numerator1, product)
	}
	if denominator.IsZero() {
		return uint128.Zero, newError(ErrMathOverflow, "zero denominator solving for next sqrt price")
	}

	numerator := new(uint256.Int).Mul(numerator1, priceW)
	quotient, remainder := new(uint256.Int), new(uint256.Int)
	quotient.DivMod(numerator, denominator, remainder)
	if !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}

	if quotient.Gt(maxUint128Value) {
		return uint128.Zero, newError(ErrMathOverflow, "next sqrt price exceeds u128")
	}
	return uint128.FromBig(quotient.ToBig()), nil
}

// nextSqrtPriceFromAmountB solves L*(p1-p0)/2^64 = amount for p1: a linear
// move, rounded down when adding token B (price rises less) and up when
// removing it (price falls further), matching the "never advantage the
// trader" rounding policy.
func nextSqrtPriceFromAmountB(price, liquidity, amount uint128.Uint128, adding bool) (uint128.Uint128, error) {
	amountW := uint256.NewInt(0).SetBytes(amount.Big().Bytes())
	liqW := uint256.NewInt(0).SetBytes(liquidity.Big().Bytes())
	if liqW.IsZero() {
		return uint128.Zero, newError(ErrMathOverflow, "zero liquidity")
	}

	numerator := new(uint256.Int).Lsh(amountW, 64)
	quotient, remainder := new(uint256.Int), new(uint256.Int)
	quotient.DivMod(numerator, liqW, remainder)

	priceW := uint256.NewInt(0).SetBytes(price.Big().Bytes())
	var result *uint256.Int
	if adding {
		result = new(uint256.Int).Add(priceW, quotient)
	} else {
		if !remainder.IsZero() {
			quotient.AddUint64(quotient, 1)
		}
		if quotient.Gt(priceW) {
			return uint128.Zero, newError(ErrMathOverflow, "amount removes more value than the pool holds at this price")
		}
		result = new(uint256.Int).Sub(priceW, quotient)
	}

	if result.Gt(maxUint128Value) {
		return uint128.Zero, newError(ErrMathOverflow, "next sqrt price exceeds u128")
	}
	return uint128.FromBig(result.ToBig()), nil
}
