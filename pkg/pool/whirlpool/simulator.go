package whirlpool

import (
	"context"
	"math/big"

	"lukechampine.com/uint128"

	"soltrading/pkg/pool/whirlpool/tickmath"
)

// MaxSwapSteps bounds the number of swap steps (loop iterations, one per
// initialized tick reached) a single simulated swap may perform. A real swap touching this many initialized ticks would
// already have exhausted the 3 tick arrays an instruction can address, so
// this is a defensive cap rather than a real limit on valid input.
const MaxSwapSteps = 100

// simulationResult is the result of simulating a swap across zero or more tick
// boundaries, per §4.F.
type simulationResult struct {
	AmountIn         uint128.Uint128
	AmountOut        uint128.Uint128
	FeeAmount        uint128.Uint128
	SqrtPriceX64     uint128.Uint128
	TickCurrentIndex int32
	PartialFill      bool
	StepsTaken       int
}

// SimulatorInput bundles the pool state the swap loop mutates as it crosses
// tick boundaries. Callers construct this from a WhirlpoolPool snapshot.
type SimulatorInput struct {
	SqrtPriceX64        uint128.Uint128
	TickCurrentIndex    int32
	Liquidity           uint128.Uint128
	TickSpacing         int32
	FeeRate             uint32
	AToB                bool
	SpecifiedIsInput    bool
	AmountSpecified     uint128.Uint128
	SqrtPriceLimitX64   uint128.Uint128
}

// simulateSwap runs the step loop from §4.F: repeatedly computing a swap
// step toward the next initialized tick (or the domain/limit boundary),
// crossing it when the step consumes the full interval, until the specified
// amount is exhausted or no further ticks are available.
func simulateSwap(ctx context.Context, fetcher TickArrayFetcher, in SimulatorInput) (*simulationResult, error) {
	sqrtPriceLimit := in.SqrtPriceLimitX64
	if sqrtPriceLimit.IsZero() {
		if in.AToB {
			sqrtPriceLimit = tickmath.MinSqrtPriceX64
		} else {
			sqrtPriceLimit = tickmath.MaxSqrtPriceX64
		}
	}

	currentSqrtPrice := in.SqrtPriceX64
	currentTick := in.TickCurrentIndex
	currentLiquidity := in.Liquidity

	amountRemaining := in.AmountSpecified
	totalIn := uint128.Zero
	totalOut := uint128.Zero
	totalFee := uint128.Zero

	steps := 0
	for !amountRemaining.IsZero() && steps < MaxSwapSteps {
		if in.AToB && currentSqrtPrice.Cmp(sqrtPriceLimit) <= 0 {
			break
		}
		if !in.AToB && currentSqrtPrice.Cmp(sqrtPriceLimit) >= 0 {
			break
		}

		next, err := nextInitializedTick(ctx, fetcher, currentTick, in.TickSpacing, in.AToB)
		if err != nil {
			return nil, err
		}

		var target uint128.Uint128
		switch {
		case next.Found:
			target = next.SqrtPriceX64
		case in.AToB:
			target = tickmath.MinSqrtPriceX64
		default:
			target = tickmath.MaxSqrtPriceX64
		}

		if in.AToB && target.Cmp(sqrtPriceLimit) < 0 {
			target = sqrtPriceLimit
		}
		if !in.AToB && target.Cmp(sqrtPriceLimit) > 0 {
			target = sqrtPriceLimit
		}

		if currentLiquidity.IsZero() {
			// No liquidity active over this interval: jump straight to the
			// boundary without transferring anything. b_to_a still stops
			// short of crossing a tick that happens to sit exactly on the
			// caller's limit, matching the rule below.
			currentSqrtPrice = target
			steps++
			if !next.Found || (!in.AToB && target.Cmp(sqrtPriceLimit) == 0) {
				tickAtPrice, err := tickmath.SqrtPriceX64ToTickIndex(currentSqrtPrice)
				if err != nil {
					return nil, wrapError(ErrInvalidTickIndex, err, "resolving tick for post-step sqrt price")
				}
				currentTick = tickAtPrice
				break
			}
			currentLiquidity, currentTick, err = crossTick(currentLiquidity, next, in.AToB)
			if err != nil {
				return nil, err
			}
			continue
		}

		step, err := computeSwapStep(currentSqrtPrice, target, currentLiquidity, amountRemaining, in.FeeRate, in.AToB, in.SpecifiedIsInput)
		if err != nil {
			return nil, err
		}

		totalIn = totalIn.Add(step.AmountIn)
		totalOut = totalOut.Add(step.AmountOut)
		totalFee = totalFee.Add(step.FeeAmount)

		if in.SpecifiedIsInput {
			consumed := step.AmountIn.Add(step.FeeAmount)
			if consumed.Cmp(amountRemaining) >= 0 {
				amountRemaining = uint128.Zero
			} else {
				amountRemaining = amountRemaining.Sub(consumed)
			}
		} else {
			if step.AmountOut.Cmp(amountRemaining) >= 0 {
				amountRemaining = uint128.Zero
			} else {
				amountRemaining = amountRemaining.Sub(step.AmountOut)
			}
		}

		steps++
		reachedTarget := step.NextSqrtPriceX64.Cmp(target) == 0

		// b_to_a stops short of crossing when the step lands exactly on the
		// caller's limit: the limit, not the tick, bounds the swap. a_to_b
		// must still cross in that case, since its tick_current convention
		// (next.Index - 1) is what makes the boundary tick belong to the
		// range the price is leaving, not the one it stopped in.
		if reachedTarget && next.Found && (target.Cmp(sqrtPriceLimit) != 0 || in.AToB) {
			currentLiquidity, currentTick, err = crossTick(currentLiquidity, next, in.AToB)
			if err != nil {
				return nil, err
			}
			currentSqrtPrice = target
			continue
		}

		currentSqrtPrice = step.NextSqrtPriceX64
		tickAtPrice, err := tickmath.SqrtPriceX64ToTickIndex(currentSqrtPrice)
		if err != nil {
			return nil, wrapError(ErrInvalidTickIndex, err, "resolving tick for post-step sqrt price")
		}
		currentTick = tickAtPrice
		break
	}

	return &simulationResult{
		AmountIn:         totalIn,
		AmountOut:        totalOut,
		FeeAmount:        totalFee,
		SqrtPriceX64:     currentSqrtPrice,
		TickCurrentIndex: currentTick,
		PartialFill:      !amountRemaining.IsZero(),
		StepsTaken:       steps,
	}, nil
}

// crossTick applies a tick's signed liquidity_net to the running liquidity
// when the swap passes through it, and returns the tick_current convention
// from §4.F: a_to_b lands one tick below the crossed boundary (the boundary
// tick belongs to the range just below it), b_to_a lands exactly on it.
func crossTick(liquidity uint128.Uint128, next nextInitializedTickResult, aToB bool) (uint128.Uint128, int32, error) {
	delta := big.NewInt(next.LiquidityNet)
	if aToB {
		delta.Neg(delta)
	}

	updated := new(big.Int).Add(liquidity.Big(), delta)
	if updated.Sign() < 0 {
		return uint128.Zero, 0, newError(ErrMathOverflow, "liquidity underflow crossing tick %d", next.Index)
	}
	if updated.BitLen() > 128 {
		return uint128.Zero, 0, newError(ErrMathOverflow, "liquidity overflow crossing tick %d", next.Index)
	}

	newTick := next.Index
	if aToB {
		newTick = next.Index - 1
	}
	return uint128.FromBig(updated), newTick, nil
}
