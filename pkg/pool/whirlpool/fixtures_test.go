package whirlpool

import (
	"context"
	"math/big"
	"testing"

	"lukechampine.com/uint128"
)

// fixtureFetcher serves a small, hand-built set of TickArrays keyed by their
// start tick index, modeling a pool with real initialized ticks (unlike
// emptyFetcher, which models an empty one). Missing arrays report as
// uninitialized, same as CachingTickArrayFetcher does on a cache miss.
type fixtureFetcher map[int32]*TickArray

func (f fixtureFetcher) GetTickArray(ctx context.Context, startTickIndex int32) (*TickArray, error) {
	return f[startTickIndex], nil
}

// buildTickArrayWithInitializedTick constructs a single-array fixture with
// exactly one initialized tick carrying the given signed liquidity_net.
func buildTickArrayWithInitializedTick(start, spacing, tickIndex int32, liquidityNet int64) *TickArray {
	arr := &TickArray{StartTickIndex: start}
	slot := (tickIndex - start) / spacing
	arr.Ticks[slot] = Tick{
		Initialized:    true,
		LiquidityNet:   *big.NewInt(liquidityNet),
		LiquidityGross: uint128.From64(uint64(abs64(liquidityNet))),
	}
	return arr
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// TestCrossTickAppliesSignedLiquidityNet exercises crossTick directly: a_to_b
// subtracts the tick's liquidity_net (and lands one tick below the boundary),
// b_to_a adds it (and lands exactly on the boundary).
func TestCrossTickAppliesSignedLiquidityNet(t *testing.T) {
	tick := nextInitializedTickResult{Index: 640, LiquidityNet: 300_000, Found: true}

	gotLiquidity, gotTick, err := crossTick(uint128.From64(1_000_000), tick, true)
	if err != nil {
		t.Fatalf("crossTick a_to_b: %v", err)
	}
	if gotLiquidity.Cmp(uint128.From64(700_000)) != 0 {
		t.Errorf("a_to_b liquidity = %s, want 700000", gotLiquidity)
	}
	if gotTick != 639 {
		t.Errorf("a_to_b tick_current = %d, want 639", gotTick)
	}

	gotLiquidity, gotTick, err = crossTick(uint128.From64(1_000_000), tick, false)
	if err != nil {
		t.Fatalf("crossTick b_to_a: %v", err)
	}
	if gotLiquidity.Cmp(uint128.From64(1_300_000)) != 0 {
		t.Errorf("b_to_a liquidity = %s, want 1300000", gotLiquidity)
	}
	if gotTick != 640 {
		t.Errorf("b_to_a tick_current = %d, want 640", gotTick)
	}
}

// TestCrossTickRejectsLiquidityUnderflow checks that crossing a tick whose
// negative liquidity_net would drive the running liquidity below zero is
// rejected rather than silently clamped.
func TestCrossTickRejectsLiquidityUnderflow(t *testing.T) {
	tick := nextInitializedTickResult{Index: 640, LiquidityNet: -2_000_000, Found: true}
	_, _, err := crossTick(uint128.From64(1_000_000), tick, false)
	if !IsKind(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
}

// TestSimulateSwapCrossesZeroLiquidityGapThenFillsOnNet covers the core of
// crossTick's liquidity_net application inside the full swap loop: the pool
// carries no liquidity below tick 64, so the step loop fast-forwards through
// that gap without transferring anything, crosses the boundary, picks up the
// initialized tick's liquidity_net, and only then is able to fill the
// remaining amount.
func TestSimulateSwapCrossesZeroLiquidityGapThenFillsOnNet(t *testing.T) {
	spacing := int32(64)
	fetcher := fixtureFetcher{
		0: buildTickArrayWithInitializedTick(0, spacing, 64, 1_000_000),
	}

	res, err := simulateSwap(context.Background(), fetcher, SimulatorInput{
		SqrtPriceX64:      mustSqrtPrice(t, 0),
		TickCurrentIndex:  0,
		Liquidity:         uint128.Zero,
		TickSpacing:       spacing,
		FeeRate:           1000,
		AToB:              false,
		SpecifiedIsInput:  true,
		AmountSpecified:   uint128.From64(5_000),
		SqrtPriceLimitX64: uint128.Zero,
	})
	if err != nil {
		t.Fatalf("simulateSwap: %v", err)
	}

	if res.AmountOut.IsZero() {
		t.Fatal("expected a nonzero output once the swap crosses into the tick's added liquidity")
	}
	if res.PartialFill {
		t.Error("expected a full fill once liquidity is available past the gap")
	}
	if res.TickCurrentIndex < 64 {
		t.Errorf("tick_current = %d, want >= 64 (swap should have crossed and continued past it)", res.TickCurrentIndex)
	}
}

// TestSimulateSwapCrossesOnLimitTieATOB covers the asymmetric tie-break from
// §4.F: when sqrt_price_limit coincides exactly with the next initialized
// tick's own price, a_to_b must still cross it (apply liquidity_net, land
// one tick below the boundary) rather than stop short.
func TestSimulateSwapCrossesOnLimitTieATOB(t *testing.T) {
	spacing := int32(64)
	fetcher := fixtureFetcher{
		0: buildTickArrayWithInitializedTick(0, spacing, 64, 500_000),
	}
	limit := mustSqrtPrice(t, 64)

	res, err := simulateSwap(context.Background(), fetcher, SimulatorInput{
		SqrtPriceX64:      mustSqrtPrice(t, 128),
		TickCurrentIndex:  128,
		Liquidity:         uint128.From64(1_000_000),
		TickSpacing:       spacing,
		FeeRate:           1000,
		AToB:              true,
		SpecifiedIsInput:  true,
		AmountSpecified:   uint128.From64(1 << 40),
		SqrtPriceLimitX64: limit,
	})
	if err != nil {
		t.Fatalf("simulateSwap: %v", err)
	}

	if res.TickCurrentIndex != 63 {
		t.Errorf("tick_current = %d, want 63 (next_tick.index - 1, crossed on the tie)", res.TickCurrentIndex)
	}
}

// TestSimulateSwapStopsShortOnLimitTieBTOA is the mirror of
// TestSimulateSwapCrossesOnLimitTieATOB: on the same exact-boundary tie,
// b_to_a must not cross the tick, because sqrt_price_limit (not the tick) is
// what legitimately stopped the swap.
func TestSimulateSwapStopsShortOnLimitTieBTOA(t *testing.T) {
	spacing := int32(64)
	fetcher := fixtureFetcher{
		0: buildTickArrayWithInitializedTick(0, spacing, 64, 500_000),
	}
	limit := mustSqrtPrice(t, 64)

	res, err := simulateSwap(context.Background(), fetcher, SimulatorInput{
		SqrtPriceX64:      mustSqrtPrice(t, 0),
		TickCurrentIndex:  0,
		Liquidity:         uint128.From64(1_000_000),
		TickSpacing:       spacing,
		FeeRate:           1000,
		AToB:              false,
		SpecifiedIsInput:  true,
		AmountSpecified:   uint128.From64(1 << 40),
		SqrtPriceLimitX64: limit,
	})
	if err != nil {
		t.Fatalf("simulateSwap: %v", err)
	}

	if res.TickCurrentIndex != 64 {
		t.Errorf("tick_current = %d, want 64 (stopped by the limit, not crossed)", res.TickCurrentIndex)
	}
}
