package whirlpool

import (
	"testing"

	"lukechampine.com/uint128"
)

func mustSqrtPrice(t *testing.T, tick int32) uint128.Uint128 {
	t.Helper()
	p, err := tickIndexToSqrtPriceX64(tick)
	if err != nil {
		t.Fatalf("tick %d: %v", tick, err)
	}
	return p
}

// TestLiquidityRoundTrip checks that converting liquidity to token amounts
// (rounded up) and back to liquidity never overshoots the original value,
// and never undershoots it by more than 1.
func TestLiquidityRoundTrip(t *testing.T) {
	pl := mustSqrtPrice(t, -1000)
	pu := mustSqrtPrice(t, 1000)
	pc := mustSqrtPrice(t, 0)
	liquidity := uint128.From64(1_000_000_000)

	amounts, err := tokenAmountsFromLiquidity(liquidity, pl, pu, pc, true)
	if err != nil {
		t.Fatalf("tokenAmountsFromLiquidity: %v", err)
	}

	roundTripped, err := maxLiquidityFromTokenAmounts(pl, pu, pc, amounts.TokenA, amounts.TokenB)
	if err != nil {
		t.Fatalf("maxLiquidityFromTokenAmounts: %v", err)
	}

	if roundTripped.Cmp(liquidity) > 0 {
		t.Fatalf("round-tripped liquidity %s exceeds original %s", roundTripped, liquidity)
	}
	diff := liquidity.Sub(roundTripped)
	if diff.Cmp(uint128.From64(1)) > 0 {
		t.Fatalf("round-tripped liquidity off by %s, want <= 1", diff)
	}
}

// TestSlippageMonotonicity checks that widening the slippage tolerance can
// only widen (never narrow) the maximum token bound.
func TestSlippageMonotonicity(t *testing.T) {
	pl := mustSqrtPrice(t, -640)
	pu := mustSqrtPrice(t, 640)
	pc := mustSqrtPrice(t, 0)
	liquidity := uint128.From64(5_000_000)

	maxAt := func(slippageBps uint32) uint128.Uint128 {
		pcMax := adjustSqrtPriceForSlippage(pc, slippageBps, true)
		amounts, err := tokenAmountsFromLiquidity(liquidity, pl, pu, pcMax, true)
		if err != nil {
			t.Fatalf("tokenAmountsFromLiquidity: %v", err)
		}
		return amounts.TokenB
	}

	low := maxAt(10)
	high := maxAt(500)
	if high.Cmp(low) < 0 {
		t.Fatalf("token_max at higher slippage (%s) is below lower slippage (%s)", high, low)
	}
}

func TestSlippageZeroIsIdentity(t *testing.T) {
	price := mustSqrtPrice(t, 12345)
	if got := adjustSqrtPriceForSlippage(price, 0, true); got.Cmp(price) != 0 {
		t.Fatalf("zero slippage up = %s, want %s", got, price)
	}
	if got := adjustSqrtPriceForSlippage(price, 0, false); got.Cmp(price) != 0 {
		t.Fatalf("zero slippage down = %s, want %s", got, price)
	}
}

// TestIncreaseLiquidityQuoteAtLowerBound covers depositing token B at a
// current price sitting exactly on the position's lower tick: there is no
// room to commit any liquidity, so every field of the quote is zero.
func TestIncreaseLiquidityQuoteAtLowerBound(t *testing.T) {
	pool := QuotePoolState{
		SqrtPriceX64:     mustSqrtPrice(t, 0),
		TickCurrentIndex: 0,
		Liquidity:        uint128.Zero,
		TickSpacing:      64,
		FeeRate:          2000,
		TokenMintA:       "MintA",
		TokenMintB:       "MintB",
	}

	quote, err := IncreaseLiquidityQuoteByInputToken(pool, "MintB", uint128.From64(1000), 0, 64, 0)
	if err != nil {
		t.Fatalf("IncreaseLiquidityQuoteByInputToken: %v", err)
	}

	if !quote.Liquidity.IsZero() {
		t.Errorf("liquidity = %s, want 0", quote.Liquidity)
	}
	if !quote.TokenEstA.IsZero() || !quote.TokenEstB.IsZero() {
		t.Errorf("token_est = (%s, %s), want (0, 0)", quote.TokenEstA, quote.TokenEstB)
	}
	if !quote.TokenMaxA.IsZero() || !quote.TokenMaxB.IsZero() {
		t.Errorf("token_max = (%s, %s), want (0, 0)", quote.TokenMaxA, quote.TokenMaxB)
	}
}

// TestDecreaseLiquidityQuoteNarrowsWithSlippage checks that withdrawing an
// in-range position's liquidity yields both tokens, and that the slippage
// minimums never exceed the estimates they bound.
func TestDecreaseLiquidityQuoteNarrowsWithSlippage(t *testing.T) {
	pool := &WhirlpoolPool{
		SqrtPrice:        mustSqrtPrice(t, 0),
		TickCurrentIndex: 0,
	}
	position := &Position{
		Pool:      pool,
		TickLower: -640,
		TickUpper: 640,
		Liquidity: uint128.From64(5_000_000),
	}

	quote, err := DecreaseLiquidityQuoteByLiquidity(position, 100)
	if err != nil {
		t.Fatalf("DecreaseLiquidityQuoteByLiquidity: %v", err)
	}

	if quote.TokenEstA.IsZero() || quote.TokenEstB.IsZero() {
		t.Fatalf("expected both sides nonzero for an in-range position, got (%s, %s)", quote.TokenEstA, quote.TokenEstB)
	}
	if quote.TokenMinA.Cmp(quote.TokenEstA) > 0 {
		t.Errorf("token_min_a %s exceeds token_est_a %s", quote.TokenMinA, quote.TokenEstA)
	}
	if quote.TokenMinB.Cmp(quote.TokenEstB) > 0 {
		t.Errorf("token_min_b %s exceeds token_est_b %s", quote.TokenMinB, quote.TokenEstB)
	}
}
