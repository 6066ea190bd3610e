package whirlpool

import (
	"context"
	"testing"

	"lukechampine.com/uint128"

	"soltrading/pkg/pool/whirlpool/tickmath"
)

// emptyFetcher reports every tick array as uninitialized, modeling a pool
// whose only liquidity is a full-range position: no tick boundary is ever
// crossed, so the swap loop runs straight to the price domain boundary.
type emptyFetcher struct{}

func (emptyFetcher) GetTickArray(ctx context.Context, startTickIndex int32) (*TickArray, error) {
	return nil, nil
}

// TestSwapQuoteExactInBasic checks that a modest input on a full-range pool
// fills completely, moving the price up without exhausting it.
func TestSwapQuoteExactInBasic(t *testing.T) {
	pool := QuotePoolState{
		SqrtPriceX64:     mustSqrtPrice(t, 0),
		TickCurrentIndex: 0,
		Liquidity:        uint128.From64(1 << 33),
		TickSpacing:      64,
		FeeRate:          1000,
		TokenMintA:       "MintA",
		TokenMintB:       "MintB",
	}

	quote, err := SwapQuoteByInputToken(context.Background(), emptyFetcher{}, pool, "MintB", uint128.From64(20000), 0, uint128.Zero)
	if err != nil {
		t.Fatalf("SwapQuoteByInputToken: %v", err)
	}

	if quote.PartialFill {
		t.Error("expected a full fill")
	}
	if quote.EstimatedAmountOut.IsZero() {
		t.Error("expected a nonzero output amount")
	}
	if quote.EstimatedEndTickIndex <= 0 {
		t.Errorf("end tick index = %d, want > 0", quote.EstimatedEndTickIndex)
	}
	if quote.AToB {
		t.Error("expected a_to_b = false when swapping in MintB")
	}
}

// TestSwapQuoteExactInPartialFill checks that an input far larger than the
// pool can absorb exhausts the price domain before the amount, yielding a
// partial fill pinned at MAX_SQRT_PRICE.
func TestSwapQuoteExactInPartialFill(t *testing.T) {
	pool := QuotePoolState{
		SqrtPriceX64:     mustSqrtPrice(t, 0),
		TickCurrentIndex: 0,
		Liquidity:        uint128.From64(1 << 33),
		TickSpacing:      64,
		FeeRate:          1000,
		TokenMintA:       "MintA",
		TokenMintB:       "MintB",
	}

	maxAmount := uint128.Max
	quote, err := SwapQuoteByInputToken(context.Background(), emptyFetcher{}, pool, "MintB", maxAmount, 0, uint128.Zero)
	if err != nil {
		t.Fatalf("SwapQuoteByInputToken: %v", err)
	}

	if !quote.PartialFill {
		t.Error("expected a partial fill")
	}
	if quote.EstimatedAmountIn.Cmp(maxAmount) >= 0 {
		t.Errorf("estimated_amount_in = %s, want < %s", quote.EstimatedAmountIn, maxAmount)
	}
	if quote.EstimatedEndSqrtPriceX64.Cmp(tickmath.MaxSqrtPriceX64) != 0 {
		t.Errorf("estimated_end_sqrt_price = %s, want %s", quote.EstimatedEndSqrtPriceX64, tickmath.MaxSqrtPriceX64)
	}
}

// TestSwapStepExactOutTokenMaxExceeded checks that requesting an output that
// would require moving the price across nearly the entire domain demands an
// input that no longer fits in u64, and must fail rather than silently
// wrapping.
func TestSwapStepExactOutTokenMaxExceeded(t *testing.T) {
	pool := QuotePoolState{
		SqrtPriceX64:     mustSqrtPrice(t, 0),
		TickCurrentIndex: 0,
		Liquidity:        uint128.From64(1 << 34),
		TickSpacing:      64,
		FeeRate:          1000,
		TokenMintA:       "MintA",
		TokenMintB:       "MintB",
	}

	_, err := SwapQuoteByOutputToken(context.Background(), emptyFetcher{}, pool, "MintA", uint128.Max, 0, uint128.Zero)
	if err == nil {
		t.Fatal("expected an error requesting an unreachable output amount")
	}
	if !IsKind(err, ErrTokenMaxExceeded) {
		t.Fatalf("expected ErrTokenMaxExceeded, got %v", err)
	}
}
