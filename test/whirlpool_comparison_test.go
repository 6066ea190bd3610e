package test

import (
	"context"
	"testing"
	"time"

	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"
	"soltrading/pkg/config"
	"soltrading/pkg/pool/whirlpool"
	"soltrading/pkg/protocol"
	"soltrading/pkg/sol"
)

// TestWhirlpoolQuoteAgreesWithSwapQuoteByInputToken checks that
// WhirlpoolPool.Quote (the pkg.Pool interface entry point the router calls)
// and a direct SwapQuoteByInputToken call against the same pool state produce
// exactly the same estimated output: Quote is a thin cosmath.Int wrapper
// around the latter and must not silently diverge from it.
func TestWhirlpoolQuoteAgreesWithSwapQuoteByInputToken(t *testing.T) {
	if err := config.LoadEnv("../.env"); err != nil {
		t.Logf("Warning: Could not load .env file: %v", err)
	}

	endpoints := config.GetRPCEndpoints()
	if len(endpoints) == 0 {
		t.Skip("No RPC endpoints configured. Set RPC_ENDPOINTS in .env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	solClient, err := sol.NewClient(ctx, endpoints[0], "", 20)
	if err != nil {
		t.Fatalf("Failed to create Solana client: %v", err)
	}

	whirlpoolProtocol := protocol.NewWhirlpool(solClient)

	// Largest/most liquid Whirlpool SOL/USDC pool, to avoid RPC pagination.
	whirlpoolPoolID := "FpCMFDFGYotvufJ7HrFHsWEiiQCGbkLCtwHiDnh7o28Q"

	pool, err := whirlpoolProtocol.FetchPoolByID(ctx, whirlpoolPoolID)
	if err != nil {
		t.Fatalf("Failed to fetch Whirlpool pool: %v", err)
	}

	wp, ok := pool.(*whirlpool.WhirlpoolPool)
	if !ok {
		t.Fatalf("FetchPoolByID returned %T, want *whirlpool.WhirlpoolPool", pool)
	}

	testAmount := cosmath.NewInt(1_000_000_000) // 1 SOL

	viaQuote, err := wp.Quote(ctx, solClient, WSOL.String(), testAmount)
	if err != nil {
		t.Fatalf("WhirlpoolPool.Quote: %v", err)
	}

	state := whirlpool.QuotePoolState{
		SqrtPriceX64:     wp.SqrtPrice,
		TickCurrentIndex: wp.TickCurrentIndex,
		Liquidity:        wp.Liquidity,
		TickSpacing:      int32(wp.TickSpacing),
		FeeRate:          uint32(wp.FeeRate),
		TokenMintA:       wp.TokenMintA.String(),
		TokenMintB:       wp.TokenMintB.String(),
	}
	fetcher := whirlpool.NewCachingTickArrayFetcherWithClient(wp, solClient)
	viaSwapQuote, err := whirlpool.SwapQuoteByInputToken(ctx, fetcher, state, WSOL.String(), uint128.FromBig(testAmount.BigInt()), 0, uint128.Zero)
	if err != nil {
		t.Fatalf("SwapQuoteByInputToken: %v", err)
	}

	if !viaQuote.Equal(cosmath.NewIntFromBigInt(viaSwapQuote.EstimatedAmountOut.Big())) {
		t.Errorf("WhirlpoolPool.Quote = %s, SwapQuoteByInputToken = %s, want equal", viaQuote, viaSwapQuote.EstimatedAmountOut)
	}
}
