package whirlpool

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

var (
	testWhirlpoolOne = solana.MustPublicKeyFromBase58("7qbRF6YsyGuLUVs6Y1q64bdVrfe4ZcUUz1JRdoVNUJnm")
	testWhirlpoolTwo = solana.MustPublicKeyFromBase58("HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ")
)

// TestComposeTwoHopQuoteExactInConserves checks that an exact-in two-hop
// composition, where the first leg's output equals the second leg's input
// on the shared intermediate token, succeeds and carries the first leg's
// input amount and the second leg's slippage threshold through.
func TestComposeTwoHopQuoteExactInConserves(t *testing.T) {
	q1 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(1000),
		EstimatedAmountOut:     uint128.From64(950),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
	}
	q2 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(950),
		EstimatedAmountOut:     uint128.From64(900),
		OtherAmountThreshold:   uint128.From64(890),
		AmountSpecifiedIsInput: true,
		AToB:                   false,
	}

	poolOne := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}
	poolTwo := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}

	quote, err := ComposeTwoHopQuote(testWhirlpoolOne, testWhirlpoolTwo, poolOne, poolTwo, q1, q2, "MintMid", "MintMid")
	if err != nil {
		t.Fatalf("ComposeTwoHopQuote: %v", err)
	}
	if quote.Amount.Cmp(q1.EstimatedAmountIn) != 0 {
		t.Errorf("amount = %s, want %s", quote.Amount, q1.EstimatedAmountIn)
	}
	if quote.OtherAmountThreshold.Cmp(q2.OtherAmountThreshold) != 0 {
		t.Errorf("other_amount_threshold = %s, want %s", quote.OtherAmountThreshold, q2.OtherAmountThreshold)
	}
	if !quote.AmountSpecifiedIsInput {
		t.Error("expected amount_specified_is_input = true")
	}
	if quote.TickArrayOne0 == (solana.PublicKey{}) || quote.TickArrayOne1 == (solana.PublicKey{}) || quote.TickArrayOne2 == (solana.PublicKey{}) {
		t.Error("expected nonzero first-leg tick array addresses")
	}
	if quote.TickArrayTwo0 == (solana.PublicKey{}) || quote.TickArrayTwo1 == (solana.PublicKey{}) || quote.TickArrayTwo2 == (solana.PublicKey{}) {
		t.Error("expected nonzero second-leg tick array addresses")
	}
	if quote.TickArrayOne0 == quote.TickArrayTwo0 {
		t.Error("expected distinct tick array addresses between legs on distinct whirlpools")
	}
}

// TestComposeTwoHopQuoteIntermediateMismatch checks that a first leg whose
// output does not equal the second leg's input on the shared token is
// rejected rather than silently composed.
func TestComposeTwoHopQuoteIntermediateMismatch(t *testing.T) {
	q1 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(1000),
		EstimatedAmountOut:     uint128.From64(950),
		AmountSpecifiedIsInput: true,
	}
	q2 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(900),
		EstimatedAmountOut:     uint128.From64(850),
		AmountSpecifiedIsInput: true,
	}

	poolOne := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}
	poolTwo := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}

	_, err := ComposeTwoHopQuote(testWhirlpoolOne, testWhirlpoolTwo, poolOne, poolTwo, q1, q2, "MintMid", "MintMid")
	if !IsKind(err, ErrIntermediateTokenAmountMismatch) {
		t.Fatalf("expected ErrIntermediateTokenAmountMismatch, got %v", err)
	}
}

// TestComposeTwoHopQuoteRejectsUnarmedPartialFill checks an exact-out
// composition where the second leg only partially fills: without a nonzero
// sqrt_price_limit on the first leg to arm that possibility, the owner
// would be left holding an unrequested surplus of the intermediate token,
// so composition must fail.
func TestComposeTwoHopQuoteRejectsUnarmedPartialFill(t *testing.T) {
	q1 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(1000),
		EstimatedAmountOut:     uint128.From64(950),
		AmountSpecifiedIsInput: false,
		SqrtPriceLimitX64:      uint128.Zero,
	}
	q2 := &SwapQuote{
		EstimatedAmountIn:      uint128.From64(950),
		EstimatedAmountOut:     uint128.From64(500),
		AmountSpecifiedIsInput: false,
		PartialFill:            true,
	}

	poolOne := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}
	poolTwo := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}

	_, err := ComposeTwoHopQuote(testWhirlpoolOne, testWhirlpoolTwo, poolOne, poolTwo, q1, q2, "MintMid", "MintMid")
	if !IsKind(err, ErrPartialFillNotAllowed) {
		t.Fatalf("expected ErrPartialFillNotAllowed, got %v", err)
	}
}

func TestComposeTwoHopQuoteMintMismatch(t *testing.T) {
	q1 := &SwapQuote{AmountSpecifiedIsInput: true}
	q2 := &SwapQuote{AmountSpecifiedIsInput: true}

	poolOne := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}
	poolTwo := QuotePoolState{SqrtPriceX64: mustSqrtPrice(t, 0), TickCurrentIndex: 0, TickSpacing: 64}

	_, err := ComposeTwoHopQuote(testWhirlpoolOne, testWhirlpoolTwo, poolOne, poolTwo, q1, q2, "MintA", "MintB")
	if !IsKind(err, ErrInvalidIntermediaryMint) {
		t.Fatalf("expected ErrInvalidIntermediaryMint, got %v", err)
	}
}
