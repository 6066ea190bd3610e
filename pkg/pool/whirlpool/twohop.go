package whirlpool

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// TwoHopQuote is the composed result of two SwapQuotes sharing an
// intermediate token, ready to hand to an instruction builder. The six
// TickArray* fields are the accounts each leg's swap instruction needs,
// derived from the same (tick_current, tick_spacing, a_to_b) the leg was
// quoted against.
type TwoHopQuote struct {
	WhirlpoolOne           string
	WhirlpoolTwo           string
	SqrtPriceLimitOneX64   uint128.Uint128
	SqrtPriceLimitTwoX64   uint128.Uint128
	Amount                 uint128.Uint128
	OtherAmountThreshold   uint128.Uint128
	TickArrayOne0          solana.PublicKey
	TickArrayOne1          solana.PublicKey
	TickArrayOne2          solana.PublicKey
	TickArrayTwo0          solana.PublicKey
	TickArrayTwo1          solana.PublicKey
	TickArrayTwo2          solana.PublicKey
	AmountSpecifiedIsInput bool
	AToBOne                bool
	AToBTwo                bool
}

// ComposeTwoHopQuote implements §4.H: validates that q1's output feeds q2's
// input on the shared intermediate token, enforces the exact amount-match
// the on-chain two-hop instruction requires, applies the asymmetric
// partial-fill legality rules, and derives each leg's candidate tick-array
// accounts from the pool state it was quoted against before assembling a
// TwoHopQuote.
func ComposeTwoHopQuote(whirlpoolOne, whirlpoolTwo solana.PublicKey, poolOne, poolTwo QuotePoolState, q1, q2 *SwapQuote, intermediateMintOne, intermediateMintTwo string) (*TwoHopQuote, error) {
	if intermediateMintOne != intermediateMintTwo {
		return nil, newError(ErrInvalidIntermediaryMint, "first swap's output mint %s does not match second swap's input mint %s", intermediateMintOne, intermediateMintTwo)
	}
	if q1.AmountSpecifiedIsInput != q2.AmountSpecifiedIsInput {
		return nil, newError(ErrInvalidIntermediaryMint, "both legs of a two-hop swap must share amount_specified_is_input")
	}

	if q1.AmountSpecifiedIsInput {
		if q1.EstimatedAmountOut.Cmp(q2.EstimatedAmountIn) != 0 {
			return nil, newError(ErrIntermediateTokenAmountMismatch, "first leg's output %s does not equal second leg's input %s", q1.EstimatedAmountOut, q2.EstimatedAmountIn)
		}
		// Exact-in: the second leg must fully consume the intermediate
		// token it receives, or it would leave a remainder with the owner.
		if q2.PartialFill {
			return nil, newError(ErrPartialFillNotAllowed, "second leg of an exact-in two-hop swap cannot partially fill")
		}
		// The first leg may only partially fill if the caller explicitly
		// armed that possibility by setting a nonzero limit on the second.
		if q1.PartialFill && q2.SqrtPriceLimitX64.IsZero() {
			return nil, newError(ErrPartialFillNotAllowed, "first leg partially filled but sqrt_price_limit_two is zero")
		}
	} else {
		if q2.EstimatedAmountIn.Cmp(q1.EstimatedAmountOut) != 0 {
			return nil, newError(ErrIntermediateTokenAmountMismatch, "second leg's input %s does not equal first leg's output %s", q2.EstimatedAmountIn, q1.EstimatedAmountOut)
		}
		// Exact-out: the first leg must deliver exactly the intermediate
		// amount the second leg needs; a phantom (unsupplied) input is
		// never legal.
		if q1.PartialFill {
			return nil, newError(ErrPartialFillNotAllowed, "first leg of an exact-out two-hop swap cannot partially fill")
		}
		if q2.PartialFill && q1.SqrtPriceLimitX64.IsZero() {
			return nil, newError(ErrPartialFillNotAllowed, "second leg partially filled but sqrt_price_limit_one is zero")
		}
	}

	var amount, threshold uint128.Uint128
	if q1.AmountSpecifiedIsInput {
		amount = q1.EstimatedAmountIn
		threshold = q2.OtherAmountThreshold
	} else {
		amount = q2.EstimatedAmountOut
		threshold = q1.OtherAmountThreshold
	}

	tickArraysOne, err := DeriveCandidateTickArrayAddresses(whirlpoolOne, poolOne.TickCurrentIndex, poolOne.TickSpacing, q1.AToB)
	if err != nil {
		return nil, wrapError(ErrFetch, err, "deriving first leg's tick arrays")
	}
	tickArraysTwo, err := DeriveCandidateTickArrayAddresses(whirlpoolTwo, poolTwo.TickCurrentIndex, poolTwo.TickSpacing, q2.AToB)
	if err != nil {
		return nil, wrapError(ErrFetch, err, "deriving second leg's tick arrays")
	}

	return &TwoHopQuote{
		WhirlpoolOne:           whirlpoolOne.String(),
		WhirlpoolTwo:           whirlpoolTwo.String(),
		SqrtPriceLimitOneX64:   q1.SqrtPriceLimitX64,
		SqrtPriceLimitTwoX64:   q2.SqrtPriceLimitX64,
		Amount:                 amount,
		OtherAmountThreshold:   threshold,
		TickArrayOne0:          tickArraysOne[0],
		TickArrayOne1:          tickArraysOne[1],
		TickArrayOne2:          tickArraysOne[2],
		TickArrayTwo0:          tickArraysTwo[0],
		TickArrayTwo1:          tickArraysTwo[1],
		TickArrayTwo2:          tickArraysTwo[2],
		AmountSpecifiedIsInput: q1.AmountSpecifiedIsInput,
		AToBOne:                q1.AToB,
		AToBTwo:                q2.AToB,
	}, nil
}
