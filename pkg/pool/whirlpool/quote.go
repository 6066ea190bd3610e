package whirlpool

import (
	"context"

	"lukechampine.com/uint128"

	"soltrading/pkg/pool/whirlpool/fixedpoint"
)

// SwapQuote is the public result of swap_quote_by_input_token and
// swap_quote_by_output_token: the simulated fill plus the slippage-adjusted
// threshold the caller should pass on chain.
type SwapQuote struct {
	EstimatedAmountIn        uint128.Uint128
	EstimatedAmountOut       uint128.Uint128
	EstimatedFeeAmount       uint128.Uint128
	EstimatedEndSqrtPriceX64 uint128.Uint128
	EstimatedEndTickIndex    int32
	PartialFill              bool
	OtherAmountThreshold     uint128.Uint128
	AmountSpecifiedIsInput   bool
	AToB                     bool
	SqrtPriceLimitX64        uint128.Uint128
}

// IncreaseLiquidityQuote is the result of increase_liquidity_quote_by_input_token.
type IncreaseLiquidityQuote struct {
	Liquidity  uint128.Uint128
	TokenEstA  uint128.Uint128
	TokenEstB  uint128.Uint128
	TokenMaxA  uint128.Uint128
	TokenMaxB  uint128.Uint128
}

// DecreaseLiquidityQuote is the result of decrease_liquidity_quote_by_liquidity.
type DecreaseLiquidityQuote struct {
	TokenEstA uint128.Uint128
	TokenEstB uint128.Uint128
	TokenMinA uint128.Uint128
	TokenMinB uint128.Uint128
}

// QuotePoolState is the subset of pool state the quote builder reads. It
// mirrors WhirlpoolPool's price/liquidity/spacing/fee fields without taking
// a dependency on the account-decode type, so callers can quote synthetic
// pools in tests.
type QuotePoolState struct {
	SqrtPriceX64     uint128.Uint128
	TickCurrentIndex int32
	Liquidity        uint128.Uint128
	TickSpacing      int32
	FeeRate          uint32
	TokenMintA       string
	TokenMintB       string
}

// bpsDivisor is the denominator slippage values (in basis points) are
// expressed over.
const bpsDivisor = 10_000

func adjustAmountForSlippage(amount uint128.Uint128, slippageBps uint32, roundUp bool) (uint128.Uint128, error) {
	if slippageBps == 0 {
		return amount, nil
	}
	if roundUp {
		return mulDivBps(amount, bpsDivisor+uint64(slippageBps), true)
	}
	if uint64(slippageBps) >= bpsDivisor {
		return uint128.Zero, nil
	}
	return mulDivBps(amount, bpsDivisor-uint64(slippageBps), false)
}

func mulDivBps(amount uint128.Uint128, numerator uint64, roundUp bool) (uint128.Uint128, error) {
	return fixedpoint.MulDiv(amount, uint128.From64(numerator), uint128.From64(bpsDivisor), roundUp)
}

// SwapQuoteByInputToken implements §4.G's swap_quote_by_input_token: the
// caller specifies how much of input_mint they are selling; a_to_b is
// inferred from which side of the pool input_mint sits on.
func SwapQuoteByInputToken(ctx context.Context, fetcher TickArrayFetcher, pool QuotePoolState, inputMint string, inputAmount uint128.Uint128, slippageBps uint32, sqrtPriceLimit uint128.Uint128) (*SwapQuote, error) {
	aToB, err := resolveDirection(pool, inputMint, true)
	if err != nil {
		return nil, err
	}

	res, err := simulateSwap(ctx, fetcher, SimulatorInput{
		SqrtPriceX64:      pool.SqrtPriceX64,
		TickCurrentIndex:  pool.TickCurrentIndex,
		Liquidity:         pool.Liquidity,
		TickSpacing:       pool.TickSpacing,
		FeeRate:           pool.FeeRate,
		AToB:              aToB,
		SpecifiedIsInput:  true,
		AmountSpecified:   inputAmount,
		SqrtPriceLimitX64: sqrtPriceLimit,
	})
	if err != nil {
		return nil, err
	}

	threshold, err := adjustAmountForSlippage(res.AmountOut, slippageBps, false)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		EstimatedAmountIn:        res.AmountIn,
		EstimatedAmountOut:       res.AmountOut,
		EstimatedFeeAmount:       res.FeeAmount,
		EstimatedEndSqrtPriceX64: res.SqrtPriceX64,
		EstimatedEndTickIndex:    res.TickCurrentIndex,
		PartialFill:              res.PartialFill,
		OtherAmountThreshold:     threshold,
		AmountSpecifiedIsInput:   true,
		AToB:                     aToB,
		SqrtPriceLimitX64:        sqrtPriceLimit,
	}, nil
}

// SwapQuoteByOutputToken implements swap_quote_by_output_token: the caller
// specifies how much of output_mint they want to receive; the threshold
// (max input) is rounded up since it bounds what the caller is willing to
// pay, not what they expect to receive.
func SwapQuoteByOutputToken(ctx context.Context, fetcher TickArrayFetcher, pool QuotePoolState, outputMint string, outputAmount uint128.Uint128, slippageBps uint32, sqrtPriceLimit uint128.Uint128) (*SwapQuote, error) {
	aToB, err := resolveDirection(pool, outputMint, false)
	if err != nil {
		return nil, err
	}

	res, err := simulateSwap(ctx, fetcher, SimulatorInput{
		SqrtPriceX64:      pool.SqrtPriceX64,
		TickCurrentIndex:  pool.TickCurrentIndex,
		Liquidity:         pool.Liquidity,
		TickSpacing:       pool.TickSpacing,
		FeeRate:           pool.FeeRate,
		AToB:              aToB,
		SpecifiedIsInput:  false,
		AmountSpecified:   outputAmount,
		SqrtPriceLimitX64: sqrtPriceLimit,
	})
	if err != nil {
		return nil, err
	}

	threshold, err := adjustAmountForSlippage(res.AmountIn, slippageBps, true)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		EstimatedAmountIn:        res.AmountIn,
		EstimatedAmountOut:       res.AmountOut,
		EstimatedFeeAmount:       res.FeeAmount,
		EstimatedEndSqrtPriceX64: res.SqrtPriceX64,
		EstimatedEndTickIndex:    res.TickCurrentIndex,
		PartialFill:              res.PartialFill,
		OtherAmountThreshold:     threshold,
		AmountSpecifiedIsInput:   false,
		AToB:                     aToB,
		SqrtPriceLimitX64:        sqrtPriceLimit,
	}, nil
}

// resolveDirection infers a_to_b from which pool side mint sits on.
// forInput selects whether mint is being matched as the swap's input side
// (swap_quote_by_input_token) or its output side (swap_quote_by_output_token).
func resolveDirection(pool QuotePoolState, mint string, forInput bool) (bool, error) {
	switch mint {
	case pool.TokenMintA:
		return forInput, nil
	case pool.TokenMintB:
		return !forInput, nil
	default:
		return false, newError(ErrInvalidIntermediaryMint, "mint %s is not a side of this pool", mint)
	}
}

// IncreaseLiquidityQuoteByInputToken implements
// increase_liquidity_quote_by_input_token: derive the liquidity a deposit of
// amount of token_mint buys over [lower, upper], then the matching amount of
// the other token, with slippage-widened maximums on both sides.
func IncreaseLiquidityQuoteByInputToken(pool QuotePoolState, tokenMint string, amount uint128.Uint128, lowerTick, upperTick int32, slippageBps uint32) (*IncreaseLiquidityQuote, error) {
	sqrtPriceLower, err := tickIndexToSqrtPriceX64(lowerTick)
	if err != nil {
		return nil, err
	}
	sqrtPriceUpper, err := tickIndexToSqrtPriceX64(upperTick)
	if err != nil {
		return nil, err
	}

	var amountA, amountB uint128.Uint128
	switch tokenMint {
	case pool.TokenMintA:
		amountA = amount
		amountB = uint128.Zero
	case pool.TokenMintB:
		amountA = uint128.Zero
		amountB = amount
	default:
		return nil, newError(ErrInvalidIntermediaryMint, "mint %s is not a side of this pool", tokenMint)
	}

	liquidity, err := maxLiquidityFromTokenAmounts(sqrtPriceLower, sqrtPriceUpper, pool.SqrtPriceX64, amountA, amountB)
	if err != nil {
		return nil, err
	}

	est, err := tokenAmountsFromLiquidity(liquidity, sqrtPriceLower, sqrtPriceUpper, pool.SqrtPriceX64, true)
	if err != nil {
		return nil, err
	}

	sqrtPriceLowerMax := adjustSqrtPriceForSlippage(sqrtPriceLower, slippageBps, false)
	sqrtPriceUpperMax := adjustSqrtPriceForSlippage(sqrtPriceUpper, slippageBps, true)
	sqrtPriceCurrentMax := adjustSqrtPriceForSlippage(pool.SqrtPriceX64, slippageBps, true)
	max, err := tokenAmountsFromLiquidity(liquidity, sqrtPriceLowerMax, sqrtPriceUpperMax, sqrtPriceCurrentMax, true)
	if err != nil {
		return nil, err
	}

	if max.TokenA.Cmp(est.TokenA) < 0 {
		max.TokenA = est.TokenA
	}
	if max.TokenB.Cmp(est.TokenB) < 0 {
		max.TokenB = est.TokenB
	}

	return &IncreaseLiquidityQuote{
		Liquidity: liquidity,
		TokenEstA: est.TokenA,
		TokenEstB: est.TokenB,
		TokenMaxA: max.TokenA,
		TokenMaxB: max.TokenB,
	}, nil
}

// DecreaseLiquidityQuoteByLiquidity implements
// decrease_liquidity_quote_by_liquidity: the withdrawn token amounts for
// burning a position's liquidity, with slippage-narrowed minimums.
func DecreaseLiquidityQuoteByLiquidity(position *Position, slippageBps uint32) (*DecreaseLiquidityQuote, error) {
	sqrtPriceLower, err := tickIndexToSqrtPriceX64(position.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtPriceUpper, err := tickIndexToSqrtPriceX64(position.TickUpper)
	if err != nil {
		return nil, err
	}

	currentSqrtPrice := position.Pool.SqrtPrice
	liquidity := position.Liquidity

	est, err := tokenAmountsFromLiquidity(liquidity, sqrtPriceLower, sqrtPriceUpper, currentSqrtPrice, false)
	if err != nil {
		return nil, err
	}

	sqrtPriceCurrentMin := adjustSqrtPriceForSlippage(currentSqrtPrice, slippageBps, false)
	min, err := tokenAmountsFromLiquidity(liquidity, sqrtPriceLower, sqrtPriceUpper, sqrtPriceCurrentMin, false)
	if err != nil {
		return nil, err
	}

	if min.TokenA.Cmp(est.TokenA) > 0 {
		min.TokenA = est.TokenA
	}
	if min.TokenB.Cmp(est.TokenB) > 0 {
		min.TokenB = est.TokenB
	}

	return &DecreaseLiquidityQuote{
		TokenEstA: est.TokenA,
		TokenEstB: est.TokenB,
		TokenMinA: min.TokenA,
		TokenMinB: min.TokenB,
	}, nil
}
