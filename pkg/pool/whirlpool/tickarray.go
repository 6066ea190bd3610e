package whirlpool

import (
	"context"
	"math/big"

	"lukechampine.com/uint128"
	"soltrading/pkg/pool/whirlpool/tickmath"
	"soltrading/pkg/sol"
)

func tickIndexToSqrtPriceX64(tick int32) (uint128.Uint128, error) {
	price, err := tickmath.TickIndexToSqrtPriceX64(tick)
	if err != nil {
		return uint128.Zero, wrapError(ErrInvalidTickIndex, err, "tick %d out of domain", tick)
	}
	return price, nil
}

// TickArraySize is the fixed number of ticks stored in a single on-chain
// TickArray account.
const TickArraySize = 88

// tickArrayStartIndex returns the start tick of the array that contains
// tick, given tick_spacing. Division rounds toward negative infinity so the
// formula is correct for negative ticks too.
func tickArrayStartIndex(tick, spacing int32) int32 {
	ticksPerArray := spacing * TickArraySize
	return floorDiv(tick, ticksPerArray) * ticksPerArray
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// tickArrayIndexOf returns the slot i such that Ticks[i] represents tick,
// given the array's start index and the pool's spacing.
func tickArrayIndexOf(tick, start, spacing int32) int32 {
	return (tick - start) / spacing
}

// TickArrayFetcher is the synchronous, read-only account source the
// simulator pulls tick arrays from. A nil *TickArray with a nil error means
// the account is not initialized on chain; the simulator substitutes a
// zeroed synthetic array in that case.
type TickArrayFetcher interface {
	GetTickArray(ctx context.Context, startTickIndex int32) (*TickArray, error)
}

// zeroedTickArray synthesizes the array an uninitialized on-chain account
// would decode to: every tick absent, liquidity_net/gross zero.
func zeroedTickArray(start int32) *TickArray {
	return &TickArray{StartTickIndex: start}
}

// CachingTickArrayFetcher serves tick arrays from a pool's in-memory cache,
// falling back to a live account fetch (and populating the cache) on a
// miss when a *sol.Client is attached. Callers that fill TickArrayCache
// themselves can leave solClient nil; a miss then resolves to
// "uninitialized" without touching the network.
type CachingTickArrayFetcher struct {
	pool        *WhirlpoolPool
	tickSpacing int32
	solClient   *sol.Client
}

func NewCachingTickArrayFetcher(pool *WhirlpoolPool) *CachingTickArrayFetcher {
	return &CachingTickArrayFetcher{
		pool:        pool,
		tickSpacing: int32(pool.TickSpacing),
	}
}

// NewCachingTickArrayFetcherWithClient is NewCachingTickArrayFetcher with a
// live RPC fallback for cache misses.
func NewCachingTickArrayFetcherWithClient(pool *WhirlpoolPool, solClient *sol.Client) *CachingTickArrayFetcher {
	f := NewCachingTickArrayFetcher(pool)
	f.solClient = solClient
	return f
}

func (f *CachingTickArrayFetcher) GetTickArray(ctx context.Context, startTickIndex int32) (*TickArray, error) {
	key := tickArrayCacheKey(f.pool.PoolId.String(), startTickIndex)
	if arr, ok := f.pool.TickArrayCache[key]; ok {
		return arr, nil
	}
	if f.solClient == nil {
		return nil, nil
	}

	addr, err := DeriveTickArrayAddress(f.pool.PoolId, startTickIndex)
	if err != nil {
		return nil, wrapError(ErrFetch, err, "deriving tick array address at %d", startTickIndex)
	}

	info, err := f.solClient.GetAccountInfoWithOpts(ctx, addr)
	if err != nil {
		return nil, wrapError(ErrFetch, err, "fetching tick array at %d", startTickIndex)
	}
	if info == nil || info.Value == nil {
		f.pool.TickArrayCache[key] = nil
		return nil, nil
	}

	arr := &TickArray{}
	if err := arr.Decode(info.Value.Data.GetBinary()); err != nil {
		return nil, wrapError(ErrFetch, err, "decoding tick array at %d", startTickIndex)
	}
	f.pool.TickArrayCache[key] = arr
	return arr, nil
}

func tickArrayCacheKey(poolId string, startTickIndex int32) string {
	return poolId + ":" + big.NewInt(int64(startTickIndex)).String()
}

// candidateTickArrayStarts enumerates the three consecutive tick-array start
// indices a swap beginning at currentTick will need, in the swap direction.
// This is the account list an on-chain instruction builder must supply.
func candidateTickArrayStarts(currentTick, spacing int32, aToB bool) [3]int32 {
	ticksPerArray := spacing * TickArraySize
	start := tickArrayStartIndex(currentTick, spacing)

	var out [3]int32
	for i := 0; i < 3; i++ {
		if aToB {
			out[i] = start - int32(i)*ticksPerArray
		} else {
			out[i] = start + int32(i)*ticksPerArray
		}
	}
	return out
}

// nextInitializedTickResult describes the next initialized tick found during
// traversal. When no initialized tick lies in the scanned arrays, Found is
// false and the other fields are zero; no array-boundary sentinel is returned.
type nextInitializedTickResult struct {
	Index        int32
	SqrtPriceX64 uint128.Uint128
	LiquidityNet int64
	Found        bool
}

// nextInitializedTick walks tick arrays starting from currentTick in the
// swap direction (aToB ⇒ decreasing, else increasing) and returns the first
// initialized tick encountered, fetching arrays lazily via fetcher and
// synthesizing zeroed arrays for any that are absent on chain.
// maxArraysScanned (8) bounds how many arrays are searched in a single call;
// if none of them holds an initialized tick, the result has Found == false.
func nextInitializedTick(ctx context.Context, fetcher TickArrayFetcher, currentTick, spacing int32, aToB bool) (nextInitializedTickResult, error) {
	ticksPerArray := spacing * TickArraySize
	start := tickArrayStartIndex(currentTick, spacing)

	const maxArraysScanned = 8
	for scanned := 0; scanned < maxArraysScanned; scanned++ {
		arr, err := fetcher.GetTickArray(ctx, start)
		if err != nil {
			return nextInitializedTickResult{}, wrapError(ErrFetch, err, "fetching tick array at %d", start)
		}
		if arr == nil {
			arr = zeroedTickArray(start)
		}

		if aToB {
			// Searching for decreasing ticks: scan from the slot holding
			// currentTick (the highest slot at or below it, or the array's
			// top slot on a later array) down to 0.
			beginIdx := TickArraySize - 1
			if scanned == 0 {
				idx := tickArrayIndexOf(currentTick, start, spacing)
				beginIdx = int(idx)
			}
			for i := beginIdx; i >= 0; i-- {
				t := &arr.Ticks[i]
				if t.Initialized {
					idx := start + int32(i)*spacing
					price, err := tickIndexToSqrtPriceX64(idx)
					if err != nil {
						return nextInitializedTickResult{}, err
					}
					return nextInitializedTickResult{
						Index:        idx,
						SqrtPriceX64: price,
						LiquidityNet: t.LiquidityNet.Int64(),
						Found:        true,
					}, nil
				}
			}
			start -= ticksPerArray
		} else {
			beginIdx := 0
			if scanned == 0 {
				idx := tickArrayIndexOf(currentTick, start, spacing)
				beginIdx = int(idx) + 1
			}
			for i := beginIdx; i < TickArraySize; i++ {
				t := &arr.Ticks[i]
				if t.Initialized {
					idx := start + int32(i)*spacing
					price, err := tickIndexToSqrtPriceX64(idx)
					if err != nil {
						return nextInitializedTickResult{}, err
					}
					return nextInitializedTickResult{
						Index:        idx,
						SqrtPriceX64: price,
						LiquidityNet: t.LiquidityNet.Int64(),
						Found:        true,
					}, nil
				}
			}
			start += ticksPerArray
		}

		if start < MIN_TICK || start > MAX_TICK {
			break
		}
	}

	// Nothing initialized in the scanned window: the swap runs to the
	// domain boundary. The simulator clamps to sqrt_price_limit or
	// MIN/MAX_SQRT_PRICE before this is ever dereferenced.
	return nextInitializedTickResult{Found: false}, nil
}
