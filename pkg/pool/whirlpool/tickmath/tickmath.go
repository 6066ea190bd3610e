// Package tickmath implements the tick_index <-> sqrt_price_x64 bijection
// used throughout the whirlpool package. Both directions are pure integer
// math: no floating-point pow is used anywhere in this file.
package tickmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

const (
	MinTickIndex = -443636
	MaxTickIndex = 443636

	// MinSqrtPriceX64 and MaxSqrtPriceX64 bound the valid Q64.64 sqrt-price
	// domain; they correspond exactly to MinTickIndex and MaxTickIndex.
	MinSqrtPriceX64Str = "4295048016"
	MaxSqrtPriceX64Str = "79226673515401279992447579055"
)

var (
	ErrTickOutOfBounds      = errors.New("tickmath: tick index out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("tickmath: sqrt price out of bounds")

	MinSqrtPriceX64 = uint128.FromBig(mustBig(MinSqrtPriceX64Str))
	MaxSqrtPriceX64 = uint128.FromBig(mustBig(MaxSqrtPriceX64Str))

	maxUint128 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("tickmath: invalid constant " + s)
	}
	return n
}

// magicConstants[i] holds 1/sqrt(1.0001^(2^i)) in UQ128.128 format for
// i in [0, 18]. Eighteen is the highest bit that can be set in the absolute
// value of a tick within [-443636, 443636] (2^18 = 262144 < 443636 < 2^19).
var magicConstants = [19]*uint256.Int{
	uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
	uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
	uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
	uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
	uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
	uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
	uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
	uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
	uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
	uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
	uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
	uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
	uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
	uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
	uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
}

var q128One = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

var maxUint256 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// TickIndexToSqrtPriceX64 computes the Q64.64 sqrt price for tick, by
// conditionally multiplying the magic constant table over the bits of
// |tick|, then shifting the UQ128.128 accumulator down to Q64.64. The table
// holds reciprocal factors, so the product is the ratio for -|tick|; positive
// ticks take its reciprocal before the shift.
func TickIndexToSqrtPriceX64(tick int32) (uint128.Uint128, error) {
	if tick < MinTickIndex || tick > MaxTickIndex {
		return uint128.Zero, ErrTickOutOfBounds
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(magicConstants[0])
	} else {
		ratio.Set(q128One)
	}

	for i := 1; i < len(magicConstants); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, magicConstants[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio = new(uint256.Int).Div(maxUint256, ratio)
	}

	// Shift UQ128.128 -> Q64.64, rounding up on any truncated bits so the
	// computed price never understates the true value.
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	mask.SubUint64(mask, 1)
	remainder := new(uint256.Int).And(ratio, mask)

	result := new(uint256.Int).Rsh(ratio, 64)
	if !remainder.IsZero() {
		result.AddUint64(result, 1)
	}

	if result.Gt(maxUint128) {
		return uint128.Zero, ErrTickOutOfBounds
	}

	return uint128.FromBig(result.ToBig()), nil
}

// SqrtPriceX64ToTickIndex inverts TickIndexToSqrtPriceX64: it returns the
// unique tick t such that tick_to_sqrt_price(t) <= sqrtPrice <
// tick_to_sqrt_price(t+1). The bit length of sqrtPrice gives a coarse log2
// estimate of the tick (every Q64.64 mantissa bit is roughly 13863 ticks,
// since sqrt price doubles every 1/log2(sqrt(1.0001)) ticks), which seeds an
// exponential search for a tight [lo, hi) bracket; a final binary search over
// that bracket locates the exact boundary.
func SqrtPriceX64ToTickIndex(sqrtPrice uint128.Uint128) (int32, error) {
	if sqrtPrice.Cmp(MinSqrtPriceX64) < 0 || sqrtPrice.Cmp(MaxSqrtPriceX64) > 0 {
		return 0, ErrSqrtPriceOutOfBounds
	}

	msb := sqrtPrice.Big().BitLen() - 1
	seed := int32(clampInt64(int64(msb-64)*13863, MinTickIndex, MaxTickIndex))

	lo, hi := seed, seed
	step := int32(64)
	for {
		loPrice, err := TickIndexToSqrtPriceX64(lo)
		if err != nil {
			return 0, err
		}
		if loPrice.Cmp(sqrtPrice) <= 0 {
			break
		}
		lo = int32(clampInt64(int64(lo)-int64(step), MinTickIndex, MaxTickIndex))
		step *= 2
		if lo == MinTickIndex {
			break
		}
	}
	step = 64
	for {
		hiPrice, err := TickIndexToSqrtPriceX64(hi)
		if err != nil {
			return 0, err
		}
		if hiPrice.Cmp(sqrtPrice) > 0 {
			break
		}
		hi = int32(clampInt64(int64(hi)+int64(step), MinTickIndex, MaxTickIndex))
		step *= 2
		if hi == MaxTickIndex {
			break
		}
	}

	for lo < hi {
		mid := lo + (hi-lo)/2
		midPrice, err := TickIndexToSqrtPriceX64(mid)
		if err != nil {
			return 0, err
		}
		if midPrice.Cmp(sqrtPrice) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	result := lo - 1
	if result < MinTickIndex {
		result = MinTickIndex
	}
	return result, nil
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
