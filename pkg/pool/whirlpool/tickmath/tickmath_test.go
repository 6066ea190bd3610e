package tickmath

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestTickIndexToSqrtPriceX64Bounds(t *testing.T) {
	price, err := TickIndexToSqrtPriceX64(MinTickIndex)
	if err != nil {
		t.Fatalf("MinTickIndex: %v", err)
	}
	if price.Cmp(MinSqrtPriceX64) != 0 {
		t.Fatalf("MinTickIndex price = %s, want %s", price, MinSqrtPriceX64)
	}

	price, err = TickIndexToSqrtPriceX64(MaxTickIndex)
	if err != nil {
		t.Fatalf("MaxTickIndex: %v", err)
	}
	if price.Cmp(MaxSqrtPriceX64) != 0 {
		t.Fatalf("MaxTickIndex price = %s, want %s", price, MaxSqrtPriceX64)
	}

	if _, err := TickIndexToSqrtPriceX64(MaxTickIndex + 1); err == nil {
		t.Fatal("expected error for tick above MaxTickIndex")
	}
	if _, err := TickIndexToSqrtPriceX64(MinTickIndex - 1); err == nil {
		t.Fatal("expected error for tick below MinTickIndex")
	}
}

func TestTickIndexToSqrtPriceX64Zero(t *testing.T) {
	price, err := TickIndexToSqrtPriceX64(0)
	if err != nil {
		t.Fatalf("tick 0: %v", err)
	}
	// sqrt(1.0001^0) == 1, represented as 2^64 in Q64.64.
	want := uint128.New(0, 1)
	if price.Cmp(want) != 0 {
		t.Fatalf("tick 0 price = %s, want %s", price, want)
	}
}

func TestBijectionAndMonotonicity(t *testing.T) {
	ticks := []int32{
		MinTickIndex, MinTickIndex + 1, -400000, -100000, -1, 0, 1, 100000, 400000,
		MaxTickIndex - 1, MaxTickIndex,
	}

	var prevPrice uint128.Uint128
	havePrev := false
	for _, tick := range ticks {
		price, err := TickIndexToSqrtPriceX64(tick)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}

		gotTick, err := SqrtPriceX64ToTickIndex(price)
		if err != nil {
			t.Fatalf("inverting tick %d: %v", tick, err)
		}
		if gotTick != tick {
			t.Fatalf("bijection failed for tick %d: got %d back", tick, gotTick)
		}

		if havePrev && prevPrice.Cmp(price) >= 0 {
			t.Fatalf("monotonicity violated at tick %d", tick)
		}
		prevPrice = price
		havePrev = true
	}
}
