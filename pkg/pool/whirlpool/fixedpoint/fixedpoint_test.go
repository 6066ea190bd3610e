package fixedpoint

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestMulDivRounding(t *testing.T) {
	x := uint128.From64(7)
	y := uint128.From64(3)
	d := uint128.From64(2)
	// 7*3/2 = 10.5

	down, err := MulDiv(x, y, d, false)
	if err != nil {
		t.Fatalf("MulDiv round down: %v", err)
	}
	if down.Cmp(uint128.From64(10)) != 0 {
		t.Fatalf("round down = %s, want 10", down)
	}

	up, err := MulDiv(x, y, d, true)
	if err != nil {
		t.Fatalf("MulDiv round up: %v", err)
	}
	if up.Cmp(uint128.From64(11)) != 0 {
		t.Fatalf("round up = %s, want 11", up)
	}
}

func TestMulDivExact(t *testing.T) {
	x := uint128.From64(6)
	y := uint128.From64(3)
	d := uint128.From64(2)
	// 6*3/2 = 9 exactly, both roundings agree.

	down, err := MulDiv(x, y, d, false)
	if err != nil {
		t.Fatalf("MulDiv: %v", err)
	}
	up, err := MulDiv(x, y, d, true)
	if err != nil {
		t.Fatalf("MulDiv: %v", err)
	}
	if down.Cmp(up) != 0 || down.Cmp(uint128.From64(9)) != 0 {
		t.Fatalf("got down=%s up=%s, want both 9", down, up)
	}
}

func TestMulDivZeroDivisor(t *testing.T) {
	if _, err := MulDiv(uint128.From64(1), uint128.From64(1), uint128.Zero, false); err != ErrMathOverflow {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
}

func TestCheckedMulShiftRightRoundsDown(t *testing.T) {
	// x*y = 3 * 2^63 = 1.5 * 2^64: shifting right 64 truncates the 0.5, so
	// round-down and round-up must differ by exactly 1.
	x := uint128.From64(3)
	y := uint128.New(1<<63, 0)

	down, err := CheckedMulShiftRight(x, y)
	if err != nil {
		t.Fatalf("CheckedMulShiftRight: %v", err)
	}
	up, err := CheckedMulShiftRightRoundUp(x, y)
	if err != nil {
		t.Fatalf("CheckedMulShiftRightRoundUp: %v", err)
	}
	if up.Cmp(down) != 1 {
		t.Fatalf("expected round-up to exceed round-down by 1, got down=%s up=%s", down, up)
	}
	diff := up.Sub(down)
	if diff.Cmp(uint128.From64(1)) != 0 {
		t.Fatalf("round-up/round-down gap = %s, want 1", diff)
	}
}
