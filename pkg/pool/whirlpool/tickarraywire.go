package whirlpool

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	tickArrayAccountHeaderSize = 8  // discriminator
	tickWireSize                = 113 // initialized(1) + liquidity_net i128(16) + liquidity_gross u128(16) + fee_growth_outside_a/b u128(16+16) + reward_growths_outside 3*u128(48)

	tickArraySeed = "tick_array"
)

// Decode parses a TickArray account's raw bytes into t, following the
// layout Decode in whirlpoolPool.go uses for the parent Whirlpool account:
// an 8-byte discriminator, then the fields in declaration order.
func (t *TickArray) Decode(data []byte) error {
	expected := tickArrayAccountHeaderSize + 4 + TickArraySize*tickWireSize + 32
	if len(data) < expected {
		return fmt.Errorf("whirlpool: tick array: expected at least %d bytes, got %d", expected, len(data))
	}

	offset := tickArrayAccountHeaderSize
	decoder := bin.NewBinDecoder(data[offset : offset+4])
	if err := decoder.Decode(&t.StartTickIndex); err != nil {
		return fmt.Errorf("whirlpool: tick array: start_tick_index: %w", err)
	}
	offset += 4

	for i := 0; i < TickArraySize; i++ {
		if err := decodeTick(&t.Ticks[i], data[offset:offset+tickWireSize]); err != nil {
			return fmt.Errorf("whirlpool: tick array: tick %d: %w", i, err)
		}
		offset += tickWireSize
	}

	t.WhirlpoolAddress = solana.PublicKeyFromBytes(data[offset : offset+32])
	return nil
}

func decodeTick(t *Tick, data []byte) error {
	t.Initialized = data[0] != 0

	liquidityNet := decodeI128LE(data[1:17])
	t.LiquidityNet = *liquidityNet

	if err := bin.NewBinDecoder(data[17:33]).Decode(&t.LiquidityGross); err != nil {
		return fmt.Errorf("liquidity_gross: %w", err)
	}
	if err := bin.NewBinDecoder(data[33:49]).Decode(&t.FeeGrowthOutsideA); err != nil {
		return fmt.Errorf("fee_growth_outside_a: %w", err)
	}
	if err := bin.NewBinDecoder(data[49:65]).Decode(&t.FeeGrowthOutsideB); err != nil {
		return fmt.Errorf("fee_growth_outside_b: %w", err)
	}
	for i := 0; i < 3; i++ {
		start := 65 + i*16
		if err := bin.NewBinDecoder(data[start : start+16]).Decode(&t.RewardGrowthsOutside[i]); err != nil {
			return fmt.Errorf("reward_growths_outside[%d]: %w", i, err)
		}
	}
	return nil
}

// decodeI128LE interprets 16 little-endian bytes as a signed two's complement
// integer (liquidity_net is stored on chain as i128).
func decodeI128LE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	u := new(big.Int).SetBytes(be)
	if b[len(b)-1]&0x80 != 0 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return u
}

// DeriveTickArrayAddress computes the PDA for the tick array beginning at
// startTickIndex, mirroring the on-chain seeds
// ["tick_array", whirlpool_pubkey, start_tick_index.to_string()].
func DeriveTickArrayAddress(whirlpool solana.PublicKey, startTickIndex int32) (solana.PublicKey, error) {
	seeds := [][]byte{
		[]byte(tickArraySeed),
		whirlpool.Bytes(),
		[]byte(fmt.Sprintf("%d", startTickIndex)),
	}
	pda, _, err := solana.FindProgramAddress(seeds, WhirlpoolProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("whirlpool: deriving tick array PDA: %w", err)
	}
	return pda, nil
}

// DeriveCandidateTickArrayAddresses derives the PDAs for the three tick
// arrays a swap from currentTick in the given direction will need, matching
// candidateTickArrayStarts.
func DeriveCandidateTickArrayAddresses(whirlpool solana.PublicKey, currentTick, spacing int32, aToB bool) ([3]solana.PublicKey, error) {
	starts := candidateTickArrayStarts(currentTick, spacing, aToB)
	var out [3]solana.PublicKey
	for i, start := range starts {
		addr, err := DeriveTickArrayAddress(whirlpool, start)
		if err != nil {
			return out, err
		}
		out[i] = addr
	}
	return out, nil
}
