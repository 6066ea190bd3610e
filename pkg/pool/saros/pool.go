package saros

import (
	"context"
	"encoding/binary"
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"soltrading/pkg"
	"soltrading/pkg/sol"
)

// SarosPool is a Saros Finance AMM pool: a constant-product pair over two
// token vaults, the same shape Fluxbeam's pool exposes.
type SarosPool struct {
	TokenMintA     solana.PublicKey
	TokenMintB     solana.PublicKey
	TokenVaultA    solana.PublicKey
	TokenVaultB    solana.PublicKey
	FeeNumerator   uint64
	FeeDenominator uint64
	PoolId         solana.PublicKey
}

func (p *SarosPool) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolName("saros")
}

func (p *SarosPool) GetProgramID() solana.PublicKey {
	return SarosProgramID
}

func (p *SarosPool) GetID() string {
	return p.PoolId.String()
}

func (p *SarosPool) GetTokens() (string, string) {
	return p.TokenMintA.String(), p.TokenMintB.String()
}

// Decode parses a Saros pool account: an 8-byte discriminator followed by
// the two token mints and their vaults, same field order Fluxbeam's fork of
// the layout uses. Saros does not expose a per-pool fee in this prefix, so
// the standard 0.3% is assumed, matching FluxbeamPool.Decode's convention.
func (p *SarosPool) Decode(data []byte) error {
	if len(data) < 200 {
		return fmt.Errorf("data too short for Saros pool: got %d bytes", len(data))
	}

	offset := 8 // Skip discriminator

	copy(p.TokenMintA[:], data[offset:offset+32])
	offset += 32
	copy(p.TokenMintB[:], data[offset:offset+32])
	offset += 32

	copy(p.TokenVaultA[:], data[offset:offset+32])
	offset += 32
	copy(p.TokenVaultB[:], data[offset:offset+32])
	offset += 32

	p.FeeNumerator = 30
	p.FeeDenominator = 10000

	return nil
}

func (p *SarosPool) Quote(ctx context.Context, solClient *sol.Client, inputMint string, amount cosmath.Int) (cosmath.Int, error) {
	accounts := []solana.PublicKey{p.TokenVaultA, p.TokenVaultB}
	results, err := solClient.GetMultipleAccountsWithOpts(ctx, accounts)
	if err != nil {
		return cosmath.ZeroInt(), fmt.Errorf("failed to fetch vault balances: %w", err)
	}

	var reserveA, reserveB cosmath.Int
	for i, result := range results.Value {
		if result == nil {
			return cosmath.ZeroInt(), fmt.Errorf("vault account %s not found", accounts[i])
		}

		amountBytes := result.Data.GetBinary()[64:72]
		balance := binary.LittleEndian.Uint64(amountBytes)

		if accounts[i].Equals(p.TokenVaultA) {
			reserveA = cosmath.NewIntFromUint64(balance)
		} else {
			reserveB = cosmath.NewIntFromUint64(balance)
		}
	}

	var reserveIn, reserveOut cosmath.Int
	if inputMint == p.TokenMintA.String() {
		reserveIn = reserveA
		reserveOut = reserveB
	} else {
		reserveIn = reserveB
		reserveOut = reserveA
	}

	if amount.IsZero() {
		return cosmath.ZeroInt(), nil
	}

	feeNumerator := cosmath.NewInt(int64(p.FeeNumerator))
	feeDenominator := cosmath.NewInt(int64(p.FeeDenominator))
	fee := amount.Mul(feeNumerator).Quo(feeDenominator)

	amountInWithFee := amount.Sub(fee)

	denominator := reserveIn.Add(amountInWithFee)
	amountOut := reserveOut.Mul(amountInWithFee).Quo(denominator)

	return amountOut, nil
}

func (p *SarosPool) BuildSwapInstructions(ctx context.Context, solClient *sol.Client, user solana.PublicKey, inputMint string, inputAmount cosmath.Int, minOutputAmount cosmath.Int, userBaseAccount solana.PublicKey, userQuoteAccount solana.PublicKey) ([]solana.Instruction, error) {
	return nil, fmt.Errorf("saros swap not yet implemented")
}
