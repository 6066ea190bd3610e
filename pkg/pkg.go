// Package pkg holds the shared interfaces that every DEX pool/protocol
// implementation under pkg/pool and pkg/protocol satisfies. It has no logic of
// its own: it exists so pkg/router, pkg/subscription and the protocol adapters
// can speak to any pool without importing its concrete package.
package pkg

import (
	"context"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"soltrading/pkg/sol"
)

// ProtocolName identifies a DEX protocol ("whirlpool", "raydium_clmm", ...).
type ProtocolName string

const (
	ProtocolNameRaydiumClmm ProtocolName = "raydium_clmm"
	ProtocolNamePumpAmm     ProtocolName = "pump_amm"
)

// Pool is a single on-chain liquidity pool, decodable from its raw account
// data and queryable for a swap quote.
type Pool interface {
	ProtocolName() ProtocolName
	GetProgramID() solana.PublicKey
	GetID() string
	GetTokens() (tokenA, tokenB string)
	Decode(data []byte) error
	Quote(ctx context.Context, solClient *sol.Client, inputMint string, amount cosmath.Int) (cosmath.Int, error)
	BuildSwapInstructions(
		ctx context.Context,
		solClient *sol.Client,
		user solana.PublicKey,
		inputMint string,
		inputAmount cosmath.Int,
		minOutputAmount cosmath.Int,
		userBaseAccount solana.PublicKey,
		userQuoteAccount solana.PublicKey,
	) ([]solana.Instruction, error)
}

// Protocol discovers and fetches the Pools belonging to a single DEX program.
type Protocol interface {
	ProtocolName() ProtocolName
	FetchPoolsByPair(ctx context.Context, baseMint, quoteMint string) ([]Pool, error)
	FetchPoolByID(ctx context.Context, poolId string) (Pool, error)
}
