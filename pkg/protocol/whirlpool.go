package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"soltrading/pkg"
	"soltrading/pkg/pool/whirlpool"
	"soltrading/pkg/sol"
)

type WhirlpoolProtocol struct {
	SolClient *sol.Client
}

func NewWhirlpool(solClient *sol.Client) *WhirlpoolProtocol {
	return &WhirlpoolProtocol{
		SolClient: solClient,
	}
}

func (p *WhirlpoolProtocol) ProtocolName() pkg.ProtocolName {
	return pkg.ProtocolName("whirlpool")
}

func (p *WhirlpoolProtocol) FetchPoolsByPair(ctx context.Context, baseMint string, quoteMint string) ([]pkg.Pool, error) {
	baseMintPubkey, err := solana.PublicKeyFromBase58(baseMint)
	if err != nil {
		return nil, fmt.Errorf("invalid base mint address: %w", err)
	}
	quoteMintPubkey, err := solana.PublicKeyFromBase58(quoteMint)
	if err != nil {
		return nil, fmt.Errorf("invalid quote mint address: %w", err)
	}

	// TokenMintA sits at offset 101, TokenMintB at offset 181 in the Whirlpool
	// account layout (see WhirlpoolPool.Decode).
	filters := []rpc.RPCFilter{
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 101, Bytes: baseMintPubkey.Bytes()}},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 181, Bytes: quoteMintPubkey.Bytes()}},
	}

	programAccounts, err := p.SolClient.GetProgramAccountsWithOpts(ctx, whirlpool.WhirlpoolProgramID, &rpc.GetProgramAccountsOpts{
		Filters: filters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Whirlpool pools: %w", err)
	}

	filtersReverse := []rpc.RPCFilter{
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 101, Bytes: quoteMintPubkey.Bytes()}},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 181, Bytes: baseMintPubkey.Bytes()}},
	}

	reverseAccounts, err := p.SolClient.GetProgramAccountsWithOpts(ctx, whirlpool.WhirlpoolProgramID, &rpc.GetProgramAccountsOpts{
		Filters: filtersReverse,
	})
	if err == nil {
		programAccounts = append(programAccounts, reverseAccounts...)
	}

	res := make([]pkg.Pool, 0, len(programAccounts))
	for _, v := range programAccounts {
		pool := &whirlpool.WhirlpoolPool{}
		if err := pool.Decode(v.Account.Data.GetBinary()); err != nil {
			continue
		}
		pool.PoolId = v.Pubkey
		res = append(res, pool)
	}
	return res, nil
}

func (p *WhirlpoolProtocol) FetchPoolByID(ctx context.Context, poolId string) (pkg.Pool, error) {
	poolPubkey, err := solana.PublicKeyFromBase58(poolId)
	if err != nil {
		return nil, fmt.Errorf("invalid pool ID: %w", err)
	}

	account, err := p.SolClient.GetAccountInfoWithOpts(ctx, poolPubkey)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account %s: %w", poolId, err)
	}

	pool := &whirlpool.WhirlpoolPool{}
	if err := pool.Decode(account.Value.Data.GetBinary()); err != nil {
		return nil, fmt.Errorf("failed to parse pool data for pool %s: %w", poolId, err)
	}
	pool.PoolId = poolPubkey
	return pool, nil
}
