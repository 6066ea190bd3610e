package sol

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
)

// Client wraps a single rate-limited Solana RPC endpoint. It exposes only the
// read-only calls the pool/protocol adapters need; transaction assembly and
// submission live outside this package.
type Client struct {
	rpc      *rpc.Client
	endpoint string
	jitoRpc  string
}

// NewClient dials endpoint and wraps it with a client-side rate limiter so a
// single noisy pool adapter cannot exhaust a shared RPC plan. jitoRpc is kept
// on the client for callers that need to route transaction submission through
// a Jito relay; this package never uses it, since it only ever reads account
// state.
func NewClient(ctx context.Context, endpoint, jitoRpc string, reqLimitPerSecond int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("sol: empty RPC endpoint")
	}
	if reqLimitPerSecond <= 0 {
		reqLimitPerSecond = 10
	}

	rpcClient := rpc.NewWithCustomRPCClient(rpc.NewWithLimiter(
		endpoint,
		rate.Every(time.Second/time.Duration(reqLimitPerSecond)),
		reqLimitPerSecond,
	))

	c := &Client{
		rpc:      rpcClient,
		endpoint: endpoint,
		jitoRpc:  jitoRpc,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rpcClient.GetVersion(checkCtx); err != nil {
		return nil, fmt.Errorf("sol: failed to reach RPC endpoint %s: %w", endpoint, err)
	}

	return c, nil
}

// Endpoint returns the URL this client was dialed against.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Raw exposes the underlying solana-go client for call sites that need a
// method this wrapper does not yet cover.
func (c *Client) Raw() *rpc.Client {
	return c.rpc
}

func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return c.rpc.GetAccountInfo(ctx, account)
}

func (c *Client) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
}

func (c *Client) GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	return c.rpc.GetMultipleAccountsWithOpts(ctx, accounts, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
}

func (c *Client) GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	return c.rpc.GetProgramAccountsWithOpts(ctx, program, opts)
}
