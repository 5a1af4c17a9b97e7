// Package wallet reads balances and signs transactions on the chains the
// depositor supports: EVM networks via go-ethereum and Solana via the RPC SDK.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Minimal ERC-20 surface: balance reads, allowance checks, transfers.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// EVMClient multiplexes ethclient connections across chains.
type EVMClient struct {
	clients map[int64]*ethclient.Client
	abi     abi.ABI
	log     zerolog.Logger
}

// NewEVMClient dials every configured RPC endpoint. Chains whose endpoint is
// unreachable are skipped with a warning; their balances simply never appear.
func NewEVMClient(rpcURLs map[int64]string, log zerolog.Logger) (*EVMClient, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	clients := make(map[int64]*ethclient.Client, len(rpcURLs))
	for chainID, url := range rpcURLs {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().Err(err).Int64("chain", chainID).Msg("rpc dial failed, chain skipped")
			continue
		}
		clients[chainID] = client
	}
	if len(clients) == 0 && len(rpcURLs) > 0 {
		return nil, fmt.Errorf("no evm rpc endpoint reachable")
	}
	return &EVMClient{clients: clients, abi: parsed, log: log}, nil
}

func (c *EVMClient) client(chainID int64) (*ethclient.Client, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("no rpc client for chain %d", chainID)
	}
	return client, nil
}

// NativeBalance reads the gas-asset balance of an address.
func (c *EVMClient) NativeBalance(ctx context.Context, chainID int64, owner common.Address) (*big.Int, error) {
	client, err := c.client(chainID)
	if err != nil {
		return nil, err
	}
	bal, err := client.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("native balance chain %d: %w", chainID, err)
	}
	return bal, nil
}

// TokenBalance reads an ERC-20 balance via a packed balanceOf call.
func (c *EVMClient) TokenBalance(ctx context.Context, chainID int64, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, chainID, token, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("token balance chain %d token %s: %w", chainID, token.Hex(), err)
	}
	return out, nil
}

// Allowance reads the spender allowance for an ERC-20.
func (c *EVMClient) Allowance(ctx context.Context, chainID int64, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.call(ctx, chainID, token, "allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("allowance chain %d token %s: %w", chainID, token.Hex(), err)
	}
	return out, nil
}

func (c *EVMClient) call(ctx context.Context, chainID int64, target common.Address, method string, args ...interface{}) (*big.Int, error) {
	client, err := c.client(chainID)
	if err != nil {
		return nil, err
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: input}, nil)
	if err != nil {
		return nil, err
	}
	results, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	out, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s return type %T", method, results[0])
	}
	return out, nil
}

// PackTransfer encodes an ERC-20 transfer call for the settlement transaction.
func (c *EVMClient) PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return c.abi.Pack("transfer", to, amount)
}

// PackApprove encodes an ERC-20 approve call.
func (c *EVMClient) PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return c.abi.Pack("approve", spender, amount)
}
