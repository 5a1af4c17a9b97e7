package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	solana "github.com/gagliardetto/solana-go"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
)

// Reader answers balance queries for one wallet across every supported VM.
type Reader struct {
	evm        *EVMClient
	sol        *SolanaClient
	evmAddress common.Address
	solAddress solana.PublicKey
	hasSolana  bool
}

// NewReader wires the per-VM clients to the wallet's addresses. The Solana
// side is optional.
func NewReader(evm *EVMClient, evmAddress string, sol *SolanaClient, solAddress string) (*Reader, error) {
	if !common.IsHexAddress(evmAddress) {
		return nil, fmt.Errorf("invalid evm wallet address %q", evmAddress)
	}
	r := &Reader{evm: evm, evmAddress: common.HexToAddress(evmAddress)}
	if sol != nil && solAddress != "" {
		pub, err := solana.PublicKeyFromBase58(solAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid solana wallet address: %w", err)
		}
		r.sol = sol
		r.solAddress = pub
		r.hasSolana = true
	}
	return r, nil
}

// Balance returns the raw on-chain amount of the asset held by the wallet on
// the given chain. Native assets use the registry's placeholder addresses.
func (r *Reader) Balance(ctx context.Context, chainID int64, assetAddress string) (*big.Int, error) {
	info, ok := chain.ByID(chainID)
	if !ok {
		return nil, fmt.Errorf("unknown chain %d", chainID)
	}
	switch info.VM {
	case chain.VMSolana:
		if !r.hasSolana {
			return nil, fmt.Errorf("solana wallet not configured")
		}
		if assetAddress == chain.SolanaNativeAddress {
			return r.sol.NativeBalance(ctx, r.solAddress)
		}
		mint, err := solana.PublicKeyFromBase58(assetAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid mint address: %w", err)
		}
		return r.sol.TokenBalance(ctx, r.solAddress, mint)
	default:
		if assetAddress == chain.EVMNativeAddress {
			return r.evm.NativeBalance(ctx, chainID, r.evmAddress)
		}
		if !common.IsHexAddress(assetAddress) {
			return nil, fmt.Errorf("invalid token address %q", assetAddress)
		}
		return r.evm.TokenBalance(ctx, chainID, common.HexToAddress(assetAddress), r.evmAddress)
	}
}
