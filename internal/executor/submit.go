package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/chain"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/config"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

// WalletSubmitter signs aggregator transactions with the local keys, choosing
// the signer by the source chain's VM.
type WalletSubmitter struct {
	evm *wallet.EVMSigner
	sol *wallet.SolanaClient
	log zerolog.Logger
}

// NewWalletSubmitter wires the per-VM signers. The Solana side may be nil when
// no Solana key is configured.
func NewWalletSubmitter(evm *wallet.EVMSigner, sol *wallet.SolanaClient, log zerolog.Logger) *WalletSubmitter {
	return &WalletSubmitter{evm: evm, sol: sol, log: log}
}

// Submit executes the quote's prepared transaction on the source chain and
// returns its hash. EVM legs get an ERC-20 allowance check first.
func (s *WalletSubmitter) Submit(ctx context.Context, quote *lifi.Quote) (string, error) {
	if quote == nil || quote.TransactionRequest == nil {
		return "", errors.New("quote carries no transaction request")
	}
	if info, ok := chain.ByID(quote.Action.FromChainID); ok && info.VM == chain.VMSolana {
		if s.sol == nil {
			return "", errors.New("solana signer not configured")
		}
		return s.sol.SignAndSend(ctx, quote.TransactionRequest.Data)
	}
	return s.submitEVM(ctx, quote)
}

func (s *WalletSubmitter) submitEVM(ctx context.Context, quote *lifi.Quote) (string, error) {
	tx := quote.TransactionRequest
	if !common.IsHexAddress(tx.To) {
		return "", fmt.Errorf("invalid router address %q", tx.To)
	}
	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		return "", fmt.Errorf("decode calldata: %w", err)
	}
	value, err := parseBig(tx.Value)
	if err != nil {
		return "", fmt.Errorf("parse tx value: %w", err)
	}
	gasLimit, err := parseBig(tx.GasLimit)
	if err != nil {
		return "", fmt.Errorf("parse gas limit: %w", err)
	}

	chainID := quote.Action.FromChainID
	fromToken := quote.Action.FromToken.Address
	if !strings.EqualFold(fromToken, chain.EVMNativeAddress) && quote.Estimate.ApprovalAddress != "" {
		amount, err := parseBig(quote.Estimate.FromAmount)
		if err != nil {
			return "", fmt.Errorf("parse from amount: %w", err)
		}
		approved, err := s.evm.EnsureAllowance(ctx, chainID,
			common.HexToAddress(fromToken), common.HexToAddress(quote.Estimate.ApprovalAddress), amount)
		if err != nil {
			return "", fmt.Errorf("allowance: %w", err)
		}
		if approved {
			s.log.Debug().Int64("chain", chainID).Str("token", fromToken).Msg("allowance granted")
		}
	}

	return s.evm.SendTransaction(ctx, chainID, common.HexToAddress(tx.To), value, data, gasLimit.Uint64())
}

// parseBig accepts both the hex-quantity and plain decimal encodings the
// aggregator uses interchangeably. Empty means zero.
func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hexutil.DecodeBig(s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// USDCSettler reads and moves the settlement asset on the destination chain.
type USDCSettler struct {
	signer *wallet.EVMSigner
	client *wallet.EVMClient
	dest   config.Destination
}

// NewUSDCSettler builds the production settler over the destination chain.
func NewUSDCSettler(signer *wallet.EVMSigner, client *wallet.EVMClient, dest config.Destination) *USDCSettler {
	return &USDCSettler{signer: signer, client: client, dest: dest}
}

// SettledBalance returns the wallet's raw settlement-asset balance.
func (s *USDCSettler) SettledBalance(ctx context.Context) (*big.Int, error) {
	return s.client.TokenBalance(ctx, s.dest.ChainID,
		common.HexToAddress(s.dest.USDCAddress), s.signer.Address())
}

// Deposit transfers the raw amount into the bridge contract. Crediting happens
// on the exchange side once the transfer is indexed.
func (s *USDCSettler) Deposit(ctx context.Context, raw *big.Int) (string, error) {
	return s.signer.TransferERC20(ctx, s.dest.ChainID,
		common.HexToAddress(s.dest.USDCAddress), common.HexToAddress(s.dest.BridgeAddress), raw)
}
