package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const receiptPollInterval = 2 * time.Second

// EVMSigner signs and submits transactions with a locally held key.
type EVMSigner struct {
	key    *ecdsa.PrivateKey
	client *EVMClient
	log    zerolog.Logger
}

// NewEVMSignerFromEnv loads the hex private key from EVM_PRIVATE_KEY,
// best-effort reading a .env file first.
func NewEVMSignerFromEnv(client *EVMClient, log zerolog.Logger) (*EVMSigner, error) {
	_ = godotenv.Load()
	hexKey := os.Getenv("EVM_PRIVATE_KEY")
	if hexKey == "" {
		return nil, errors.New("EVM_PRIVATE_KEY not set")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &EVMSigner{key: key, client: client, log: log}, nil
}

// NewEVMSigner wraps an already-parsed key, useful for tests.
func NewEVMSigner(key *ecdsa.PrivateKey, client *EVMClient, log zerolog.Logger) *EVMSigner {
	return &EVMSigner{key: key, client: client, log: log}
}

// Address returns the signing address.
func (s *EVMSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SendTransaction signs a legacy transaction, submits it, and blocks until the
// receipt lands or the context expires. Returns the transaction hash.
func (s *EVMSigner) SendTransaction(ctx context.Context, chainID int64, to common.Address, value *big.Int, data []byte, gasLimit uint64) (string, error) {
	client, err := s.client.client(chainID)
	if err != nil {
		return "", err
	}
	from := s.Address()

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch gas price: %w", err)
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if gasLimit == 0 {
		gasLimit = 300_000
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(chainID)), s.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	hash := signed.Hash()
	s.log.Info().Int64("chain", chainID).Str("tx", hash.Hex()).Msg("transaction submitted")

	receipt, err := s.waitReceipt(ctx, chainID, hash)
	if err != nil {
		return hash.Hex(), err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hash.Hex(), fmt.Errorf("transaction reverted in block %d", receipt.BlockNumber)
	}
	return hash.Hex(), nil
}

func (s *EVMSigner) waitReceipt(ctx context.Context, chainID int64, hash common.Hash) (*types.Receipt, error) {
	client, err := s.client.client(chainID)
	if err != nil {
		return nil, err
	}
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// EnsureAllowance approves the spender when the current allowance is short.
// Returns true when an approval transaction was sent.
func (s *EVMSigner) EnsureAllowance(ctx context.Context, chainID int64, token, spender common.Address, amount *big.Int) (bool, error) {
	current, err := s.client.Allowance(ctx, chainID, token, s.Address(), spender)
	if err != nil {
		return false, err
	}
	if current.Cmp(amount) >= 0 {
		return false, nil
	}
	data, err := s.client.PackApprove(spender, amount)
	if err != nil {
		return false, err
	}
	if _, err := s.SendTransaction(ctx, chainID, token, nil, data, 80_000); err != nil {
		return true, fmt.Errorf("approve: %w", err)
	}
	return true, nil
}

// TransferERC20 moves tokens to a recipient; used for the final settlement
// deposit into the Hyperliquid bridge.
func (s *EVMSigner) TransferERC20(ctx context.Context, chainID int64, token, to common.Address, amount *big.Int) (string, error) {
	data, err := s.client.PackTransfer(to, amount)
	if err != nil {
		return "", err
	}
	return s.SendTransaction(ctx, chainID, token, nil, data, 120_000)
}
