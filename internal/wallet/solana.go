package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"os"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// SolanaClient reads balances and submits pre-built transactions on Solana.
type SolanaClient struct {
	rpc   *rpc.Client
	owner solana.PrivateKey // nil when only reading
	log   zerolog.Logger
}

// NewSolanaClient connects to the given RPC endpoint. Owner may be nil for
// read-only use (balance scanning without a key).
func NewSolanaClient(rpcURL string, owner solana.PrivateKey, log zerolog.Logger) *SolanaClient {
	return &SolanaClient{rpc: rpc.New(rpcURL), owner: owner, log: log}
}

// LoadSolanaKeyFromEnv reads SOLANA_PRIVATE_KEY_BASE58, best-effort loading a
// .env file first.
func LoadSolanaKeyFromEnv() (solana.PrivateKey, error) {
	b58 := os.Getenv("SOLANA_PRIVATE_KEY_BASE58")
	if b58 == "" {
		return nil, errors.New("SOLANA_PRIVATE_KEY_BASE58 not set")
	}
	return solana.PrivateKeyFromBase58(b58)
}

// NativeBalance returns the SOL balance in lamports.
func (c *SolanaClient) NativeBalance(ctx context.Context, owner solana.PublicKey) (*big.Int, error) {
	out, err := c.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("solana native balance: %w", err)
	}
	return new(big.Int).SetUint64(out.Value), nil
}

// TokenBalance returns the SPL balance of the owner's associated token account
// for the given mint, in raw units. A missing account reads as zero.
func (c *SolanaClient) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*big.Int, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("derive token account: %w", err)
	}
	out, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		// No account means the wallet never held the token.
		return big.NewInt(0), nil
	}
	raw, ok := new(big.Int).SetString(out.Value.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("parse token amount %q", out.Value.Amount)
	}
	return raw, nil
}

// SignAndSend decodes a base64-serialized transaction (as returned by the
// aggregator for Solana legs), signs it with the local key, and submits it.
func (c *SolanaClient) SignAndSend(ctx context.Context, encodedTx string) (string, error) {
	if c.owner == nil {
		return "", errors.New("solana signer not configured")
	}
	raw, err := base64.StdEncoding.DecodeString(encodedTx)
	if err != nil {
		return "", fmt.Errorf("decode tx: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("unmarshal tx: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.owner.PublicKey()) {
			return &c.owner
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}
	c.log.Info().Str("tx", sig.String()).Msg("solana transaction submitted")
	return sig.String(), nil
}
