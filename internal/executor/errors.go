package executor

import (
	"errors"
	"strings"

	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/lifi"
	"github.com/denysenkod/hyperliquid-lifi-bridge/internal/wallet"
)

// ErrSettlementBelowMinimum aborts the final deposit: the bridge contract
// silently swallows transfers under its minimum, so sending would burn funds.
var ErrSettlementBelowMinimum = errors.New("executor: settled amount below bridge minimum")

// FailureKind buckets leg failures for display and metrics.
type FailureKind string

const (
	FailureUserRejected    FailureKind = "user_rejected"
	FailureQuoteExpired    FailureKind = "quote_expired"
	FailureSlippage        FailureKind = "slippage_exceeded"
	FailureInsufficientGas FailureKind = "insufficient_gas"
	FailureNetwork         FailureKind = "network"
	FailureUnknown         FailureKind = "unknown"
)

// Message returns the human-readable explanation shown for the failure.
func (k FailureKind) Message() string {
	switch k {
	case FailureUserRejected:
		return "transaction rejected in wallet"
	case FailureQuoteExpired:
		return "route quote expired before submission"
	case FailureSlippage:
		return "price moved beyond the slippage limit"
	case FailureInsufficientGas:
		return "not enough native balance to pay for gas"
	case FailureNetwork:
		return "network or provider failure"
	default:
		return "bridge transaction failed"
	}
}

// Classify maps a raw execution error onto a failure kind. Matching is
// substring-based because providers and wallets disagree on error shapes.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	if wallet.IsUserRejection(err) {
		return FailureUserRejected
	}
	if lifi.IsTransient(err) {
		return FailureNetwork
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired") || strings.Contains(msg, "quote is outdated") || strings.Contains(msg, "deadline"):
		return FailureQuoteExpired
	case strings.Contains(msg, "slippage") || strings.Contains(msg, "min amount") || strings.Contains(msg, "minamount") || strings.Contains(msg, "return amount"):
		return FailureSlippage
	case strings.Contains(msg, "insufficient funds") || strings.Contains(msg, "gas required exceeds") || strings.Contains(msg, "intrinsic gas"):
		return FailureInsufficientGas
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "eof") || strings.Contains(msg, "context deadline"):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}
