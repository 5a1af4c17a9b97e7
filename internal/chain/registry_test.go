package chain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGasReserveKnownChain(t *testing.T) {
	reserve := GasReserve(IDArbitrum)
	if !reserve.Equal(decimal.RequireFromString("0.0006")) {
		t.Fatalf("unexpected arbitrum reserve: %s", reserve)
	}
}

func TestGasReserveUnknownChainUsesDefault(t *testing.T) {
	reserve := GasReserve(999999)
	if !reserve.Equal(defaultGasReserve) {
		t.Fatalf("expected default reserve for unknown chain, got %s", reserve)
	}
	for id := range registry {
		if GasReserve(id).GreaterThanOrEqual(defaultGasReserve) && id != IDSolana && id != IDAvalanche && id != IDPolygon {
			t.Fatalf("known chain %d reserve should undercut the default", id)
		}
	}
}

func TestIsNativeMatchesAddressAndSymbol(t *testing.T) {
	if !IsNative(IDEthereum, EVMNativeAddress, "") {
		t.Fatalf("zero address should classify as native")
	}
	if !IsNative(IDArbitrum, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", "ETH") {
		t.Fatalf("native symbol should classify as native even with a token address")
	}
	if IsNative(IDArbitrum, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", "USDC") {
		t.Fatalf("USDC on arbitrum is not native")
	}
	if !IsNative(IDSolana, SolanaNativeAddress, "") {
		t.Fatalf("system program id should classify as native on solana")
	}
}

func TestIsStableSymbol(t *testing.T) {
	for _, sym := range []string{"USDC", "usdt", "DAI", "axlUSDC", "USDbC"} {
		if !IsStableSymbol(sym) {
			t.Fatalf("expected %s to classify as stable", sym)
		}
	}
	for _, sym := range []string{"ETH", "WBTC", "SOL", "ARB"} {
		if IsStableSymbol(sym) {
			t.Fatalf("expected %s to classify as volatile", sym)
		}
	}
}

func TestStablesCoverDestinationChain(t *testing.T) {
	assets := Stables(IDArbitrum)
	if len(assets) == 0 {
		t.Fatalf("arbitrum stable table must not be empty")
	}
	found := false
	for _, a := range assets {
		if a.Symbol == "USDC" {
			found = true
			if a.Decimals != 6 {
				t.Fatalf("arbitrum USDC decimals: %d", a.Decimals)
			}
		}
	}
	if !found {
		t.Fatalf("arbitrum table missing USDC")
	}
}
