// Package chain holds static metadata for the networks the depositor understands:
// chain ids, native gas assets, per-chain gas reserves, and stablecoin tables.
package chain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VM distinguishes how balances are read and transactions are signed on a chain.
type VM string

const (
	VMEVM    VM = "evm"
	VMSolana VM = "svm"
)

// EVM native-asset placeholder used by the LI.FI API.
const EVMNativeAddress = "0x0000000000000000000000000000000000000000"

// SolanaNativeAddress is the system program id LI.FI uses for native SOL.
const SolanaNativeAddress = "11111111111111111111111111111111"

// Chain ids as LI.FI numbers them. Solana gets a synthetic id in their scheme.
const (
	IDEthereum  int64 = 1
	IDOptimism  int64 = 10
	IDBSC       int64 = 56
	IDPolygon   int64 = 137
	IDBase      int64 = 8453
	IDArbitrum  int64 = 42161
	IDAvalanche int64 = 43114
	IDSolana    int64 = 1151111081099710
)

// Info describes a supported chain.
type Info struct {
	ID             int64
	Name           string
	VM             VM
	NativeSymbol   string
	NativeDecimals int
	// GasReserve is withheld from native allocations so the wallet can still
	// pay for the bridge transaction itself, in native units.
	GasReserve decimal.Decimal
}

// Asset is one entry of a per-chain token table.
type Asset struct {
	Address  string
	Symbol   string
	Decimals int
}

// defaultGasReserve applies to chains missing from the registry. Deliberately
// higher than any known-chain reserve.
var defaultGasReserve = decimal.RequireFromString("0.01")

var registry = map[int64]Info{
	IDEthereum:  {ID: IDEthereum, Name: "Ethereum", VM: VMEVM, NativeSymbol: "ETH", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.008")},
	IDOptimism:  {ID: IDOptimism, Name: "Optimism", VM: VMEVM, NativeSymbol: "ETH", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.0008")},
	IDBSC:       {ID: IDBSC, Name: "BNB Chain", VM: VMEVM, NativeSymbol: "BNB", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.002")},
	IDPolygon:   {ID: IDPolygon, Name: "Polygon", VM: VMEVM, NativeSymbol: "POL", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.4")},
	IDBase:      {ID: IDBase, Name: "Base", VM: VMEVM, NativeSymbol: "ETH", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.0006")},
	IDArbitrum:  {ID: IDArbitrum, Name: "Arbitrum", VM: VMEVM, NativeSymbol: "ETH", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.0006")},
	IDAvalanche: {ID: IDAvalanche, Name: "Avalanche", VM: VMEVM, NativeSymbol: "AVAX", NativeDecimals: 18, GasReserve: decimal.RequireFromString("0.025")},
	IDSolana:    {ID: IDSolana, Name: "Solana", VM: VMSolana, NativeSymbol: "SOL", NativeDecimals: 9, GasReserve: decimal.RequireFromString("0.01")},
}

// stables lists the stable assets scanned per chain. Small by design: the
// optimizer only considers assets with deep bridge liquidity.
var stables = map[int64][]Asset{
	IDEthereum: {
		{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
		{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Decimals: 6},
		{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
	},
	IDOptimism: {
		{Address: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", Symbol: "USDC", Decimals: 6},
		{Address: "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58", Symbol: "USDT", Decimals: 6},
		{Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1", Symbol: "DAI", Decimals: 18},
	},
	IDBSC: {
		{Address: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Symbol: "USDC", Decimals: 18},
		{Address: "0x55d398326f99059fF775485246999027B3197955", Symbol: "USDT", Decimals: 18},
	},
	IDPolygon: {
		{Address: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", Symbol: "USDC", Decimals: 6},
		{Address: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", Symbol: "USDT", Decimals: 6},
		{Address: "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063", Symbol: "DAI", Decimals: 18},
	},
	IDBase: {
		{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6},
		{Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", Symbol: "DAI", Decimals: 18},
	},
	IDArbitrum: {
		{Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Symbol: "USDC", Decimals: 6},
		{Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Symbol: "USDT", Decimals: 6},
		{Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1", Symbol: "DAI", Decimals: 18},
	},
	IDAvalanche: {
		{Address: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", Symbol: "USDC", Decimals: 6},
		{Address: "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", Symbol: "USDT", Decimals: 6},
	},
	IDSolana: {
		{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Decimals: 6},
		{Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Decimals: 6},
	},
}

var stableSymbols = map[string]struct{}{
	"USDC": {}, "USDT": {}, "DAI": {}, "USDC.E": {}, "USDBC": {}, "FRAX": {}, "TUSD": {}, "USDP": {}, "GUSD": {}, "LUSD": {},
}

// ByID looks up a chain by its LI.FI id.
func ByID(id int64) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// Name returns the chain's display name, or a numeric fallback for unknown ids.
func Name(id int64) string {
	if info, ok := registry[id]; ok {
		return info.Name
	}
	return "chain-" + decimal.NewFromInt(id).String()
}

// GasReserve returns the native-unit reserve withheld before allocating a
// native balance. Unknown chains get the conservative default.
func GasReserve(id int64) decimal.Decimal {
	if info, ok := registry[id]; ok {
		return info.GasReserve
	}
	return defaultGasReserve
}

// NativeAddress returns the placeholder address used for the chain's gas asset.
func NativeAddress(id int64) string {
	if info, ok := registry[id]; ok && info.VM == VMSolana {
		return SolanaNativeAddress
	}
	return EVMNativeAddress
}

// IsNative reports whether the given asset is the chain's gas asset, matched by
// address placeholder or by native symbol.
func IsNative(chainID int64, address, symbol string) bool {
	if strings.EqualFold(address, NativeAddress(chainID)) {
		return true
	}
	info, ok := registry[chainID]
	return ok && strings.EqualFold(symbol, info.NativeSymbol)
}

// Stables returns the stable-asset table for a chain; nil for unknown chains.
func Stables(chainID int64) []Asset {
	return stables[chainID]
}

// IsStableSymbol classifies an asset as a USD stablecoin by the known symbol
// list, falling back to a textual heuristic for bridged variants (axlUSDC and
// the like).
func IsStableSymbol(symbol string) bool {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := stableSymbols[upper]; ok {
		return true
	}
	return strings.Contains(upper, "USD")
}
