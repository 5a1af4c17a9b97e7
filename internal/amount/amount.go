// Package amount converts between on-chain integer amounts and human token
// units without going through floats. Raw amounts are decimal-shifted, never
// multiplied, so no precision is lost on high-decimal assets.
package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NonStablePrecision caps the fractional digits bridged for volatile assets.
// Aggregator validation rejects amounts carrying float drift beyond this.
const NonStablePrecision = 4

// FromRaw parses an on-chain integer string into human token units.
func FromRaw(raw string, decimals int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse raw amount %q: %w", raw, err)
	}
	return d.Shift(int32(-decimals)), nil
}

// ToRaw converts human token units to the on-chain integer string, flooring so
// the wallet is never asked for more than it holds.
func ToRaw(tokens decimal.Decimal, decimals int) string {
	return tokens.Shift(int32(decimals)).Floor().String()
}

// RawIsZero reports whether the amount floors to zero on-chain units.
func RawIsZero(tokens decimal.Decimal, decimals int) bool {
	return tokens.Shift(int32(decimals)).Floor().IsZero()
}

// FloorForBridge rounds a token amount down to what the bridge will accept:
// whole units for stablecoins, NonStablePrecision fractional digits otherwise.
func FloorForBridge(tokens decimal.Decimal, stable bool) decimal.Decimal {
	if stable {
		return tokens.Floor()
	}
	return tokens.Truncate(NonStablePrecision)
}

// USDValue prices a token amount, computed in decimal and only collapsed to
// float at the very end for display and comparison.
func USDValue(tokens decimal.Decimal, priceUSD float64) float64 {
	return tokens.Mul(decimal.NewFromFloat(priceUSD)).InexactFloat64()
}

// TokensForUSD inverts USDValue: how many tokens a USD amount buys at a price.
// Returns zero for non-positive prices.
func TokensForUSD(usd, priceUSD float64) decimal.Decimal {
	if priceUSD <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(usd).Div(decimal.NewFromFloat(priceUSD))
}
