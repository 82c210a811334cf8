package core

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxTokenDecimals bounds the supported token precision.
const MaxTokenDecimals = 18

// decodeFractionDigits is how many fractional digits survive a decode.
const decodeFractionDigits = 6

// EncodeAmount converts a human-readable decimal amount into integer base
// units scaled by 10^decimals. Conversion is exact: an amount that does not
// land on an integer number of base units is rejected, never rounded.
func EncodeAmount(amount string, decimals int32) (*big.Int, error) {
	if decimals < 0 || decimals > MaxTokenDecimals {
		return nil, fmt.Errorf("%w: unsupported decimals %d", ErrInvalidAmount, decimals)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, amount, decimals)
	}
	return scaled.BigInt(), nil
}

// DecodeAmount converts integer base units back into a human-readable decimal
// string, preserving at most six fractional digits.
func DecodeAmount(baseUnits *big.Int, decimals int32) (string, error) {
	if decimals < 0 || decimals > MaxTokenDecimals {
		return "", fmt.Errorf("%w: unsupported decimals %d", ErrInvalidAmount, decimals)
	}
	if baseUnits == nil {
		return "", fmt.Errorf("%w: nil base units", ErrInvalidAmount)
	}
	d := decimal.NewFromBigInt(baseUnits, -decimals)
	return d.Truncate(decodeFractionDigits).String(), nil
}
