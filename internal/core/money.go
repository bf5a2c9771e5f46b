// Package core holds the household domain model shared by every layer.
//
// Amounts are two-decimal euro values carried as float64, matching the wire
// format of the document store. Parsing from user or bank input goes through
// shopspring/decimal so "12,34" and "12.345" round deterministically before
// they ever touch float arithmetic.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive euro amount.
//
// It accepts both dot and comma decimal separators and rounds half-up to
// cents. Returns ErrInvalidAmount for empty input, malformed numbers, zero,
// or negative values.
func ParseAmount(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// ParseSignedAmount is ParseAmount without the positivity requirement; bank
// statements report debits as negative values.
func ParseSignedAmount(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// FormatEuros renders an amount for logs and API payloads, e.g. "€12.34".
func FormatEuros(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-€%.2f", -amount)
	}
	return fmt.Sprintf("€%.2f", amount)
}
