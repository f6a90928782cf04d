// Package core provides money parsing and handling utilities.
//
// This file contains the Amount type used for every monetary value in the
// ledger. Amounts keep full decimal precision; rounding happens only when a
// value is formatted for display.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Amount is a currency-agnostic magnitude.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MustAmount parses s and panics on failure. Intended for tests and constants.
func MustAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return Amount{Decimal: d}
}

// ParseAmount converts user input to a positive Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// every fractional digit. Signs, exponents, grouping separators and zero are
// rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.345, nil
//	ParseAmount("0")      -> error
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, invalidAmount()
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Amount{}, invalidAmount()
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Amount{}, invalidAmount()
		}
	}
	if s == "." {
		return Amount{}, invalidAmount()
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, invalidAmount()
	}
	a := Amount{Decimal: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Validate rejects zero and negative amounts.
func (a Amount) Validate() error {
	if !a.IsPositive() {
		return invalidAmount()
	}
	return nil
}

// Display formats d with a currency symbol, rounded to two places.
// The rounding is for presentation only.
func Display(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Neg().StringFixed(2)
	}
	return symbol + d.StringFixed(2)
}

func invalidAmount() error {
	return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
}
