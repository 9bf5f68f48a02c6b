// Package core holds the domain types shared by the extraction and query
// engines and the ledger backends.
//
// This file contains amount parsing and formatting helpers. Amounts are
// decimal values, never floats, to keep report totals exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a currency token to a decimal amount. It accepts an
// optional leading $, thousands separators and an optional fraction
// ("$1,234.56" -> 1234.56). Negative amounts are rejected; ledger rows carry
// direction in the type column instead.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// FormatUSD renders an amount as $1,234.56 for prose reports.
func FormatUSD(d decimal.Decimal) string {
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}
