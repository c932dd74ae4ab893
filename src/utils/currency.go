package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseValue converts a currency-formatted cell value into a decimal.
// It strips "$", ",", parentheses and whitespace before parsing; a value
// wrapped in parentheses is forced negative regardless of sign character.
// The boolean is false when no numeric value could be extracted.
func ParseValue(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")

	cleaner := strings.NewReplacer("$", "", ",", "", "(", "", ")", "", " ", "", "\t", "")
	s = cleaner.Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		value = value.Abs().Neg()
	}
	return value, true
}

// FormatCurrency renders a decimal as a dollar amount with thousands
// separators, accounting style: negative values are parenthesized rather
// than signed, e.g. -1500.5 -> "($1,500.50)".
func FormatCurrency(value decimal.Decimal) string {
	fixed := value.Abs().StringFixed(2)

	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	formatted := "$" + b.String() + fracPart
	if value.IsNegative() {
		return "(" + formatted + ")"
	}
	return formatted
}
