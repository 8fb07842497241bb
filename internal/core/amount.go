// Package core provides amount parsing and formatting utilities.
//
// Amounts are decimal quantities without a currency. Form input is parsed
// strictly; data coming from upstream loaders is parsed leniently so that a
// single malformed row never breaks a chart or a table.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "₹"

var moneyPrinter = message.NewPrinter(language.Make("en-IN"))

// ParseAmount converts user input to a positive amount rounded to two decimals.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmountLenient parses an amount coming from an upstream source. Anything
// that does not parse as a number is coerced to zero.
func ParseAmountLenient(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders an amount as "₹1,234.50" using en-IN grouping.
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	s := moneyPrinter.Sprintf("%d", d.Abs().Round(2).IntPart()) + fixed[len(fixed)-3:]
	if neg {
		return "-" + CurrencySymbol + s
	}
	return CurrencySymbol + s
}
