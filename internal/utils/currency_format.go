package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit at the payment provider.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
}

// CurrencyPrecision is the number of minor-unit digits of an ISO 4217 currency.
func CurrencyPrecision(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// ToMinorUnits converts a major-unit amount to the smallest currency unit, rounding half away from zero.
// Example: 50.00 CAD returns 5000.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(CurrencyPrecision(currency)).Round(0).IntPart()
}

// FromMinorUnits converts a smallest-unit amount back to major units.
// Example: 25000 CAD returns 250.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -CurrencyPrecision(currency))
}

// FormatMoney renders an amount for display, e.g. "250.00 CAD".
func FormatMoney(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(CurrencyPrecision(currency)) + " " + strings.ToUpper(currency)
}
