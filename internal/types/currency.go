package types

import "strings"

// DefaultCurrency is the platform currency. Price books without an explicit
// currency binding and zone chains without a currency override fall back to
// it.
const DefaultCurrency = "INR"

// currencySymbols maps the ISO 4217 codes accepted on price books and zone
// currency overrides to their storefront display symbols.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "AU$",
	"CAD": "CA$",
	"SGD": "S$",
	"AED": "د.إ",
	"JPY": "¥",
	"MYR": "RM",
}

// NormalizeCurrency uppercases a currency code for storage and lookups.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupportedCurrency reports whether the platform can price in the given
// currency.
func IsSupportedCurrency(code string) bool {
	_, ok := currencySymbols[NormalizeCurrency(code)]
	return ok
}

// CurrencySymbol returns the display symbol for a currency code, or the code
// itself when none is registered.
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[NormalizeCurrency(code)]; ok {
		return symbol
	}
	return code
}
