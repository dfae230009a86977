// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// currencySymbols maps common ISO codes to their display symbols. Codes not
// listed here are printed as a prefix, e.g. "CHF 1,200.00".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CAD": "$",
	"AUD": "$",
}

// FormatAmount formats a monetary amount with thousands grouping and the
// currency's symbol, e.g. FormatAmount(12500.5, "USD") == "$12,500.50".
func FormatAmount(amount float64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := groupThousands(parts[0])
	formatted := intPart + "." + parts[1]

	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	var result string
	if ok {
		result = symbol + formatted
	} else if currency != "" {
		result = strings.ToUpper(currency) + " " + formatted
	} else {
		result = formatted
	}

	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
