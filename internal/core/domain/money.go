package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// VATRate is the Spanish general VAT rate applied to every order total.
var VATRate = decimal.RequireFromString("1.21")

const currencySymbol = "€"

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SplitVAT splits a VAT-inclusive total into net and tax parts:
// net = round2(total / 1.21), tax = round2(total - net).
func SplitVAT(total float64) (net, tax float64) {
	t := decimal.NewFromFloat(total)
	n := t.DivRound(VATRate, 2)
	net, _ = n.Float64()
	tax, _ = t.Sub(n).Round(2).Float64()
	return net, tax
}

// FormatAmount renders v with exactly two decimals and a dot separator, as
// payment providers expect ("19.99").
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPrice renders v in Spanish notation with a trailing euro sign:
// 1234.5 -> "1.234,50€". NaN and infinities render as "0,00€".
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0,00" + currencySymbol
	}
	fixed := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart) + "," + frac + currencySymbol
	if neg && strings.Trim(intPart+frac, "0") != "" {
		out = "-" + out
	}
	return out
}

// groupThousands inserts a dot every three digits from the right:
// "25000" -> "25.000".
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
