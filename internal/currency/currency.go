// Package currency converts between raw keystroke input, pt-BR display
// strings and decimal amounts for the ledger.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDisplayInput reformats accumulated keystroke text as a pt-BR amount.
// Non-digit characters are dropped, the remaining digits are read right to
// left as cents, and the result is rendered with dot thousands separators
// and a comma decimal separator. Empty input yields "0,00".
//
//	"150"     -> "1,50"
//	"150000"  -> "1.500,00"
//	"1a5b0"   -> "1,50"
func ParseDisplayInput(raw string) string {
	digits := extractDigits(raw)
	digits = strings.TrimLeft(digits, "0")
	for len(digits) < 3 {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-2]
	fracPart := digits[len(digits)-2:]
	return groupThousands(intPart) + "," + fracPart
}

// ToNumeric is the inverse of ParseDisplayInput: it strips thousands dots,
// normalizes the comma decimal separator and parses the result. An empty
// string parses to zero.
func ToNumeric(display string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(display, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ToDisplay renders a stored amount as a read-only pt-BR currency string,
// e.g. "R$ 1.500,00".
func ToDisplay(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-R$ " + FormatAmount(v.Neg())
	}
	return "R$ " + FormatAmount(v)
}

// FormatAmount renders a stored amount as a plain pt-BR number without the
// currency prefix, e.g. "1.500,00".
func FormatAmount(v decimal.Decimal) string {
	fixed := v.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart) + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
