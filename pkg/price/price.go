// Package price provides parsing and arithmetic for the amounts found on
// French invoices (comma decimals, dot thousands separators, trailing "€").
// It uses shopspring/decimal so unit-price divisions round exactly to cents.
package price

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	nonAmountRe = regexp.MustCompile(`[^\d.,]`)
	amountRe    = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*\.\d{2}$|^\d+\.\d{2}$`)
)

// Parse reads a price token ("49,90", "1.299,00", "19.99 €") and returns
// its value. ok is false for anything that does not have a price shape,
// reference codes included.
func Parse(s string) (float64, bool) {
	cleaned := nonAmountRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if !amountRe.MatchString(cleaned) {
		return 0, false
	}

	// All dots but the decimal one are thousands separators.
	if idx := strings.LastIndex(cleaned, "."); idx >= 0 {
		cleaned = strings.ReplaceAll(cleaned[:idx], ".", "") + cleaned[idx:]
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Coerce is the lenient variant used on external (LLM) responses: it strips
// every non-numeric character, normalizes the decimal separator and accepts
// any positive number, rounded to 2 decimals. ok is false for zero,
// negatives and garbage.
func Coerce(s string) (float64, bool) {
	cleaned := nonAmountRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}
	// Collapse thousands dots when more than one dot survives.
	if strings.Count(cleaned, ".") > 1 {
		idx := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:idx], ".", "") + cleaned[idx:]
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return Round2(v), true
}

// Round2 rounds to 2 decimals using decimal arithmetic, not float tricks.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// DivideByQuantity turns a line total into a unit price, rounded to cents.
// Quantities below 1 leave the total untouched.
func DivideByQuantity(total float64, quantity int) float64 {
	if quantity <= 1 {
		return Round2(total)
	}
	f, _ := decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(quantity))).
		Round(2).
		Float64()
	return f
}

// FormatEUR renders an amount as a euro currency string. Used when
// serializing box summaries for the fallback prompt.
func FormatEUR(v float64) string {
	cents := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.EUR).Display()
}
