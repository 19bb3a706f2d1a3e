package fallback

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/pkg/price"
)

// Quantity bounds accepted from the external collaborator.
const (
	minQuantity = 1
	maxQuantity = 999

	maxNameLen        = 120
	maxDescriptionLen = 200
	maxReferenceLen   = 50
)

var (
	fenceRe         = regexp.MustCompile("```(?:json)?\\s*")
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*):`)
	controlCharRe   = regexp.MustCompile("[\r\n\t]+")
	placeholderRe   = regexp.MustCompile(`(?i)^(product|produit|item|article)\s*\d*$`)
)

// Sanitize turns the collaborator's free-form response text into validated
// products. It never fails: markdown fences are stripped, the first
// well-formed JSON array is located by bracket matching, a strict parse is
// attempted and, on failure, retried once after a repair pass. Anything
// still unparseable yields an empty list.
func Sanitize(raw string) []invoice.Product {
	cleaned := fenceRe.ReplaceAllString(strings.TrimSpace(raw), "")

	arr, ok := firstJSONArray(cleaned)
	if !ok {
		return []invoice.Product{}
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		repaired := repairJSON(arr)
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			return []invoice.Product{}
		}
	}

	products := make([]invoice.Product, 0, len(items))
	for _, item := range items {
		if p, keep := mapProduct(item); keep {
			products = append(products, p)
		}
	}
	return products
}

// firstJSONArray scans for the first '[' whose bracket nesting closes,
// honouring JSON string literals and escapes.
func firstJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON fixes the failure modes observed in practice: trailing commas,
// unquoted keys and stray control characters.
func repairJSON(s string) string {
	fixed := trailingCommaRe.ReplaceAllString(s, "$1")
	fixed = bareKeyRe.ReplaceAllString(fixed, `$1"$2"$3:`)
	fixed = controlCharRe.ReplaceAllString(fixed, " ")
	return strings.TrimSpace(fixed)
}

// mapProduct coerces one raw object into a Product, defensively. Entries
// with unusable names are rejected outright; prices and quantities are
// clamped rather than trusted.
func mapProduct(item map[string]any) (invoice.Product, bool) {
	name := strings.TrimSpace(stringField(item, "name"))
	if utf8.RuneCountInString(name) < 2 || placeholderRe.MatchString(name) {
		return invoice.Product{}, false
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	quantity := clampQuantity(item)

	p := invoice.Product{
		Name:        name,
		Description: truncate(strings.TrimSpace(stringField(item, "description")), maxDescriptionLen),
		Quantity:    quantity,
		Reference:   truncate(strings.TrimSpace(stringField(item, "reference")), maxReferenceLen),
	}

	// Line totals are divided down to unit prices; bare unit-price keys
	// are taken as-is.
	if total, ok := coerceField(item, "totalTTC"); ok {
		v := price.DivideByQuantity(total, quantity)
		p.PriceTTC = &v
		p.PriceSource = invoice.PriceSourceFallback
	} else if unit, ok := coerceField(item, "priceTTC", "price"); ok {
		v := unit
		p.PriceTTC = &v
		p.PriceSource = invoice.PriceSourceFallback
	}

	if totalHT, ok := coerceField(item, "totalHT"); ok {
		v := price.DivideByQuantity(totalHT, quantity)
		p.PriceHT = &v
	} else if unitHT, ok := coerceField(item, "priceHT"); ok {
		v := unitHT
		p.PriceHT = &v
	}

	p.ID = invoice.NewID(p.Name, p.Reference)
	return p, true
}

func clampQuantity(item map[string]any) int {
	for _, key := range []string{"quantity", "qty"} {
		raw, ok := item[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return clamp(int(v))
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return clamp(n)
			}
		}
	}
	return minQuantity
}

func clamp(q int) int {
	if q < minQuantity {
		return minQuantity
	}
	if q > maxQuantity {
		return maxQuantity
	}
	return q
}

// coerceField reads the first present key as a price, accepting numbers or
// strings like "19,99 €".
func coerceField(item map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := item[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if v > 0 {
				return price.Round2(v), true
			}
		case string:
			if parsed, ok := price.Coerce(v); ok {
				return parsed, true
			}
		}
	}
	return 0, false
}

func stringField(item map[string]any, key string) string {
	if raw, ok := item[key]; ok {
		if s, isString := raw.(string); isString {
			return s
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
