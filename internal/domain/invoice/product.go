// Package invoice defines the extraction output model shared by the
// positional extractor and the fallback sanitizer, plus the vendor-specific
// price selection policies.
package invoice

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Vendor identifies the invoice layout convention of a document. It is
// classified once per document and never changes mid-document.
type Vendor string

const (
	// VendorIKEA is the furniture-retailer layout: dotted reference codes
	// (305.332.14), stacked per-unit original/current prices.
	VendorIKEA Vendor = "ikea"
	// VendorLaRedoute is the fashion-retailer layout: "Réf:"/"Couleur:"
	// metadata blocks, discounted line totals.
	VendorLaRedoute Vendor = "la_redoute"
	// VendorGeneric is any layout that matches neither signature.
	VendorGeneric Vendor = "generic"
)

// PriceSource records where a product's price came from. The La Redoute
// normalization pass relies on it to divide line totals exactly once.
type PriceSource string

const (
	PriceSourceNone         PriceSource = ""
	PriceSourceUnit         PriceSource = "unit"
	PriceSourceTotal        PriceSource = "total"
	PriceSourceTotalDivided PriceSource = "total_divided"
	PriceSourceFallback     PriceSource = "fallback"
)

// Product is one purchased line item. Both extraction paths emit this exact
// shape so callers never care which path produced it. PriceTTC and PriceHT
// stay nil when no price could be resolved; the product is still emitted
// and downstream validation decides whether to keep it.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    int      `json:"quantity"`
	PriceTTC    *float64 `json:"priceTTC,omitempty"`
	PriceHT     *float64 `json:"priceHT,omitempty"`
	Reference   string   `json:"reference,omitempty"`

	// PriceSource is internal bookkeeping, not part of the output contract.
	PriceSource PriceSource `json:"-"`
}

// NewID builds a product id: a lowercase alphanumeric slug of name plus
// reference, or a random fallback when the slug comes out empty.
func NewID(name, reference string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name + reference) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "prod_" + uuid.NewString()[:8]
	}
	slug := b.String()
	if len(slug) > 48 {
		slug = slug[:48]
	}
	return slug
}
