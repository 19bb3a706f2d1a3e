package fallback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
	"github.com/Mbelalia/facture-engine/pkg/price"
)

// boxSummary is the JSON shape of one product box in the prompt payload.
type boxSummary struct {
	Lines  []string `json:"lines"`
	Prices []string `json:"prices,omitempty"`
}

type pageSummary struct {
	Page  int          `json:"page"`
	Boxes []boxSummary `json:"boxes"`
}

type payload struct {
	Vendor string        `json:"vendor"`
	Pages  []pageSummary `json:"pages"`
}

// BuildPrompt serializes the segmented boxes and vendor hint into the
// extraction prompt. Prices found inside each box are repeated in
// normalized form so the model does not have to re-parse French decimals.
func BuildPrompt(pages []layout.BoxPage, vendor invoice.Vendor) string {
	p := payload{Vendor: string(vendor)}
	for _, page := range pages {
		if len(page.Boxes) == 0 {
			continue
		}
		ps := pageSummary{Page: page.PageNumber}
		for _, box := range page.Boxes {
			s := boxSummary{}
			for _, row := range box.Rows {
				s.Lines = append(s.Lines, row.Text())
				for _, tok := range row.Tokens {
					// Dotted reference codes parse like thousands-grouped
					// amounts; keep them out of the price list.
					if layout.IsCodeToken(tok.Text) {
						continue
					}
					if v, ok := price.Parse(tok.Text); ok {
						s.Prices = append(s.Prices, price.FormatEUR(v))
					}
				}
			}
			ps.Boxes = append(ps.Boxes, s)
		}
		p.Pages = append(p.Pages, ps)
	}

	serialized, err := json.Marshal(p)
	if err != nil {
		// payload is plain structs; Marshal cannot realistically fail, but
		// the fallback path must never panic over it.
		serialized = []byte(`{"pages":[]}`)
	}

	var b strings.Builder
	b.WriteString(`Extract products from this invoice. Return ONLY a valid JSON array.

EXTRACTION RULES:
1. Find product names (descriptive text, not codes)
2. Find the TOTAL price for each product block ("prices" lists the amounts seen in the block)
3. Find quantities (integers, look for "Quantité" or numbers before the price)
4. Extract the TOTAL LINE PRICE as totalTTC - the unit price is computed later
5. Look for reference codes/SKUs (6-digit numbers or dotted codes like "305.332.14")

SKIP THESE (not products):
- Headers: "Article", "Taille", "Quantité", "Remise", "Prix", "Code"
- Totals: "MONTANT", "TOTAL", "SOUS-TOTAL"
- Shipping: "FRAIS DE LIVRAISON", "Livraison"
- Fees: "dont", "éco-participation"
- Payment: "CARTE VISA", "Payé par"

OUTPUT FORMAT (JSON array only, no explanation):
[
  {
    "name": "Product Name",
    "description": "size, color, details if present",
    "quantity": 2,
    "totalTTC": 199.80,
    "reference": "234964"
  }
]

`)
	fmt.Fprintf(&b, "VENDOR HINT: %s\n\nINVOICE BLOCKS:\n%s\n\nJSON OUTPUT:", vendor, serialized)
	return b.String()
}
