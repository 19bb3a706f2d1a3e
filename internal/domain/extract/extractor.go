// Package extract implements the positional product extractor: an
// anchor-driven walk over the full, unpruned row list that emits structured
// products. It consumes the document-wide column estimate and vendor
// profile as plain inputs and never recomputes them.
package extract

import (
	"strings"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/internal/domain/layout"
	"github.com/Mbelalia/facture-engine/pkg/price"
)

// Geometry of the supported layouts, in page units.
const (
	// priceColumnWindow is how far a token may sit from the estimated
	// price column and still count as the row's price.
	priceColumnWindow = 100.0
	// leftRegionMargin separates the description region from the numeric
	// columns: left-of-price means x < priceX - leftRegionMargin.
	leftRegionMargin = 60.0
	// Quantity tokens live strictly between the description region and the
	// anchor price. The window rejects integers that belong to reference
	// codes while catching the quantity column.
	quantityMinGap = 10.0
	quantityMaxGap = 150.0
	// maxBlockGap ends a product block when the next row is this far down.
	maxBlockGap = 160.0
)

// Extractor walks rows for one document. Build one per extraction call;
// it carries no state across documents.
type Extractor struct {
	vendor invoice.Vendor
	policy invoice.PricePolicy
	cols   layout.ColumnEstimate
}

// New creates an extractor for one document's vendor and column estimate.
func New(vendor invoice.Vendor, cols layout.ColumnEstimate) *Extractor {
	return &Extractor{
		vendor: vendor,
		policy: invoice.PolicyFor(vendor),
		cols:   cols,
	}
}

// Products runs the row walk over every page and returns the extracted
// products. A document with no anchors yields an empty slice, never an
// error; that outcome is the caller's signal to try the fallback path.
func (e *Extractor) Products(pages []layout.RowPage) []invoice.Product {
	rows := flatten(pages)
	var products []invoice.Product

	for i := 0; i < len(rows); i++ {
		row := rows[i]
		text := row.Text()
		if text == "" || layout.IsBlockDenylisted(text) {
			continue
		}

		if !e.isAnchor(row) {
			// Metadata rows attach to the most recently opened product.
			if len(products) > 0 {
				i += e.applyMetadata(&products[len(products)-1], rows, i)
			}
			continue
		}

		product, lastConsumed := e.openProduct(rows, i)
		products = append(products, product)
		i = lastConsumed
	}

	// Belt-and-braces: re-divide any La Redoute total the block walk left
	// undivided. The PriceSource marker keeps this from running twice.
	invoice.NormalizeTotals(products, e.vendor)
	return products
}

// isAnchor decides whether a row starts a new product. The strict form
// wants a name-like left region plus a price token and currency glyph near
// the estimated price column; the loose form accepts them anywhere on the
// row, for documents where the column estimate is noisy.
func (e *Extractor) isAnchor(row layout.Row) bool {
	text := row.Text()
	if layout.IsFeeLine(text) {
		return false
	}
	if len(e.meaningfulLeftTokens(row)) == 0 {
		return false
	}

	_, hasNearPrice := e.priceTokenNearColumn(row)
	if hasNearPrice && e.hasCurrencyNearColumn(row) {
		return true
	}

	_, hasAnyPrice := anyPriceToken(row)
	return hasAnyPrice && row.HasPriceMarker
}

// openProduct builds a product from the anchor row and the follow-on rows
// of its block. It returns the index of the last consumed row.
func (e *Extractor) openProduct(rows []layout.Row, idx int) (invoice.Product, int) {
	anchor := rows[idx]

	anchorPriceTok, ok := e.priceTokenNearColumn(anchor)
	if !ok {
		anchorPriceTok, _ = anyPriceToken(anchor)
	}

	quantity := e.anchorQuantity(anchor, anchorPriceTok)
	name := e.productName(anchor)

	var candidates []float64
	if anchorPriceTok != nil {
		if v, parsed := price.Parse(anchorPriceTok.Text); parsed {
			candidates = append(candidates, v)
		}
	}

	product := invoice.Product{
		Name:     name,
		Quantity: quantity,
	}

	var descParts []string
	lastY := anchor.Y
	last := idx

	for next := idx + 1; next < len(rows); next++ {
		row := rows[next]
		if _, stop := e.blockStop(row, lastY); stop {
			break
		}

		if consumed := e.applyMetadata(&product, rows, next); consumed > 0 || layout.IsMetaLabel(row.Text()) {
			next += consumed
			last = next
			lastY = row.Y
			continue
		}

		// Follow-on price in the right column joins the candidate set,
		// unless it is an eco-participation fee.
		if tok, found := e.priceTokenNearColumn(row); found && e.hasCurrencyNearColumn(row) {
			if v, parsed := price.Parse(tok.Text); parsed && !isEcoFee(row.Text(), v) {
				candidates = append(candidates, v)
			}
		}

		if chunk := e.descriptionChunk(row); chunk != "" {
			descParts = append(descParts, chunk)
		}

		lastY = row.Y
		last = next
	}

	if sel, found := e.policy.Select(candidates, product.Quantity); found {
		v := sel.Value
		product.PriceTTC = &v
		product.PriceSource = sel.Source
	}

	// Metadata rows may already have written label values into the
	// description; the follow-on row text goes in front of them.
	if product.Description != "" {
		descParts = append(descParts, product.Description)
	}
	product.Description = collapseSpaces(strings.Join(descParts, " "))
	product.ID = invoice.NewID(product.Name, product.Reference)
	return product, last
}

// blockStop evaluates the block's stop predicates in priority order. A
// firing predicate ends the block without consuming the row.
func (e *Extractor) blockStop(next layout.Row, lastY float64) (string, bool) {
	text := next.Text()
	switch {
	case next.Y-lastY > maxBlockGap:
		return "gap", true
	case layout.IsSectionHeader(text):
		return "section-header", true
	case layout.IsBlockDenylisted(text):
		return "denylist", true
	case e.isAnchor(next):
		return "next-anchor", true
	}
	return "", false
}

// applyMetadata folds a metadata row into the product. It returns the
// number of extra rows consumed (1 for the label-only reference variant
// that reads its code from the following row).
func (e *Extractor) applyMetadata(p *invoice.Product, rows []layout.Row, idx int) int {
	row := rows[idx]
	text := row.Text()
	class := layout.Classify(row)
	if class.Kind != layout.RowMetadata {
		return 0
	}

	switch class.Meta {
	case layout.MetaReference:
		if digits, found := layout.ReferenceDigits(text); found {
			p.Reference = strings.ReplaceAll(digits, ".", "")
		}
	case layout.MetaReferenceLabel:
		if idx+1 < len(rows) {
			if digits, found := layout.ReferenceDigits(rows[idx+1].Text()); found {
				p.Reference = strings.ReplaceAll(digits, ".", "")
				return 1
			}
		}
	case layout.MetaQuantity:
		if raw, found := layout.QuantityLabelValue(text); found {
			if q := atoiSafe(raw); q >= 1 {
				p.Quantity = q
			}
		}
	case layout.MetaColor, layout.MetaSize:
		if value := labelValue(text); value != "" {
			p.Description = collapseSpaces(strings.TrimSpace(p.Description + " " + value))
		}
	}
	return 0
}

// anchorQuantity finds the pure-integer token nearest to the anchor's price
// within the quantity window. Defaults to 1.
func (e *Extractor) anchorQuantity(anchor layout.Row, priceTok *layout.TextItem) int {
	priceX := e.cols.PriceX
	if priceTok != nil {
		priceX = priceTok.X
	}

	quantity := 1
	bestGap := quantityMaxGap
	for _, t := range anchor.Tokens {
		if !layout.IsInteger(t.Text) {
			continue
		}
		gap := priceX - t.X
		if gap > quantityMinGap && gap < bestGap {
			if q := atoiSafe(t.Text); q >= 1 {
				quantity = q
				bestGap = gap
			}
		}
	}
	return quantity
}

// productName joins the anchor's meaningful left tokens, digits excluded.
func (e *Extractor) productName(anchor layout.Row) string {
	var parts []string
	for _, t := range e.meaningfulLeftTokens(anchor) {
		if layout.IsInteger(t.Text) {
			continue
		}
		parts = append(parts, t.Text)
	}
	return collapseSpaces(strings.Join(parts, " "))
}

// descriptionChunk extracts the left-column text of a follow-on row, with
// inline prices stripped and noise phrases dropped.
func (e *Extractor) descriptionChunk(row layout.Row) string {
	var parts []string
	for _, t := range row.Tokens {
		if t.X >= e.cols.PriceX-leftRegionMargin {
			continue
		}
		parts = append(parts, t.Text)
	}
	chunk := strings.TrimSpace(strings.Join(parts, " "))
	if chunk == "" || layout.IsMetaLabel(chunk) || layout.IsDescriptionNoise(chunk) {
		return ""
	}
	return strings.TrimSpace(layout.StripInlinePrices(chunk))
}

func (e *Extractor) meaningfulLeftTokens(row layout.Row) []layout.TextItem {
	var out []layout.TextItem
	for _, t := range row.Tokens {
		if t.X >= e.cols.PriceX-leftRegionMargin {
			continue
		}
		if layout.IsFeeLine(t.Text) || !layout.HasLetter(t.Text) {
			continue
		}
		if layout.IsMetaLabel(t.Text) || layout.IsMeasurementNoise(t.Text) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// priceTokenNearColumn finds a price-shaped token within the price column
// window, preferring the token immediately left of a currency glyph.
func (e *Extractor) priceTokenNearColumn(row layout.Row) (*layout.TextItem, bool) {
	for i, t := range row.Tokens {
		if t.Text != layout.CurrencyGlyph || i == 0 {
			continue
		}
		prev := row.Tokens[i-1]
		if layout.IsCodeToken(prev.Text) {
			continue
		}
		if _, parsed := price.Parse(prev.Text); parsed && nearColumn(prev.X, e.cols.PriceX) {
			return &row.Tokens[i-1], true
		}
	}
	for i, t := range row.Tokens {
		if layout.IsCodeToken(t.Text) {
			continue
		}
		if _, parsed := price.Parse(t.Text); parsed && nearColumn(t.X, e.cols.PriceX) {
			return &row.Tokens[i], true
		}
	}
	return nil, false
}

func (e *Extractor) hasCurrencyNearColumn(row layout.Row) bool {
	for _, t := range row.Tokens {
		if t.Text == layout.CurrencyGlyph && nearColumn(t.X, e.cols.PriceX) {
			return true
		}
	}
	return false
}

func anyPriceToken(row layout.Row) (*layout.TextItem, bool) {
	for i, t := range row.Tokens {
		if layout.IsCodeToken(t.Text) {
			continue
		}
		if _, parsed := price.Parse(t.Text); parsed {
			return &row.Tokens[i], true
		}
	}
	return nil, false
}

// isEcoFee flags mandatory eco-participation lines so their small amounts
// never masquerade as unit prices.
func isEcoFee(text string, value float64) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "dont") {
		return true
	}
	return value < 1.0 && (strings.Contains(lower, "éco") || strings.Contains(lower, "eco"))
}

func nearColumn(x, columnX float64) bool {
	d := x - columnX
	if d < 0 {
		d = -d
	}
	return d < priceColumnWindow
}

func flatten(pages []layout.RowPage) []layout.Row {
	n := 0
	for _, p := range pages {
		n += len(p.Rows)
	}
	rows := make([]layout.Row, 0, n)
	for _, p := range pages {
		rows = append(rows, p.Rows...)
	}
	return rows
}

func labelValue(text string) string {
	if i := strings.Index(text, ":"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			return 0
		}
	}
	return n
}
