package layout

import "sort"

// Column x-offsets used when one sample set turns out empty. The price and
// quantity columns sit a near-constant distance apart in the supported
// layouts, so each can stand in for the other.
const (
	priceFromQuantityOffset = 30.0
	quantityFromPriceOffset = 60.0
)

// EstimateColumns derives the document-wide column positions from the
// unpruned row set: the median x of currency glyphs (price), of pure-integer
// tokens (quantity), and of the left-most token of letter-bearing rows
// (description). A price column derived from price-shaped tokens on
// currency rows backs up the glyph median when glyphs are scarce.
//
// The estimate is a pure function of its input: calling it twice on the
// same rows yields the same result. It must be computed once per document
// and passed to every later stage, never recomputed per row.
func EstimateColumns(pages []RowPage) ColumnEstimate {
	var (
		glyphXs   []float64
		intXs     []float64
		descXs    []float64
		derivedXs []float64
	)

	for _, p := range pages {
		for _, r := range p.Rows {
			rowHasGlyph := false
			for _, t := range r.Tokens {
				if t.Text == CurrencyGlyph {
					glyphXs = append(glyphXs, t.X)
					rowHasGlyph = true
				}
				if IsInteger(t.Text) {
					intXs = append(intXs, t.X)
				}
			}
			if rowHasGlyph {
				for _, t := range r.Tokens {
					if IsPriceShaped(t.Text) {
						derivedXs = append(derivedXs, t.X)
					}
				}
			}
			if rowHasLetter(r) {
				descXs = append(descXs, r.MinX())
			}
		}
	}

	priceX, havePrice := median(glyphXs)
	if !havePrice {
		priceX, havePrice = median(derivedXs)
	}
	qtyX, haveQty := median(intXs)
	descX, _ := median(descXs)

	switch {
	case !havePrice && haveQty:
		priceX = qtyX + priceFromQuantityOffset
	case havePrice && !haveQty:
		qtyX = priceX - quantityFromPriceOffset
	case !havePrice && !haveQty:
		// Nothing numeric on the document; downstream anchor checks will
		// fail and the caller falls back, but keep the estimate ordered.
		qtyX = descX + quantityFromPriceOffset
		priceX = qtyX + priceFromQuantityOffset
	}

	return ColumnEstimate{
		DescriptionX: descX,
		QuantityX:    qtyX,
		PriceX:       priceX,
	}
}

func median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2], true
}
