package layout

import "math"

// PruneOptions configures the two pruning stages. Both are optional; the
// zero value disables pruning entirely.
type PruneOptions struct {
	// Basic drops punctuation-only tokens and rows left empty.
	Basic bool
	// Aggressive keeps only price-bearing and reference-bearing rows plus
	// nearby alphabetic context, and applies the keyword denylist.
	Aggressive bool
	// ContextRows is the number of adjacent alphabetic rows kept on each
	// side of a price/reference row in aggressive mode.
	ContextRows int
	// MaxRowsPerPage caps kept rows per page; 0 means no cap. This is the
	// resource bound for pathological (very dense) pages.
	MaxRowsPerPage int
	// OnlyPagesWithPrices drops whole pages without a price-bearing row,
	// shrinking the fallback payload.
	OnlyPagesWithPrices bool
}

// DefaultPruneOptions is the configuration the fallback path runs with.
func DefaultPruneOptions() PruneOptions {
	return PruneOptions{
		Basic:       true,
		Aggressive:  true,
		ContextRows: 2,
	}
}

// PrunePages applies the configured pruning stages to every page.
// Pruning never fails: the worst case is an empty result, which downstream
// stages treat as "no products found".
func PrunePages(pages []RowPage, opts PruneOptions) []RowPage {
	out := make([]RowPage, 0, len(pages))
	for _, p := range pages {
		rows := p.Rows
		if opts.Basic {
			rows = basicPrune(rows)
		}
		if opts.Aggressive {
			rows = aggressivePrune(rows, opts)
		}
		out = append(out, RowPage{
			PageNumber: p.PageNumber,
			Width:      p.Width,
			Height:     p.Height,
			Rows:       rows,
		})
	}

	if opts.OnlyPagesWithPrices {
		kept := out[:0]
		for _, p := range out {
			if hasPriceBearingRow(p.Rows) {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	return out
}

// basicPrune drops tokens that carry no signal at all: not the currency
// glyph, no digit, no letter. Rounds coordinates to integers the way the
// fallback payload serializes them.
func basicPrune(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		tokens := make([]TextItem, 0, len(r.Tokens))
		hasMarker := false
		for _, t := range r.Tokens {
			if t.Text != CurrencyGlyph && !HasDigit(t.Text) && !HasLetter(t.Text) {
				continue
			}
			if t.Text == CurrencyGlyph {
				hasMarker = true
			}
			tokens = append(tokens, TextItem{
				Text: t.Text,
				X:    math.Round(t.X),
				Y:    math.Round(t.Y),
			})
		}
		if len(tokens) == 0 {
			continue
		}
		out = append(out, Row{
			PageNumber:     r.PageNumber,
			Y:              math.Round(r.Y),
			Tokens:         tokens,
			HasPriceMarker: r.HasPriceMarker || hasMarker,
		})
	}
	return out
}

// aggressivePrune keeps price-bearing and reference-bearing rows plus a
// small alphabetic context window around them. Denylisted rows are dropped
// no matter what and never serve as context.
func aggressivePrune(rows []Row, opts PruneOptions) []Row {
	window := opts.ContextRows
	if window <= 0 {
		window = 2
	}

	keep := make([]bool, len(rows))
	for i, r := range rows {
		if IsDenylisted(r.Text()) {
			continue
		}
		isRef := rowHasRefLabel(r)
		if !r.HasPriceMarker && !rowHasPriceShape(r) && !isRef {
			continue
		}
		keep[i] = true

		// A reference label is usually followed by the bare code row.
		if isRef && i+1 < len(rows) && rowHasCodeToken(rows[i+1]) {
			keep[i+1] = true
		}

		for k := 1; k <= window; k++ {
			if j := i - k; j >= 0 && rowHasLetter(rows[j]) && !IsDenylisted(rows[j].Text()) {
				keep[j] = true
			}
			if j := i + k; j < len(rows) && rowHasLetter(rows[j]) && !IsDenylisted(rows[j].Text()) {
				keep[j] = true
			}
		}
	}

	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		if !keep[i] {
			continue
		}
		// Context marking can resurrect a denylisted neighbour; final guard.
		if IsDenylisted(r.Text()) {
			continue
		}
		out = append(out, r)
		if opts.MaxRowsPerPage > 0 && len(out) >= opts.MaxRowsPerPage {
			break
		}
	}
	return out
}

func hasPriceBearingRow(rows []Row) bool {
	for _, r := range rows {
		if r.HasPriceMarker || rowHasPriceShape(r) {
			return true
		}
	}
	return false
}

func rowHasRefLabel(r Row) bool {
	for _, t := range r.Tokens {
		if IsRefLabel(t.Text) {
			return true
		}
	}
	return false
}

func rowHasCodeToken(r Row) bool {
	for _, t := range r.Tokens {
		if IsCodeToken(t.Text) {
			return true
		}
	}
	return false
}

func rowHasLetter(r Row) bool {
	for _, t := range r.Tokens {
		if HasLetter(t.Text) {
			return true
		}
	}
	return false
}
