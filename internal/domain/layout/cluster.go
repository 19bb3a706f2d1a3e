package layout

import (
	"sort"
	"strings"
)

// CurrencyGlyph is the bare currency token the supported invoice layouts use.
const CurrencyGlyph = "€"

// DefaultYTolerance is the y window within which items belong to one row.
// Tuned against real invoices; it is a constant of the layouts, not derived.
const DefaultYTolerance = 3.0

// ClusterOptions configures row clustering.
type ClusterOptions struct {
	YTolerance float64
}

// DefaultClusterOptions returns the tolerance used in production.
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{YTolerance: DefaultYTolerance}
}

// ClusterRows groups a page's items into rows. Items are sorted by (y, x),
// then walked in order: a new row starts whenever the y distance to the
// current row exceeds the tolerance. Empty or whitespace-only items are
// dropped before clustering. An empty page yields an empty slice.
func ClusterRows(page Page, opts ClusterOptions) []Row {
	tol := opts.YTolerance
	if tol <= 0 {
		tol = DefaultYTolerance
	}

	items := make([]TextItem, 0, len(page.Items))
	for _, it := range page.Items {
		trimmed := strings.TrimSpace(it.Text)
		if trimmed == "" {
			continue
		}
		items = append(items, TextItem{Text: trimmed, X: it.X, Y: it.Y})
	}
	if len(items) == 0 {
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Y != items[j].Y {
			return items[i].Y < items[j].Y
		}
		return items[i].X < items[j].X
	})

	rows := make([]Row, 0, len(items)/4+1)
	current := Row{
		PageNumber:     page.PageNumber,
		Y:              items[0].Y,
		Tokens:         []TextItem{items[0]},
		HasPriceMarker: items[0].Text == CurrencyGlyph,
	}

	for _, it := range items[1:] {
		if abs(current.Y-it.Y) > tol {
			rows = append(rows, current)
			current = Row{
				PageNumber:     page.PageNumber,
				Y:              it.Y,
				Tokens:         []TextItem{it},
				HasPriceMarker: it.Text == CurrencyGlyph,
			}
			continue
		}
		current.Tokens = append(current.Tokens, it)
		current.HasPriceMarker = current.HasPriceMarker || it.Text == CurrencyGlyph
	}
	rows = append(rows, current)

	// Items arrive (y, x)-sorted, but a row may span slightly different y
	// values within the tolerance, so re-assert x order per row.
	for i := range rows {
		toks := rows[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool { return toks[a].X < toks[b].X })
	}

	return rows
}

// ClusterDocument clusters every page of a document.
func ClusterDocument(doc Document, opts ClusterOptions) []RowPage {
	pages := make([]RowPage, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		pages = append(pages, RowPage{
			PageNumber: p.PageNumber,
			Width:      p.Width,
			Height:     p.Height,
			Rows:       ClusterRows(p, opts),
		})
	}
	return pages
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
