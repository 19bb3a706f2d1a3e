package layout

import "sort"

// BoxOptions configures product box segmentation for the fallback payload.
type BoxOptions struct {
	PrePadding    float64 // y units kept above each anchor
	PostPadding   float64 // y units trimmed before the midpoint to the next anchor
	MinRowsPerBox int     // boxes with fewer rows are discarded
}

// DefaultBoxOptions returns the padding used in production.
func DefaultBoxOptions() BoxOptions {
	return BoxOptions{PrePadding: 80, PostPadding: 10, MinRowsPerBox: 1}
}

// SegmentBoxes groups each page's rows into coarse product boxes, one per
// price-bearing anchor row. The window reaches PrePadding above the anchor
// and down to the midpoint toward the next anchor minus PostPadding.
// Section-header rows never enter a box. Boxes are lossier than the
// positional row walk; they exist only to bound the fallback payload.
func SegmentBoxes(pages []RowPage, opts BoxOptions) []BoxPage {
	pre := opts.PrePadding
	post := opts.PostPadding
	minRows := opts.MinRowsPerBox
	if minRows < 1 {
		minRows = 1
	}

	out := make([]BoxPage, 0, len(pages))
	for _, p := range pages {
		rows := make([]Row, len(p.Rows))
		copy(rows, p.Rows)
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Y < rows[j].Y })

		var anchorYs []float64
		for _, r := range rows {
			if r.HasPriceMarker || rowHasPriceShape(r) {
				anchorYs = append(anchorYs, r.Y)
			}
		}

		var boxes []ProductBox
		for ai, anchorY := range anchorYs {
			nextY := anchorY + 100
			if ai+1 < len(anchorYs) {
				nextY = anchorYs[ai+1]
			} else if len(rows) > 0 {
				nextY = rows[len(rows)-1].Y + 100
			}

			topY := anchorY - pre
			bottomY := (anchorY+nextY)/2 - post

			var boxRows []Row
			for _, r := range rows {
				if r.Y < topY || r.Y > bottomY {
					continue
				}
				text := r.Text()
				if text == "" || IsBlockDenylisted(text) || IsSectionHeader(text) {
					continue
				}
				boxRows = append(boxRows, r)
			}

			if len(boxRows) >= minRows {
				boxes = append(boxes, ProductBox{TopY: topY, BottomY: bottomY, Rows: boxRows})
			}
		}

		out = append(out, BoxPage{
			PageNumber: p.PageNumber,
			Width:      p.Width,
			Height:     p.Height,
			Boxes:      boxes,
		})
	}
	return out
}
