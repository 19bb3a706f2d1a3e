// Package layout turns the positioned text stream of a decoded PDF into
// rows, columns and coarse product boxes. It is purely geometric: nothing
// here knows about vendors or products, only about where text sits on a page.
package layout

// TextItem is one glyph run at a page position. Coordinates use a top-left
// origin with y increasing downward, matching what the decode adapter emits.
type TextItem struct {
	Text string  `json:"t"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Page holds the decoded text items of a single PDF page. Pages are never
// mutated after decoding; every later stage derives its own structures.
type Page struct {
	PageNumber int        `json:"pageNumber"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Items      []TextItem `json:"items"`
}

// Document is one decoded PDF: the unit a single extraction call processes.
type Document struct {
	Pages []Page `json:"pages"`
}

// Row is a horizontal cluster of text items sharing (within tolerance) the
// same y coordinate. Tokens are always sorted by ascending x.
type Row struct {
	PageNumber     int
	Y              float64
	Tokens         []TextItem
	HasPriceMarker bool // a bare currency glyph appears on the row
}

// Text joins the row's tokens left to right with single spaces.
func (r Row) Text() string {
	n := 0
	for _, t := range r.Tokens {
		n += len(t.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, t := range r.Tokens {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t.Text...)
	}
	return string(b)
}

// MinX returns the x of the left-most token, or 0 for an empty row.
func (r Row) MinX() float64 {
	if len(r.Tokens) == 0 {
		return 0
	}
	return r.Tokens[0].X
}

// RowPage groups the rows of one page after clustering or pruning.
type RowPage struct {
	PageNumber int
	Width      float64
	Height     float64
	Rows       []Row
}

// ProductBox is a coarse y-range around one price anchor. Boxes only feed
// the fallback payload; the positional extractor works on rows directly.
type ProductBox struct {
	TopY    float64
	BottomY float64
	Rows    []Row
}

// BoxPage groups the product boxes of one page.
type BoxPage struct {
	PageNumber int
	Width      float64
	Height     float64
	Boxes      []ProductBox
}

// ColumnEstimate carries the document-wide x positions of the description,
// quantity and price regions. It is computed once per document and handed to
// every row-classification decision so token selection stays consistent.
type ColumnEstimate struct {
	DescriptionX float64
	QuantityX    float64
	PriceX       float64
}
